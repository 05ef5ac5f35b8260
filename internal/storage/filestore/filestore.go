// Пакет filestore — временные файлы экспорта на диске.
// Файл пишется целиком (temp → fsync → rename) с подсчётом SHA-256 на лету,
// отдаётся клиенту и удаляется в рамках того же запроса.
package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// tmpSuffix — суффикс недописанного файла.
const tmpSuffix = ".tmp"

// WriteFunc записывает содержимое файла в w.
type WriteFunc func(w io.Writer) error

// FileStore — управление временными файлами экспорта.
type FileStore struct {
	// dir — директория временных файлов (DC_EXPORT_DIR)
	dir string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// StoragePath — имя файла в dir, уникальное для каждого вызова
	StoragePath string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
	// Checksum — SHA-256 хэш содержимого файла
	Checksum string
}

// New создаёт FileStore. Создаёт директорию, если она не существует.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию экспорта %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// Save записывает файл через write с подсчётом SHA-256 на лету.
// Имя на диске уникально: одинаковые одновременные экспорты не перезаписывают друг друга.
//
// Паттерн: temp файл → запись + SHA-256 → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) Save(originalFilename, owner string, write WriteFunc) (*SaveResult, error) {
	storageName := generateStorageName(originalFilename, owner)
	fullPath := filepath.Join(fs.dir, storageName)
	tmpPath := fullPath + tmpSuffix

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	hasher := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(f, hasher)}

	if err := write(counter); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		StoragePath: storageName,
		FullPath:    fullPath,
		Size:        counter.n,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open открывает файл для чтения. Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(storagePath string) (*os.File, error) {
	f, err := os.Open(fs.FullPath(storagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("файл не найден: %s", storagePath)
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", storagePath, err)
	}

	return f, nil
}

// FullPath возвращает абсолютный путь к файлу на диске.
func (fs *FileStore) FullPath(storagePath string) string {
	return filepath.Join(fs.dir, filepath.Base(storagePath))
}

// Delete удаляет файл. Возвращает nil, если файла уже нет.
func (fs *FileStore) Delete(storagePath string) error {
	err := os.Remove(fs.FullPath(storagePath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", storagePath, err)
	}
	return nil
}

// PurgeStale удаляет файлы старше olderThan, оставшиеся после аварийной остановки.
// Возвращает число удалённых файлов.
func (fs *FileStore) PurgeStale(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения директории %s: %w", fs.dir, err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(fs.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Dir возвращает путь к директории файлов.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// CheckReady проверяет, что в директорию экспорта можно писать.
// Возвращает статус ("ok", "fail") и сообщение.
func (fs *FileStore) CheckReady() (status string, message string) {
	f, err := os.CreateTemp(fs.dir, ".ready-*"+tmpSuffix)
	if err != nil {
		return "fail", fmt.Sprintf("директория экспорта недоступна для записи: %v", err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return "ok", "директория доступна для записи"
}

// countingWriter считает записанные байты.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// generateStorageName генерирует имя файла на диске.
// Формат: {name}_{owner}_{timestamp}_{uuid}.{ext}
// Пример: data_2024-01-01_tenant-a_20260221150405_<uuid>.xlsx
func generateStorageName(originalFilename, owner string) string {
	ext := filepath.Ext(originalFilename)
	name := strings.TrimSuffix(originalFilename, ext)

	name = sanitize(name)
	user := sanitize(owner)

	if len(name) > 50 {
		name = name[:50]
	}
	if len(user) > 20 {
		user = user[:20]
	}

	ts := time.Now().UTC().Format("20060102150405")
	uid := uuid.New().String()

	if ext != "" {
		return fmt.Sprintf("%s_%s_%s_%s.%s", name, user, ts, uid, sanitize(ext[1:]))
	}
	return fmt.Sprintf("%s_%s_%s_%s", name, user, ts, uid)
}

// sanitize оставляет в строке только латиницу, цифры, дефис и подчёркивание.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}
