// Пакет database — пул PostgreSQL для хранилища datacollect:
// схема полей, записи и журнал экспорта. Миграции встроены в бинарник.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // драйвер pgx5 для MigrateURL
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/datacollect/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	applicationName = "datacollect"
	// sessionTimeZone — зона сессии. Календарные дни отчётов задаются
	// явной зоной в запросах, от настроек сервера они не зависят.
	sessionTimeZone = "UTC"

	readyTimeout = 3 * time.Second
)

// Connect открывает пул к базе datacollect и проверяет её доступность.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("некорректные параметры подключения DC_DB_*: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolCfg.ConnConfig.RuntimeParams["timezone"] = sessionTimeZone

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула подключений: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("база datacollect недоступна: %w", err)
	}

	logger.Info("Подключение к хранилищу записей установлено",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
	)

	return pool, nil
}

// Migrate создаёт или обновляет таблицы field_definitions, records
// и export_history. Схема, оставшаяся в состоянии dirty после прерванной
// миграции, — ошибка: сервис с такой базой не запускается.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("ошибка чтения встроенных миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("ошибка чтения версии схемы: %w", err)
	}
	if dirty {
		return fmt.Errorf("схема версии %d в состоянии dirty, требуется ручное исправление", version)
	}

	logger.Info("Схема хранилища актуальна", slog.Uint64("version", uint64(version)))
	return nil
}

// ReadinessChecker — проверка PostgreSQL для /health/ready.
type ReadinessChecker struct {
	pool *pgxpool.Pool
}

// NewReadinessChecker создаёт проверку готовности хранилища.
func NewReadinessChecker(pool *pgxpool.Pool) *ReadinessChecker {
	return &ReadinessChecker{pool: pool}
}

// CheckReady пингует базу и смотрит на загрузку пула.
// Все занятые подключения — "degraded": запросы ждут в очереди, но обслуживаются.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	pingErr := c.pool.Ping(ctx)
	stat := c.pool.Stat()
	return readiness(pingErr, stat.AcquiredConns(), stat.MaxConns())
}

func readiness(pingErr error, acquired, maxConns int32) (string, string) {
	if pingErr != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", pingErr)
	}
	if maxConns > 0 && acquired >= maxConns {
		return "degraded", fmt.Sprintf("заняты все подключения пула (%d)", maxConns)
	}
	return "ok", "подключение активно"
}
