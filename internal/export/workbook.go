// Пакет export — формирование xlsx-документа с записями тенанта.
// Две раскладки: плоская (заголовок и строки, экспорт за день)
// и сгруппированная по дням (экспорт за период).
package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

const (
	// SheetName — имя единственного листа документа.
	SheetName = "Data Entries"
	// HeaderFill — цвет заливки строки заголовков.
	HeaderFill = "E0E0E0"
	// DateHeadingPrefix — префикс заголовка группы.
	DateHeadingPrefix = "Date: "

	minColumnWidth = 10
	maxColumnWidth = excelize.MaxColumnWidth
	columnPadding  = 2
)

// sheetWriter последовательно заполняет лист и отслеживает ширину колонок.
type sheetWriter struct {
	file        *excelize.File
	fields      []*model.FieldDefinition
	row         int
	widths      map[int]int
	headerStyle int
	boldStyle   int
}

func newSheetWriter(fields []*model.FieldDefinition) (*sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка переименования листа: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{HeaderFill}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка создания стиля заголовка: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка создания стиля: %w", err)
	}

	widths := make(map[int]int, len(fields))
	for i := range fields {
		widths[i+1] = 0
	}

	return &sheetWriter{
		file:        f,
		fields:      fields,
		row:         1,
		widths:      widths,
		headerStyle: headerStyle,
		boldStyle:   boldStyle,
	}, nil
}

// setCell пишет строковое значение в колонку col (с 1) текущей строки.
func (s *sheetWriter) setCell(col int, value string, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		return err
	}
	if err := s.file.SetCellStr(SheetName, cell, value); err != nil {
		return err
	}
	if style != 0 {
		if err := s.file.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return err
		}
	}
	if n := utf8.RuneCountInString(value); n > s.widths[col] {
		s.widths[col] = n
	}
	return nil
}

func (s *sheetWriter) writeHeading(text string) error {
	if err := s.setCell(1, text, s.boldStyle); err != nil {
		return fmt.Errorf("ошибка записи заголовка группы: %w", err)
	}
	s.row++
	return nil
}

func (s *sheetWriter) writeHeader() error {
	for i, f := range s.fields {
		if err := s.setCell(i+1, f.Name, s.headerStyle); err != nil {
			return fmt.Errorf("ошибка записи заголовка колонки %q: %w", f.Name, err)
		}
	}
	s.row++
	return nil
}

func (s *sheetWriter) writeRecord(r *model.Record) error {
	for i, f := range s.fields {
		if err := s.setCell(i+1, CellValue(f, r), 0); err != nil {
			return fmt.Errorf("ошибка записи ячейки: %w", err)
		}
	}
	s.row++
	return nil
}

func (s *sheetWriter) skipRow() {
	s.row++
}

// finish выставляет ширину колонок и пишет документ в w.
func (s *sheetWriter) finish(w io.Writer) error {
	defer s.file.Close()

	for col, longest := range s.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := s.file.SetColWidth(SheetName, name, name, float64(ColumnWidth(longest))); err != nil {
			return fmt.Errorf("ошибка установки ширины колонки %s: %w", name, err)
		}
	}

	if err := s.file.Write(w); err != nil {
		return fmt.Errorf("ошибка записи документа: %w", err)
	}
	return nil
}

// ColumnWidth — ширина колонки по длине самой длинной ячейки в ней.
// Не превышает предела excelize: длинное значение не должно ломать экспорт.
func ColumnWidth(longest int) int {
	return min(max(minColumnWidth, longest)+columnPadding, maxColumnWidth)
}

// WriteFlat пишет плоский документ: строка заголовков, затем по строке на запись.
func WriteFlat(w io.Writer, fields []*model.FieldDefinition, records []*model.Record) error {
	s, err := newSheetWriter(fields)
	if err != nil {
		return err
	}

	if err := s.writeHeader(); err != nil {
		s.file.Close()
		return err
	}
	for _, r := range records {
		if err := s.writeRecord(r); err != nil {
			s.file.Close()
			return err
		}
	}
	return s.finish(w)
}

// WriteGrouped пишет документ по дням: для каждой группы заголовок «Date: yyyy-MM-dd»,
// строка заголовков, записи группы и одна пустая строка.
func WriteGrouped(w io.Writer, fields []*model.FieldDefinition, groups *DayGroups) error {
	s, err := newSheetWriter(fields)
	if err != nil {
		return err
	}

	for _, key := range groups.Keys() {
		if err := s.writeHeading(DateHeadingPrefix + key); err != nil {
			s.file.Close()
			return err
		}
		if err := s.writeHeader(); err != nil {
			s.file.Close()
			return err
		}
		for _, r := range groups.Records(key) {
			if err := s.writeRecord(r); err != nil {
				s.file.Close()
				return err
			}
		}
		s.skipRow()
	}
	return s.finish(w)
}
