package export

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

func field(name string, t model.FieldType) *model.FieldDefinition {
	return &model.FieldDefinition{Name: name, Type: t}
}

func record(createdAt time.Time, data map[string]any) *model.Record {
	return &model.Record{Data: data, CreatedAt: createdAt}
}

// openBook читает документ из буфера.
func openBook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("ошибка чтения документа: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// cell возвращает значение ячейки листа.
func cell(t *testing.T, f *excelize.File, name string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetName, name)
	if err != nil {
		t.Fatalf("GetCellValue(%s) ошибка: %v", name, err)
	}
	return v
}

func TestCellValue(t *testing.T) {
	text := field("Note", model.FieldTypeText)
	num := field("Temp", model.FieldTypeNumber)
	check := field("Done", model.FieldTypeCheckbox)

	tests := []struct {
		name  string
		field *model.FieldDefinition
		data  map[string]any
		want  string
	}{
		{"строка", text, map[string]any{"Note": "ok"}, "ok"},
		{"нет ключа", text, map[string]any{}, ""},
		{"null", text, map[string]any{"Note": nil}, ""},
		{"nil Data", text, nil, ""},
		{"ноль", num, map[string]any{"Temp": float64(0)}, "0"},
		{"дробное", num, map[string]any{"Temp": 36.6}, "36.6"},
		{"большое без экспоненты", num, map[string]any{"Temp": 1e21}, "1000000000000000000000"},
		{"bool в тексте", text, map[string]any{"Note": false}, "false"},
		{"checkbox true", check, map[string]any{"Done": true}, CheckboxYes},
		{"checkbox false", check, map[string]any{"Done": false}, CheckboxNo},
		{"checkbox нет ключа", check, map[string]any{}, CheckboxNo},
		{"checkbox null", check, map[string]any{"Done": nil}, CheckboxNo},
		{"checkbox ноль", check, map[string]any{"Done": float64(0)}, CheckboxNo},
		{"checkbox NaN", check, map[string]any{"Done": math.NaN()}, CheckboxNo},
		{"checkbox число", check, map[string]any{"Done": float64(2)}, CheckboxYes},
		{"checkbox пустая строка", check, map[string]any{"Done": ""}, CheckboxNo},
		{"checkbox строка", check, map[string]any{"Done": "false"}, CheckboxYes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CellValue(tt.field, &model.Record{Data: tt.data})
			if got != tt.want {
				t.Errorf("CellValue() = %q, ожидается %q", got, tt.want)
			}
		})
	}
}

func TestColumnWidth(t *testing.T) {
	tests := []struct{ longest, want int }{
		{0, 12},
		{4, 12},
		{10, 12},
		{25, 27},
		{253, 255},
		{254, 255},
		{300, 255},
	}
	for _, tt := range tests {
		if got := ColumnWidth(tt.longest); got != tt.want {
			t.Errorf("ColumnWidth(%d) = %d, ожидается %d", tt.longest, got, tt.want)
		}
	}
}

func TestGroupByDay_InsertionOrder(t *testing.T) {
	loc := time.UTC
	records := []*model.Record{
		record(time.Date(2024, 1, 2, 9, 0, 0, 0, loc), nil),
		record(time.Date(2024, 1, 1, 9, 0, 0, 0, loc), nil),
		record(time.Date(2024, 1, 2, 10, 0, 0, 0, loc), nil),
	}

	g := GroupByDay(records, loc)
	keys := g.Keys()
	if len(keys) != 2 || keys[0] != "2024-01-02" || keys[1] != "2024-01-01" {
		t.Fatalf("Keys() = %v, ожидается [2024-01-02 2024-01-01]", keys)
	}
	if n := len(g.Records("2024-01-02")); n != 2 {
		t.Errorf("Records(2024-01-02) = %d записей, ожидается 2", n)
	}
	if g.Total() != 3 || g.Len() != 2 {
		t.Errorf("Total() = %d, Len() = %d", g.Total(), g.Len())
	}
}

func TestGroupByDay_Location(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("нет данных часового пояса: %v", err)
	}

	// 20:00 UTC — уже следующий день в Токио
	g := GroupByDay([]*model.Record{
		record(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), nil),
	}, tokyo)
	if keys := g.Keys(); len(keys) != 1 || keys[0] != "2024-01-02" {
		t.Errorf("Keys() = %v, ожидается [2024-01-02]", keys)
	}
}

func TestWriteFlat_RoundTrip(t *testing.T) {
	fields := []*model.FieldDefinition{
		field("Temp", model.FieldTypeNumber),
		field("Done", model.FieldTypeCheckbox),
	}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []*model.Record{
		record(day.Add(time.Hour), map[string]any{"Temp": float64(0)}),
		record(day.Add(2*time.Hour), map[string]any{"Temp": 21.5, "Done": true, "Removed": "x"}),
	}

	var buf bytes.Buffer
	if err := WriteFlat(&buf, fields, records); err != nil {
		t.Fatalf("WriteFlat() ошибка: %v", err)
	}
	f := openBook(t, &buf)

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Errorf("GetSheetList() = %v, ожидается [%s]", sheets, SheetName)
	}

	want := map[string]string{
		"A1": "Temp", "B1": "Done", "C1": "",
		"A2": "0", "B2": "No", "C2": "",
		"A3": "21.5", "B3": "Yes", "C3": "",
		"A4": "",
	}
	for name, w := range want {
		if got := cell(t, f, name); got != w {
			t.Errorf("%s = %q, ожидается %q", name, got, w)
		}
	}

	styleID, err := f.GetCellStyle(SheetName, "A1")
	if err != nil {
		t.Fatalf("GetCellStyle() ошибка: %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle() ошибка: %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("заголовок должен быть полужирным")
	}
	if len(style.Fill.Color) == 0 {
		t.Error("заголовок должен иметь заливку")
	}
}

func TestWriteFlat_ColumnWidths(t *testing.T) {
	fields := []*model.FieldDefinition{
		field("A", model.FieldTypeText),
		field("Comment", model.FieldTypeText),
	}
	records := []*model.Record{
		record(time.Now(), map[string]any{"Comment": "очень длинный комментарий"}),
	}

	var buf bytes.Buffer
	if err := WriteFlat(&buf, fields, records); err != nil {
		t.Fatalf("WriteFlat() ошибка: %v", err)
	}
	f := openBook(t, &buf)

	tests := []struct {
		col  string
		want float64
	}{
		{"A", 12},
		{"B", 27},
	}
	for _, tt := range tests {
		got, err := f.GetColWidth(SheetName, tt.col)
		if err != nil {
			t.Fatalf("GetColWidth(%s) ошибка: %v", tt.col, err)
		}
		if got != tt.want {
			t.Errorf("ширина %s = %v, ожидается %v", tt.col, got, tt.want)
		}
	}
}

func TestWriteFlat_LongValue(t *testing.T) {
	long := strings.Repeat("x", 300)
	fields := []*model.FieldDefinition{field("Note", model.FieldTypeText)}
	records := []*model.Record{record(time.Now(), map[string]any{"Note": long})}

	var buf bytes.Buffer
	if err := WriteFlat(&buf, fields, records); err != nil {
		t.Fatalf("WriteFlat() с длинным значением вернул ошибку: %v", err)
	}
	f := openBook(t, &buf)

	if got := cell(t, f, "A2"); got != long {
		t.Errorf("A2 длиной %d, ожидается значение длиной %d", len(got), len(long))
	}
	width, err := f.GetColWidth(SheetName, "A")
	if err != nil {
		t.Fatalf("GetColWidth(A) ошибка: %v", err)
	}
	if width != excelize.MaxColumnWidth {
		t.Errorf("ширина A = %v, ожидается %v", width, excelize.MaxColumnWidth)
	}
}

func TestWriteGrouped_LongValue(t *testing.T) {
	day := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fields := []*model.FieldDefinition{field("Note", model.FieldTypeText)}
	records := []*model.Record{record(day, map[string]any{"Note": strings.Repeat("я", 400)})}

	var buf bytes.Buffer
	if err := WriteGrouped(&buf, fields, GroupByDay(records, time.UTC)); err != nil {
		t.Fatalf("WriteGrouped() с длинным значением вернул ошибку: %v", err)
	}
}

func TestWriteFlat_NoRecords(t *testing.T) {
	fields := []*model.FieldDefinition{field("Name", model.FieldTypeText)}

	var buf bytes.Buffer
	if err := WriteFlat(&buf, fields, nil); err != nil {
		t.Fatalf("WriteFlat() ошибка: %v", err)
	}
	f := openBook(t, &buf)

	if got := cell(t, f, "A1"); got != "Name" {
		t.Errorf("A1 = %q, ожидается Name", got)
	}
	if got := cell(t, f, "A2"); got != "" {
		t.Errorf("A2 = %q, ожидается пустая строка", got)
	}
}

func TestWriteGrouped_TwoDays(t *testing.T) {
	fields := []*model.FieldDefinition{
		field("Name", model.FieldTypeText),
		field("Done", model.FieldTypeCheckbox),
	}
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	groups := GroupByDay([]*model.Record{
		record(d1.Add(time.Hour), map[string]any{"Name": "a", "Done": true}),
		record(d1.Add(2*time.Hour), map[string]any{"Name": "b"}),
		record(d2.Add(time.Hour), map[string]any{"Name": "c", "Done": false}),
	}, time.UTC)

	var buf bytes.Buffer
	if err := WriteGrouped(&buf, fields, groups); err != nil {
		t.Fatalf("WriteGrouped() ошибка: %v", err)
	}
	f := openBook(t, &buf)

	want := []struct{ cell, value string }{
		{"A1", "Date: 2024-01-01"},
		{"A2", "Name"}, {"B2", "Done"},
		{"A3", "a"}, {"B3", "Yes"},
		{"A4", "b"}, {"B4", "No"},
		{"A5", ""}, {"B5", ""},
		{"A6", "Date: 2024-01-02"},
		{"A7", "Name"}, {"B7", "Done"},
		{"A8", "c"}, {"B8", "No"},
		{"A9", ""},
		{"A10", ""},
	}
	for _, w := range want {
		if got := cell(t, f, w.cell); got != w.value {
			t.Errorf("%s = %q, ожидается %q", w.cell, got, w.value)
		}
	}

	styleID, _ := f.GetCellStyle(SheetName, "A1")
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle() ошибка: %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("заголовок группы должен быть полужирным")
	}

	// Заголовок группы входит в ширину колонки A
	width, _ := f.GetColWidth(SheetName, "A")
	if width != float64(ColumnWidth(len("Date: 2024-01-01"))) {
		t.Errorf("ширина A = %v, ожидается %d", width, ColumnWidth(len("Date: 2024-01-01")))
	}
}

func TestWriteGrouped_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrouped(&buf, []*model.FieldDefinition{field("Name", model.FieldTypeText)}, NewDayGroups()); err != nil {
		t.Fatalf("WriteGrouped() ошибка: %v", err)
	}
	f := openBook(t, &buf)

	if got := cell(t, f, "A1"); got != "" {
		t.Errorf("A1 = %q, ожидается пустой лист", got)
	}
}
