package export

import (
	"time"

	"github.com/bigkaa/datacollect/internal/domain/model"
	"github.com/bigkaa/datacollect/internal/domain/period"
)

// DayGroups — записи, сгруппированные по календарному дню.
// Группы перечисляются в порядке первого появления ключа, а не по сортировке дат.
type DayGroups struct {
	keys   []string
	groups map[string][]*model.Record
	total  int
}

// NewDayGroups создаёт пустой набор групп.
func NewDayGroups() *DayGroups {
	return &DayGroups{groups: make(map[string][]*model.Record)}
}

// GroupByDay раскладывает записи по дням created_at в часовом поясе loc.
func GroupByDay(records []*model.Record, loc *time.Location) *DayGroups {
	g := NewDayGroups()
	for _, r := range records {
		g.Add(period.DateKey(r.CreatedAt, loc), r)
	}
	return g
}

// Add добавляет запись в группу key, создавая группу при первом появлении.
func (g *DayGroups) Add(key string, r *model.Record) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], r)
	g.total++
}

// Keys возвращает ключи групп в порядке первого появления.
func (g *DayGroups) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Records возвращает записи группы key.
func (g *DayGroups) Records(key string) []*model.Record {
	return g.groups[key]
}

// Len — число групп.
func (g *DayGroups) Len() int {
	return len(g.keys)
}

// Total — общее число записей во всех группах.
func (g *DayGroups) Total() int {
	return g.total
}
