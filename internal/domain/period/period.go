// Пакет period — календарные дни и окна выборки.
// Сутки считаются в заданном часовом поясе: начало окна — 00:00:00.000 включительно,
// конец — следующая полночь, не включительно.
package period

import (
	"errors"
	"fmt"
	"time"

	"github.com/bigkaa/datacollect/internal/domain/model"
)

// ErrInvalidDate — дата не соответствует формату yyyy-MM-dd.
var ErrInvalidDate = errors.New("некорректная дата, ожидается формат YYYY-MM-DD")

// ErrInvertedRange — конец периода раньше начала.
var ErrInvertedRange = errors.New("дата окончания раньше даты начала")

// Window — полуинтервал [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// ParseDay разбирает календарную дату и возвращает её полночь в loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Midnight возвращает начало суток t в loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NextMidnight возвращает начало следующих суток.
// В дни перевода часов сутки длятся 23 или 25 часов.
func NextMidnight(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, day.Location())
}

// Day возвращает окно одних суток, начинающихся в day.
func Day(day time.Time) Window {
	return Window{From: day, To: NextMidnight(day)}
}

// Range возвращает окно от начала start до конца суток end включительно.
func Range(start, end time.Time) (Window, error) {
	if end.Before(start) {
		return Window{}, fmt.Errorf("%w: %s < %s", ErrInvertedRange,
			end.Format(model.DateLayout), start.Format(model.DateLayout))
	}
	return Window{From: start, To: NextMidnight(end)}, nil
}

// Today возвращает окно текущих суток.
func Today(now time.Time, loc *time.Location) Window {
	return Day(Midnight(now, loc))
}

// DateKey возвращает календарную дату момента t в loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(model.DateLayout)
}
