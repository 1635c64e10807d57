package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DateLayout формат календарной даты (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// MonthLayout формат месяца (YYYY-MM)
const MonthLayout = "2006-01"

var (
	// ErrInvalidDate возвращается при некорректной строке даты
	ErrInvalidDate = errors.New("invalid date string format")

	// ErrInvalidMonth возвращается при некорректном месяце
	ErrInvalidMonth = errors.New("invalid month")
)

// Date календарная дата без времени и часового пояса.
// Все сравнения дат в сервисе выполняются через этот тип, чтобы исключить сдвиги на границе месяцев.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate создает нормализованную дату (31 февраля превращается в 2/3 марта, как в time.Date)
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf возвращает календарную дату момента времени в его собственном часовом поясе
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate разбирает строку формата YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// MustParseDate как ParseDate, но паникует при ошибке. Только для тестов и констант.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time возвращает полночь даты в UTC
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String возвращает каноническое представление YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero возвращает true для незаданной даты
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Weekday день недели (0 = воскресенье)
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays сдвигает дату на n дней
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before возвращает true, если d раньше other
func (d Date) Before(other Date) bool {
	return d.compare(other) < 0
}

// After возвращает true, если d позже other
func (d Date) After(other Date) bool {
	return d.compare(other) > 0
}

// Equal возвращает true для одинаковых календарных дат
func (d Date) Equal(other Date) bool {
	return d.compare(other) == 0
}

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return int(d.Month) - int(other.Month)
	default:
		return d.Day - other.Day
	}
}

// MonthYear месяц, к которому относится дата
func (d Date) MonthYear() MonthYear {
	return MonthYear{Year: d.Year, Month: d.Month}
}

// Value реализует driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan реализует sql.Scanner. Postgres отдаёт DATE как time.Time, строки тоже поддерживаются.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T into Date", ErrInvalidDate, value)
	}
}

func (d *Date) scanString(s string) error {
	// Драйвер может вернуть дату с временем (RFC3339), берём только первые 10 символов
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON сериализует дату как "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON разбирает дату из "YYYY-MM-DD"
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthYear календарный месяц. Строковое представление "YYYY-MM" используется как watermark генерации.
type MonthYear struct {
	Year  int
	Month time.Month
}

// NewMonthYear создает месяц с проверкой диапазона
func NewMonthYear(year int, month int) (MonthYear, error) {
	if month < 1 || month > 12 {
		return MonthYear{}, fmt.Errorf("%w: month=%d", ErrInvalidMonth, month)
	}
	if year < 1970 || year > 9999 {
		return MonthYear{}, fmt.Errorf("%w: year=%d", ErrInvalidMonth, year)
	}
	return MonthYear{Year: year, Month: time.Month(month)}, nil
}

// ParseMonthYear разбирает строку "YYYY-MM"
func ParseMonthYear(s string) (MonthYear, error) {
	if len(s) != len(MonthLayout) || s[4] != '-' {
		return MonthYear{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return MonthYear{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	month, err := strconv.Atoi(s[5:])
	if err != nil {
		return MonthYear{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return NewMonthYear(year, month)
}

// String возвращает "YYYY-MM"
func (m MonthYear) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// FirstDay первый день месяца
func (m MonthYear) FirstDay() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// LastDay последний день месяца
func (m MonthYear) LastDay() Date {
	return Date{Year: m.Year, Month: m.Month, Day: m.DaysIn()}
}

// DaysIn количество дней в месяце
func (m MonthYear) DaysIn() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Next следующий календарный месяц
func (m MonthYear) Next() MonthYear {
	if m.Month == time.December {
		return MonthYear{Year: m.Year + 1, Month: time.January}
	}
	return MonthYear{Year: m.Year, Month: m.Month + 1}
}

// Contains возвращает true, если дата лежит в этом месяце
func (m MonthYear) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}
