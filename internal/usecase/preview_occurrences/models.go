package preview_occurrences

import "github.com/m04kA/SMC-RecurringService/pkg/types"

// Request модель запроса предпросмотра дат
type Request struct {
	ScheduleID int64
	UserID     int64
	Year       *int
	Month      *int
}

// Occurrence одна дата месяца по шаблону расписания
type Occurrence struct {
	Date             types.Date
	InWindow         bool // дата внутри [start_date, end_date]
	AlreadyGenerated bool // бронирование на дату уже существует
}

// Response результат предпросмотра
type Response struct {
	ScheduleID  int64
	MonthYear   types.MonthYear
	Frequency   string
	Eligible    bool    // пройдёт ли расписание проверку допуска при генерации
	SkipReason  string  // причина, если Eligible = false
	Watermark   *string // last_generated_month
	ValidShape  bool    // есть ли обязательные поля шаблона
	Occurrences []Occurrence
	ToGenerate  int // сколько бронирований создаст генерация прямо сейчас
}
