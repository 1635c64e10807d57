package metrics

import "time"

// ObserveBookingsGenerated увеличивает счётчик созданных бронирований
func (m *Metrics) ObserveBookingsGenerated(n int) {
	if n > 0 {
		m.BookingsGenerated.Add(float64(n))
	}
}

// ObserveScheduleFailed фиксирует ошибку обработки расписания
func (m *Metrics) ObserveScheduleFailed(reason string) {
	m.ScheduleGenerationFailed.WithLabelValues(reason).Inc()
}

// ObserveScheduleSkipped фиксирует расписание, не прошедшее проверку допуска
func (m *Metrics) ObserveScheduleSkipped(reason string) {
	m.ScheduleSkipped.WithLabelValues(reason).Inc()
}

// ObserveInvalidSchedule фиксирует расписание без обязательных полей шаблона
func (m *Metrics) ObserveInvalidSchedule() {
	m.InvalidSchedules.Inc()
}

// ObserveRun фиксирует длительность прогона генерации
func (m *Metrics) ObserveRun(trigger string, d time.Duration) {
	m.GenerationRunDuration.WithLabelValues(trigger).Observe(d.Seconds())
}

// Nop пустая реализация для тестов и выключенных метрик
type Nop struct{}

func (Nop) ObserveBookingsGenerated(int) {}
func (Nop) ObserveScheduleFailed(string) {}
func (Nop) ObserveScheduleSkipped(string) {}
func (Nop) ObserveInvalidSchedule() {}
func (Nop) ObserveRun(string, time.Duration) {}
