// Package metrics Prometheus метрики записи на занятия и рассылки напоминаний.
// Методы безопасно вызывать на nil *Metrics: метрики тогда просто не собираются.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tutor_scheduler"

// Результаты операций для меток
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	bookingsCommitted   prometheus.Counter
	bookingConflicts    prometheus.Counter
	bookingTransitions  *prometheus.CounterVec
	remindersSent       *prometheus.CounterVec
	reminderFlagFailure prometheus.Counter
	sweepDuration       prometheus.Histogram
	httpRequests        *prometheus.HistogramVec
}

// New создаёт и регистрирует коллекторы в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_committed_total",
			Help:      "Created booking requests.",
		}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Commits rejected because the slot was taken.",
		}),
		bookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by action and result.",
		}, []string{"action", "result"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminder deliveries by kind, recipient role and result.",
		}, []string{"kind", "role", "result"}),
		reminderFlagFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_flag_failures_total",
			Help:      "Failed writes of reminder sent flags.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_sweep_duration_seconds",
			Help:      "Duration of a reminder sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request duration by route, method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}

	reg.MustRegister(
		m.bookingsCommitted,
		m.bookingConflicts,
		m.bookingTransitions,
		m.remindersSent,
		m.reminderFlagFailure,
		m.sweepDuration,
		m.httpRequests,
	)

	return m
}

// BookingCommitted новая заявка сохранена
func (m *Metrics) BookingCommitted() {
	if m == nil {
		return
	}
	m.bookingsCommitted.Inc()
}

// BookingConflict слот оказался занят при подтверждении
func (m *Metrics) BookingConflict() {
	if m == nil {
		return
	}
	m.bookingConflicts.Inc()
}

// Transition переход статуса записи
func (m *Metrics) Transition(action, result string) {
	if m == nil {
		return
	}
	m.bookingTransitions.WithLabelValues(action, result).Inc()
}

// ReminderSent попытка доставки напоминания
func (m *Metrics) ReminderSent(kind, role string, ok bool) {
	if m == nil {
		return
	}
	result := ResultOK
	if !ok {
		result = ResultError
	}
	m.remindersSent.WithLabelValues(kind, role, result).Inc()
}

// ReminderFlagFailure не удалось сохранить флаг напоминания
func (m *Metrics) ReminderFlagFailure() {
	if m == nil {
		return
	}
	m.reminderFlagFailure.Inc()
}

// ObserveSweep длительность обхода
func (m *Metrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}

// ObserveHTTP длительность запроса к API. route шаблон маршрута, а не путь
func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Observe(d.Seconds())
}
