// Package clock источник текущего времени. Все компоненты получают время только через Clock,
// чтобы окна напоминаний и запрет отмены можно было детерминированно проверять в тестах.
package clock

import (
	"sync"
	"time"
)

// Clock возвращает текущее локальное время
type Clock interface {
	Now() time.Time
}

// Real системные часы в заданном часовом поясе
type Real struct {
	Location *time.Location
}

// NewReal создаёт системные часы. nil означает time.Local.
func NewReal(loc *time.Location) Real {
	if loc == nil {
		loc = time.Local
	}
	return Real{Location: loc}
}

// Now текущее время
func (r Real) Now() time.Time {
	if r.Location == nil {
		return time.Now()
	}
	return time.Now().In(r.Location)
}

// Fixed управляемые часы для тестов
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed создаёт часы, остановленные на now
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

// Now текущее время
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set переставляет часы
func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance сдвигает часы вперёд
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
