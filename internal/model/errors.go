package model

import "errors"

var (
	// ErrValidation некорректные входные данные (шаблон, длительность, время)
	ErrValidation = errors.New("validation error")

	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("not found")

	// ErrForbidden пользователь не является участником бронирования
	ErrForbidden = errors.New("forbidden")

	// ErrSlotNoLongerAvailable слот заняли между показом и подтверждением записи.
	// Вызывающий должен заново запросить свободные слоты.
	ErrSlotNoLongerAvailable = errors.New("slot is no longer available")

	// ErrSlotInPast запись на прошедшее время
	ErrSlotInPast = errors.New("slot is in the past")

	// ErrInvalidTransition переход недопустим из текущего статуса.
	// Кто-то уже изменил запись: нужно обновить данные, а не повторять попытку.
	ErrInvalidTransition = errors.New("invalid booking transition")

	// ErrCancellationWindowClosed до занятия осталось меньше допустимого для отмены времени
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
)

// ErrStaleBooking синоним ErrInvalidTransition для конкурентных изменений
var ErrStaleBooking = ErrInvalidTransition
