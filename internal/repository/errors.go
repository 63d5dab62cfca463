package repository

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

var (
	// ErrBookingNotFound запись не найдена
	ErrBookingNotFound = fmt.Errorf("repository: booking: %w", model.ErrNotFound)

	// ErrTutorNotFound репетитор не найден
	ErrTutorNotFound = fmt.Errorf("repository: tutor: %w", model.ErrNotFound)

	// ErrStudentNotFound ученик не найден
	ErrStudentNotFound = fmt.Errorf("repository: student: %w", model.ErrNotFound)

	// ErrStatusChanged статус записи изменился между чтением и обновлением
	ErrStatusChanged = errors.New("repository: booking status changed concurrently")

	// ErrOverlap сработало ограничение исключения по пересечению активных записей
	ErrOverlap = errors.New("repository: booking overlaps an active booking")

	// ErrTxConflict транзакция не прошла после всех повторов из-за конфликта сериализации
	ErrTxConflict = errors.New("repository: serialization conflict")

	// ErrBuildQuery ошибка построения SQL запроса
	ErrBuildQuery = errors.New("repository: failed to build query")
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgExclusionViolation   = "23P01"
)
