package model

import (
	"fmt"
	"strings"
	"time"
)

// TutorCancellationNotice минимальное время до начала подтверждённого занятия,
// за которое репетитор ещё может его отменить
const TutorCancellationNotice = 2 * time.Hour

// Переходы ниже чистые: возвращают изменённую копию и не трогают исходную запись.
// Сохранение выполняется compare-and-set по исходному статусу.

// Approve PENDING -> APPROVED
func (b Booking) Approve(now time.Time) (Booking, error) {
	if b.Status != BookingStatusPending {
		return b, invalidTransition(b, BookingStatusApproved)
	}

	approvedAt := now
	b.Status = BookingStatusApproved
	b.ApprovedAt = &approvedAt
	return b, nil
}

// Reject PENDING -> REJECTED, причина обязательна
func (b Booking) Reject(now time.Time, reason string) (Booking, error) {
	if b.Status != BookingStatusPending {
		return b, invalidTransition(b, BookingStatusRejected)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return b, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}

	b.Status = BookingStatusRejected
	b.RejectionReason = &reason
	return b, nil
}

// Cancel PENDING|APPROVED -> CANCELLED.
// Репетитор не может отменить подтверждённое занятие позже чем за notice до начала.
func (b Booking) Cancel(now time.Time, by ActorRole, notice time.Duration) (Booking, error) {
	if !b.Status.IsBusy() {
		return b, invalidTransition(b, BookingStatusCancelled)
	}

	if by == RoleTutor && b.Status == BookingStatusApproved {
		deadline := b.StartsAt().Add(-notice)
		if !now.Before(deadline) {
			return b, fmt.Errorf("%w: booking %d starts at %s, tutor may cancel until %s",
				ErrCancellationWindowClosed, b.ID,
				b.StartsAt().Format("02.01.2006 15:04"), deadline.Format("02.01.2006 15:04"))
		}
	}

	cancelledAt := now
	role := by
	b.Status = BookingStatusCancelled
	b.CancelledAt = &cancelledAt
	b.CancelledBy = &role
	return b, nil
}

func invalidTransition(b Booking, to BookingStatus) error {
	return fmt.Errorf("%w: booking %d is %s, cannot become %s", ErrInvalidTransition, b.ID, b.Status, to)
}
