package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
)

var bookingColumns = []string{
	"id",
	"tutor_id",
	"guardian_id",
	"student_id",
	"subject",
	"lesson_kind",
	"lesson_date",
	"start_time",
	"end_time",
	"price",
	"status",
	"created_at",
	"approved_at",
	"rejection_reason",
	"cancelled_at",
	"cancelled_by",
	"notified_24h",
	"notified_1h",
}

type BookingRepository struct {
	*base.Repository
	loc *time.Location
}

// NewBookingRepository создаёт репозиторий записей.
// loc часовой пояс, в котором интерпретируются дата и время занятий.
func NewBookingRepository(pool *pgxpool.Pool, loc *time.Location) *BookingRepository {
	if loc == nil {
		loc = time.Local
	}
	return &BookingRepository{
		Repository: base.NewRepository(pool),
		loc:        loc,
	}
}

// Create создаёт новую запись и заполняет ID и CreatedAt.
// Пересечение с активной записью того же репетитора возвращает ErrOverlap.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query, args, err := base.Psql.Insert("bookings").
		Columns(
			"tutor_id",
			"guardian_id",
			"student_id",
			"subject",
			"lesson_kind",
			"lesson_date",
			"start_time",
			"end_time",
			"price",
			"status",
		).
		Values(
			booking.TutorID,
			booking.GuardianID,
			booking.StudentID,
			booking.Subject,
			string(booking.LessonKind),
			toPgDate(booking.Date),
			toPgTime(booking.StartTime),
			toPgTime(booking.EndTime),
			booking.Price,
			string(booking.Status),
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: create booking: %v", ErrBuildQuery, err)
	}

	err = r.QueryRow(ctx, query, args...).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		if base.PgErrorCode(err) == pgExclusionViolation {
			return fmt.Errorf("%w: tutor %d at %s %s", ErrOverlap,
				booking.TutorID, booking.Date.Format(time.DateOnly), booking.Interval())
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query, args, err := base.Psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: get booking by id: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrBookingNotFound, id)
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return &booking, nil
}

// ListActiveByTutor записи репетитора в статусах PENDING и APPROVED
// на даты из диапазона [from, to] включительно.
// Внутри транзакции строки блокируются FOR UPDATE.
func (r *BookingRepository) ListActiveByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]model.Booking, error) {
	builder := base.Psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"tutor_id": tutorID}).
		Where(sq.Eq{"status": statusStrings(model.BusyStatuses)}).
		Where(sq.GtOrEq{"lesson_date": toPgDate(from)}).
		Where(sq.LtOrEq{"lesson_date": toPgDate(to)}).
		OrderBy("lesson_date", "start_time")

	if r.InTx(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	return r.list(ctx, builder, "list active bookings by tutor")
}

// ListByTutor записи репетитора на даты [from, to] с фильтром по статусам.
// Пустой список статусов означает все статусы.
func (r *BookingRepository) ListByTutor(
	ctx context.Context,
	tutorID int64,
	from, to time.Time,
	statuses ...model.BookingStatus,
) ([]model.Booking, error) {
	builder := base.Psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"tutor_id": tutorID}).
		Where(sq.GtOrEq{"lesson_date": toPgDate(from)}).
		Where(sq.LtOrEq{"lesson_date": toPgDate(to)}).
		OrderBy("lesson_date", "start_time")

	if len(statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": statusStrings(statuses)})
	}

	return r.list(ctx, builder, "list bookings by tutor")
}

// ListByGuardian все записи родителя, новые сверху
func (r *BookingRepository) ListByGuardian(ctx context.Context, guardianID int64) ([]model.Booking, error) {
	builder := base.Psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"guardian_id": guardianID}).
		OrderBy("lesson_date DESC", "start_time DESC")

	return r.list(ctx, builder, "list bookings by guardian")
}

// ListPendingByTutor заявки, ожидающие решения репетитора
func (r *BookingRepository) ListPendingByTutor(ctx context.Context, tutorID int64) ([]model.Booking, error) {
	builder := base.Psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"tutor_id": tutorID, "status": string(model.BookingStatusPending)}).
		OrderBy("lesson_date", "start_time")

	return r.list(ctx, builder, "list pending bookings by tutor")
}

// ListApprovedBetween подтверждённые записи всех репетиторов на даты [from, to]
func (r *BookingRepository) ListApprovedBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	builder := base.Psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"status": string(model.BookingStatusApproved)}).
		Where(sq.GtOrEq{"lesson_date": toPgDate(from)}).
		Where(sq.LtOrEq{"lesson_date": toPgDate(to)}).
		OrderBy("lesson_date", "start_time")

	return r.list(ctx, builder, "list approved bookings")
}

// UpdateTransition сохраняет результат перехода состояния.
// Обновление выполняется только если текущий статус равен expected,
// иначе возвращается ErrStatusChanged.
func (r *BookingRepository) UpdateTransition(ctx context.Context, booking model.Booking, expected model.BookingStatus) error {
	var cancelledBy *string
	if booking.CancelledBy != nil {
		role := string(*booking.CancelledBy)
		cancelledBy = &role
	}

	query, args, err := base.Psql.Update("bookings").
		Set("status", string(booking.Status)).
		Set("approved_at", booking.ApprovedAt).
		Set("rejection_reason", booking.RejectionReason).
		Set("cancelled_at", booking.CancelledAt).
		Set("cancelled_by", cancelledBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": booking.ID, "status": string(expected)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: update booking transition: %v", ErrBuildQuery, err)
	}

	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking transition: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: booking %d is no longer %s", ErrStatusChanged, booking.ID, expected)
	}

	return nil
}

// MarkNotified выставляет флаг отправленного напоминания.
// Флаг выставляется один раз и никогда не сбрасывается, повторный вызов ничего не меняет.
func (r *BookingRepository) MarkNotified(ctx context.Context, id int64, kind model.ReminderKind) error {
	column, err := notifiedColumn(kind)
	if err != nil {
		return err
	}

	query, args, err := base.Psql.Update("bookings").
		Set(column, true).
		Where(sq.Eq{"id": id, column: false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: mark booking notified: %v", ErrBuildQuery, err)
	}

	if _, err := r.ExecAffected(ctx, query, args...); err != nil {
		return fmt.Errorf("mark booking notified: %w", err)
	}
	return nil
}

// LockTutor берёт транзакционную advisory блокировку на репетитора.
// Имеет смысл только внутри транзакции: блокировка снимается при её завершении.
func (r *BookingRepository) LockTutor(ctx context.Context, tutorID int64) error {
	if _, err := r.Executor(ctx).Exec(ctx, "SELECT pg_advisory_xact_lock($1)", tutorID); err != nil {
		return fmt.Errorf("lock tutor: %w", err)
	}
	return nil
}

func (r *BookingRepository) list(ctx context.Context, builder sq.SelectBuilder, op string) ([]model.Booking, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBuildQuery, op, err)
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (r *BookingRepository) scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b           model.Booking
		kind        string
		status      string
		date        pgtype.Date
		start, end  pgtype.Time
		cancelledBy *string
	)

	err := row.Scan(
		&b.ID,
		&b.TutorID,
		&b.GuardianID,
		&b.StudentID,
		&b.Subject,
		&kind,
		&date,
		&start,
		&end,
		&b.Price,
		&status,
		&b.CreatedAt,
		&b.ApprovedAt,
		&b.RejectionReason,
		&b.CancelledAt,
		&cancelledBy,
		&b.Notified24h,
		&b.Notified1h,
	)
	if err != nil {
		return model.Booking{}, err
	}

	b.LessonKind = model.LessonKind(kind)
	b.Status = model.BookingStatus(status)
	b.Date = fromPgDate(date, r.loc)
	b.StartTime = fromPgTime(start)
	b.EndTime = fromPgTime(end)
	if cancelledBy != nil {
		role := model.ActorRole(*cancelledBy)
		b.CancelledBy = &role
	}

	return b, nil
}

func notifiedColumn(kind model.ReminderKind) (string, error) {
	switch kind {
	case model.Reminder24h:
		return "notified_24h", nil
	case model.Reminder1h:
		return "notified_1h", nil
	}
	return "", fmt.Errorf("%w: unknown reminder kind %q", model.ErrValidation, kind)
}

func statusStrings(statuses []model.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// toPgDate календарная дата без учёта часового пояса
func toPgDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func fromPgDate(d pgtype.Date, loc *time.Location) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func toPgTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t.Minutes()) * int64(time.Minute/time.Microsecond), Valid: true}
}

func fromPgTime(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDay(t.Microseconds / int64(time.Minute/time.Microsecond))
}
