package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
)

// AvailabilityRepository хранит недельный шаблон рабочих часов репетитора,
// одна строка на день недели
type AvailabilityRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewAvailabilityRepository создаёт новый репозиторий
func NewAvailabilityRepository(pool *pgxpool.Pool, logger *zap.Logger) *AvailabilityRepository {
	return &AvailabilityRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// GetAvailability получает шаблон репетитора.
// Дни без строки в таблице считаются неактивными.
func (r *AvailabilityRepository) GetAvailability(ctx context.Context, tutorID int64) (model.AvailabilityTemplate, error) {
	template := model.AvailabilityTemplate{TutorID: tutorID}

	var exists bool
	err := r.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tutors WHERE id = $1)`, tutorID).Scan(&exists)
	if err != nil {
		return template, fmt.Errorf("check tutor exists: %w", err)
	}
	if !exists {
		return template, fmt.Errorf("%w: id %d", ErrTutorNotFound, tutorID)
	}

	query := `
		SELECT weekday, is_active, start_time, end_time
		FROM tutor_availability
		WHERE tutor_id = $1
		ORDER BY weekday
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return template, fmt.Errorf("get availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			weekday    int16
			active     bool
			start, end pgtype.Time
		)
		if err := rows.Scan(&weekday, &active, &start, &end); err != nil {
			return template, fmt.Errorf("scan availability: %w", err)
		}

		w := model.Weekday(weekday)
		if !w.Valid() {
			r.logger.Warn("Skipping availability row with invalid weekday",
				zap.Int64("tutor_id", tutorID),
				zap.Int16("weekday", weekday),
			)
			continue
		}

		day := model.DaySchedule{Active: active}
		if start.Valid {
			day.Start = fromPgTime(start).String()
		}
		if end.Valid {
			day.End = fromPgTime(end).String()
		}
		template.Set(w, day)
	}

	if err := rows.Err(); err != nil {
		return template, fmt.Errorf("get availability: %w", err)
	}

	return template, nil
}

// SaveDay сохраняет расписание одного дня недели
func (r *AvailabilityRepository) SaveDay(ctx context.Context, tutorID int64, w model.Weekday, day model.DaySchedule) error {
	if !w.Valid() {
		return fmt.Errorf("%w: weekday %d", model.ErrValidation, int(w))
	}

	var start, end pgtype.Time
	if day.Active {
		from, to, err := day.Hours()
		if err != nil {
			return err
		}
		start, end = toPgTime(from), toPgTime(to)
	}

	query := `
		INSERT INTO tutor_availability (tutor_id, weekday, is_active, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tutor_id, weekday)
		DO UPDATE SET is_active = EXCLUDED.is_active,
		              start_time = EXCLUDED.start_time,
		              end_time = EXCLUDED.end_time,
		              updated_at = NOW()
	`

	if _, err := r.ExecAffected(ctx, query, tutorID, int16(w), day.Active, start, end); err != nil {
		return fmt.Errorf("save availability day: %w", err)
	}

	return nil
}
