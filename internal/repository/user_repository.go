package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
)

// UserRepository справочник репетиторов, родителей и учеников
type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// GetStudent получает ученика по ID
func (r *UserRepository) GetStudent(ctx context.Context, id int64) (*model.Student, error) {
	query := `
		SELECT id, guardian_id, name, surname, grade
		FROM students
		WHERE id = $1
	`

	var s model.Student
	err := r.QueryRow(ctx, query, id).Scan(&s.ID, &s.GuardianID, &s.Name, &s.Surname, &s.Grade)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, id)
		}
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	return &s, nil
}

// Participants получает репетитора, родителя и ученика записи одним запросом
func (r *UserRepository) Participants(ctx context.Context, booking model.Booking) (model.Participants, error) {
	query := `
		SELECT t.id, t.telegram_id, t.name, t.surname,
		       g.id, g.telegram_id, g.name, g.surname, COALESCE(g.phone, ''),
		       s.id, s.guardian_id, s.name, s.surname, s.grade
		FROM tutors t, guardians g, students s
		WHERE t.id = $1 AND g.id = $2 AND s.id = $3
	`

	var p model.Participants
	err := r.QueryRow(ctx, query, booking.TutorID, booking.GuardianID, booking.StudentID).Scan(
		&p.Tutor.ID, &p.Tutor.TelegramID, &p.Tutor.Name, &p.Tutor.Surname,
		&p.Guardian.ID, &p.Guardian.TelegramID, &p.Guardian.Name, &p.Guardian.Surname, &p.Guardian.Phone,
		&p.Student.ID, &p.Student.GuardianID, &p.Student.Name, &p.Student.Surname, &p.Student.Grade,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return p, fmt.Errorf("%w: participants of booking %d", model.ErrNotFound, booking.ID)
		}
		return p, fmt.Errorf("get booking participants: %w", err)
	}

	return p, nil
}
