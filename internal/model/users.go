package model

import (
	"strings"
	"time"
)

// Tutor репетитор. Расписание хранится отдельно (AvailabilityTemplate).
type Tutor struct {
	ID          int64     `json:"id"`
	TelegramID  int64     `json:"telegram_id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Patronymic  string    `json:"patronymic,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Guardian родитель (законный представитель ученика)
type Guardian struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Student ученик, принадлежит родителю
type Student struct {
	ID         int64  `json:"id"`
	GuardianID int64  `json:"guardian_id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Grade      int    `json:"grade"`
}

// FullName имя и фамилия репетитора
func (t Tutor) FullName() string {
	return joinName(t.Name, t.Surname)
}

// FullName имя и фамилия родителя
func (g Guardian) FullName() string {
	return joinName(g.Name, g.Surname)
}

// FullName имя и фамилия ученика
func (s Student) FullName() string {
	return joinName(s.Name, s.Surname)
}

// Participants участники записи с контактами для уведомлений
type Participants struct {
	Tutor    Tutor
	Guardian Guardian
	Student  Student
}

// ChatID Telegram ID участника с указанной ролью
func (p Participants) ChatID(role ActorRole) int64 {
	if role == RoleTutor {
		return p.Tutor.TelegramID
	}
	return p.Guardian.TelegramID
}

func joinName(name, surname string) string {
	return strings.TrimSpace(name + " " + surname)
}
