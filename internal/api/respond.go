package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

const (
	msgInvalidBody      = "некорректное тело запроса"
	msgInvalidID        = "некорректный идентификатор"
	msgUnauthorized     = "не указан пользователь"
	msgForbidden        = "доступ запрещен"
	msgNotFound         = "не найдено"
	msgSlotTaken        = "это время уже занято, выберите другое"
	msgInvalidStatus    = "запись уже изменена, обновите данные"
	msgCancelWindow     = "до занятия осталось слишком мало времени для отмены"
	msgSlotInPast       = "нельзя записаться на прошедшее время"
	msgInternal         = "внутренняя ошибка сервера"
	msgValidationPrefix = "некорректные данные: "
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor отображает доменную ошибку в HTTP статус и текст для клиента
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrSlotNoLongerAvailable):
		return http.StatusConflict, msgSlotTaken
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, msgInvalidStatus
	case errors.Is(err, model.ErrCancellationWindowClosed):
		return http.StatusUnprocessableEntity, msgCancelWindow
	case errors.Is(err, model.ErrSlotInPast):
		return http.StatusBadRequest, msgSlotInPast
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, msgValidationPrefix + err.Error()
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
