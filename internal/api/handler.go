package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// Handler JSON API поверх сервисов записи
type Handler struct {
	availability AvailabilityService
	bookings     BookingService
	schedule     ScheduleService
	logger       *zap.Logger
}

func NewHandler(
	availability AvailabilityService,
	bookings BookingService,
	schedule ScheduleService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		availability: availability,
		bookings:     bookings,
		schedule:     schedule,
		logger:       logger,
	}
}

// Register регистрирует маршруты под /api/v1
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	// Свободное время репетитора видно без авторизации
	api.HandleFunc("/tutors/{tutorId}/available-dates", h.AvailableDates).Methods(http.MethodGet)
	api.HandleFunc("/tutors/{tutorId}/free-slots", h.FreeSlots).Methods(http.MethodGet)
	api.HandleFunc("/tutors/{tutorId}/availability", h.Availability).Methods(http.MethodGet)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(Auth)

	protected.HandleFunc("/tutors/{tutorId}/schedule", h.Schedule).Methods(http.MethodGet)
	protected.HandleFunc("/tutors/{tutorId}/availability/{weekday}", h.SetAvailabilityDay).Methods(http.MethodPut)
	protected.HandleFunc("/bookings", h.ListBookings).Methods(http.MethodGet)
	protected.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", h.GetBooking).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/approve", h.Approve).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reject", h.Reject).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/cancel", h.Cancel).Methods(http.MethodPost)
}

// AvailableDates GET /api/v1/tutors/{tutorId}/available-dates?kind=&from=&to=
func (h *Handler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.pathID(w, r, "tutorId")
	if !ok {
		return
	}

	q := r.URL.Query()
	duration, err := durationFromKind(q.Get("kind"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	from, err := parseDate(q.Get("from"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	dates, err := h.availability.AvailableDates(r.Context(), tutorID, duration, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := AvailableDatesResponse{TutorID: tutorID, DurationMinutes: duration, Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.Format(time.DateOnly))
	}
	respondJSON(w, http.StatusOK, resp)
}

// FreeSlots GET /api/v1/tutors/{tutorId}/free-slots?kind=&date=
func (h *Handler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.pathID(w, r, "tutorId")
	if !ok {
		return
	}

	q := r.URL.Query()
	duration, err := durationFromKind(q.Get("kind"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := parseDate(q.Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if date.IsZero() {
		respondError(w, http.StatusBadRequest, msgValidationPrefix+"date is required")
		return
	}

	slots, err := h.availability.FreeSlotsOn(r.Context(), tutorID, duration, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if slots == nil {
		slots = []model.Slot{}
	}

	respondJSON(w, http.StatusOK, FreeSlotsResponse{
		TutorID:         tutorID,
		Date:            date.Format(time.DateOnly),
		DurationMinutes: duration,
		Slots:           slots,
	})
}

// Availability GET /api/v1/tutors/{tutorId}/availability
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.pathID(w, r, "tutorId")
	if !ok {
		return
	}

	template, err := h.availability.Template(r.Context(), tutorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAvailabilityResponse(template, tutorID))
}

// SetAvailabilityDay PUT /api/v1/tutors/{tutorId}/availability/{weekday}
// Тело: {"active": true, "start": "09:00", "end": "18:00"}
func (h *Handler) SetAvailabilityDay(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.pathID(w, r, "tutorId")
	if !ok {
		return
	}
	if !h.isTutor(r, tutorID) {
		respondError(w, http.StatusForbidden, msgForbidden)
		return
	}

	weekday, err := model.ParseWeekday(mux.Vars(r)["weekday"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var day model.DaySchedule
	if err := decodeJSON(r, &day); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	template, err := h.availability.SetDay(r.Context(), tutorID, weekday, day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAvailabilityResponse(template, tutorID))
}

// Schedule GET /api/v1/tutors/{tutorId}/schedule?period=today|tomorrow|week|month
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := h.pathID(w, r, "tutorId")
	if !ok {
		return
	}

	if !h.isTutor(r, tutorID) {
		respondError(w, http.StatusForbidden, msgForbidden)
		return
	}

	period, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.schedule.TutorSchedule(r.Context(), tutorID, period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toScheduleResponse(summary))
}

// ListBookings GET /api/v1/bookings
// Репетитор получает заявки, ожидающие решения, родитель все свои записи.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())

	var (
		bookings []model.Booking
		err      error
	)
	if actor.Role == model.RoleTutor {
		bookings, err = h.bookings.PendingForTutor(r.Context(), actor.ID)
	} else {
		bookings, err = h.bookings.ForGuardian(r.Context(), actor.ID)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponses(bookings))
}

// CreateBooking POST /api/v1/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	if actor.Role != model.RoleGuardian {
		respondError(w, http.StatusForbidden, msgForbidden)
		return
	}

	var req CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	commit, err := req.ToServiceRequest(actor.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	booking, err := h.bookings.Commit(r.Context(), commit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toBookingResponse(*booking))
}

// GetBooking GET /api/v1/bookings/{bookingId}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.pathID(w, r, "bookingId")
	if !ok {
		return
	}
	actor, _ := ActorFrom(r.Context())

	booking, err := h.bookings.Get(r.Context(), bookingID, actor.ID, actor.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponse(*booking))
}

// Approve POST /api/v1/bookings/{bookingId}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.pathID(w, r, "bookingId")
	if !ok {
		return
	}
	actor, _ := ActorFrom(r.Context())
	if actor.Role != model.RoleTutor {
		respondError(w, http.StatusForbidden, msgForbidden)
		return
	}

	booking, err := h.bookings.Approve(r.Context(), bookingID, actor.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponse(*booking))
}

// Reject POST /api/v1/bookings/{bookingId}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.pathID(w, r, "bookingId")
	if !ok {
		return
	}
	actor, _ := ActorFrom(r.Context())
	if actor.Role != model.RoleTutor {
		respondError(w, http.StatusForbidden, msgForbidden)
		return
	}

	var req RejectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	booking, err := h.bookings.Reject(r.Context(), bookingID, actor.ID, req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponse(*booking))
}

// Cancel POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.pathID(w, r, "bookingId")
	if !ok {
		return
	}
	actor, _ := ActorFrom(r.Context())

	booking, err := h.bookings.Cancel(r.Context(), bookingID, actor.ID, actor.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBookingResponse(*booking))
}

// isTutor запрос выполняет сам репетитор tutorID
func (h *Handler) isTutor(r *http.Request, tutorID int64) bool {
	actor, ok := ActorFrom(r.Context())
	return ok && actor.Role == model.RoleTutor && actor.ID == tutorID
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("Invalid path id", zap.String("path", r.URL.Path), zap.String("param", name))
		respondError(w, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

// fail пишет ответ по доменной ошибке; неожиданные ошибки логируются как Error
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("Request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	respondError(w, status, msg)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
