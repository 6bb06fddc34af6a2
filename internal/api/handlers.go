package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	"github.com/vaxsched/vaccine-scheduler/internal/auth"
	"github.com/vaxsched/vaccine-scheduler/internal/booking"
)

type Handler struct {
	engine   *booking.Engine
	accounts account.Store
	secret   string
}

func NewHandler(engine *booking.Engine, accounts account.Store, secret string) *Handler {
	return &Handler{engine: engine, accounts: accounts, secret: secret}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	role, ok := account.ParseRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_role", "role must be patient or caregiver")
		return
	}
	if err := h.engine.Register(r.Context(), req.Username, req.Password, role); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	a, err := h.accounts.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	token, err := auth.MakeToken(a, h.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *Handler) publishAvailability(w http.ResponseWriter, r *http.Request) {
	var req PublishAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := h.engine.PublishAvailability(r.Context(), sessionFrom(r.Context()), date); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"date": req.Date})
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	appt, err := h.engine.Reserve(r.Context(), sessionFrom(r.Context()), date, req.Vaccine)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ReserveResponse{ID: appt.ID, Caregiver: appt.Caregiver})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a positive integer")
		return
	}
	if err := h.engine.Cancel(r.Context(), sessionFrom(r.Context()), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.engine.ListAppointments(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, AppointmentResponse{
			ID:        a.ID,
			Caregiver: a.Caregiver,
			Patient:   a.Patient,
			Vaccine:   a.Vaccine,
			Date:      a.Date.Format(booking.DateLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) searchSchedule(w http.ResponseWriter, r *http.Request) {
	date, err := booking.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	sched, err := h.engine.SearchSchedule(r.Context(), sessionFrom(r.Context()), date)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := ScheduleResponse{
		Date:       sched.Date.Format(booking.DateLayout),
		Caregivers: sched.Caregivers,
		Vaccines:   make([]VaccineResponse, 0, len(sched.Vaccines)),
	}
	if resp.Caregivers == nil {
		resp.Caregivers = []string{}
	}
	for _, v := range sched.Vaccines {
		resp.Vaccines = append(resp.Vaccines, VaccineResponse{Name: v.Name, Doses: v.Doses})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addDoses(w http.ResponseWriter, r *http.Request) {
	var req AddDosesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.engine.AddDoses(r.Context(), sessionFrom(r.Context()), name, req.Count); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"vaccine": name})
}
