package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"triage-service/internal/app"
	"triage-service/internal/domain"
)

// APIHandler serves the REST endpoints over TriageService.
type APIHandler struct {
	service *app.TriageService
	logger  *zap.Logger
}

func NewAPIHandler(service *app.TriageService, logger *zap.Logger) *APIHandler {
	return &APIHandler{service: service, logger: logger}
}

type answersRequest struct {
	Answers []domain.AnsweredQuestion `json:"answers"`
}

type submitRequest struct {
	Answers []domain.AnsweredQuestion `json:"answers"`
	Strict  bool                      `json:"strict"`
}

type checkStopRequest struct {
	QuestionID string          `json:"questionId"`
	Response   domain.Response `json:"response"`
}

type checkStopResponse struct {
	ShouldStop bool          `json:"shouldStop"`
	Level      *domain.Level `json:"level"`
}

type startSessionRequest struct {
	Specialty string `json:"specialty"`
}

type questionsResponse struct {
	Specialty string                      `json:"specialty"`
	Questions []domain.QuestionDefinition `json:"questions"`
	HasMore   bool                        `json:"hasMore"`
}

// ListSpecialties handles GET /v1/specialties
func (h *APIHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.service.Specialties(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"specialties": specialties})
}

// InitialQuestions handles GET /v1/specialties/{id}/questions
func (h *APIHandler) InitialQuestions(w http.ResponseWriter, r *http.Request) {
	specialty := mux.Vars(r)["id"]
	questions, err := h.service.InitialQuestions(r.Context(), specialty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Specialty: specialty, Questions: nonNil(questions), HasMore: len(questions) > 0})
}

// NextQuestions handles POST /v1/specialties/{id}/next
func (h *APIHandler) NextQuestions(w http.ResponseWriter, r *http.Request) {
	specialty := mux.Vars(r)["id"]
	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	questions, err := h.service.NextQuestions(r.Context(), specialty, req.Answers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Specialty: specialty, Questions: nonNil(questions), HasMore: len(questions) > 0})
}

// CheckEarlyStop handles POST /v1/specialties/{id}/check-stop
func (h *APIHandler) CheckEarlyStop(w http.ResponseWriter, r *http.Request) {
	specialty := mux.Vars(r)["id"]
	var req checkStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stop, err := h.service.CheckEarlyStop(r.Context(), specialty, req.QuestionID, req.Response)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := checkStopResponse{ShouldStop: stop.Stops}
	if stop.Stops {
		resp.Level = &stop.Level
	}
	writeJSON(w, http.StatusOK, resp)
}

// Submit handles POST /v1/specialties/{id}/triage
func (h *APIHandler) Submit(w http.ResponseWriter, r *http.Request) {
	specialty := mux.Vars(r)["id"]
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.service.Submit(r.Context(), specialty, req.Answers, req.Strict)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// StartSession handles POST /v1/sessions
func (h *APIHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Specialty == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.service.StartSession(r.Context(), req.Specialty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GetSession handles GET /v1/sessions/{id}
func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Answer handles POST /v1/sessions/{id}/answers
func (h *APIHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req checkStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.service.Answer(r.Context(), mux.Vars(r)["id"], req.QuestionID, req.Response)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Abandon handles DELETE /v1/sessions/{id}
func (h *APIHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Abandon(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownSpecialty),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIncomplete):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func nonNil(qs []domain.QuestionDefinition) []domain.QuestionDefinition {
	if qs == nil {
		return []domain.QuestionDefinition{}
	}
	return qs
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
