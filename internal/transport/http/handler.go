package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quiz-tournament-service/internal/app"
	"quiz-tournament-service/internal/domain"
	"quiz-tournament-service/internal/trivia"
)

// Handler maps the quiz use cases onto REST endpoints. The participant
// identity comes from the X-User-ID header, already authenticated upstream.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.categories)
	mux.HandleFunc("GET /api/tournaments/{id}/questions", h.startQuiz)
	mux.HandleFunc("GET /api/tournaments/{id}/questions/{number}", h.questionByNumber)
	mux.HandleFunc("POST /api/tournaments/{id}/answers", h.submitAnswer)
	mux.HandleFunc("GET /api/tournaments/{id}/session", h.sessionStatus)
	mux.HandleFunc("POST /api/tournaments/{id}/complete", h.completeQuiz)
	mux.HandleFunc("GET /api/tournaments/{id}/result", h.existingResult)
	mux.HandleFunc("DELETE /api/cache/tournaments/{id}", h.invalidateTournament)
	mux.HandleFunc("DELETE /api/cache", h.invalidateAll)
	mux.HandleFunc("GET /api/cache/stats", h.cacheStats)
}

type answerRequest struct {
	QuestionNumber int    `json:"questionNumber"`
	Answer         string `json:"answer"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, trivia.AvailableCategories())
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}
	questions, err := h.service.StartQuiz(r.Context(), userID, tournamentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) questionByNumber(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid question number", Reason: "invalid_question_number"})
		return
	}
	question, err := h.service.QuestionByNumber(r.Context(), userID, tournamentID, number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Reason: "invalid_body"})
		return
	}
	feedback, err := h.service.SubmitAnswer(r.Context(), userID, tournamentID, req.QuestionNumber, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (h *Handler) sessionStatus(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.SessionStatus(r.Context(), userID, tournamentID))
}

func (h *Handler) completeQuiz(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}
	completion, err := h.service.CompleteQuiz(r.Context(), userID, tournamentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completion)
}

func (h *Handler) existingResult(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, ok := h.identify(w, r)
	if !ok {
		return
	}
	result, found, err := h.service.ExistingResult(r.Context(), userID, tournamentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no result recorded", Reason: "result_not_found"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) invalidateTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id", Reason: "invalid_tournament_id"})
		return
	}
	if err := h.service.InvalidateTournament(r.Context(), tournamentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidateAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.InvalidateAllCaches(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// identify extracts the trusted participant id and the tournament path id.
func (h *Handler) identify(w http.ResponseWriter, r *http.Request) (userID, tournamentID int64, ok bool) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing or invalid X-User-ID header", Reason: "invalid_user"})
		return 0, 0, false
	}
	tournamentID, err = strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id", Reason: "invalid_tournament_id"})
		return 0, 0, false
	}
	return userID, tournamentID, true
}

func writeError(w http.ResponseWriter, err error) {
	status, reason := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrTournamentNotFound):
		status, reason = http.StatusNotFound, "tournament_not_found"
	case errors.Is(err, domain.ErrSessionNotFound):
		status, reason = http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrInvalidQuestionNumber):
		status, reason = http.StatusBadRequest, "invalid_question_number"
	case errors.Is(err, domain.ErrTournamentNotStarted):
		status, reason = http.StatusConflict, "tournament_not_started"
	case errors.Is(err, domain.ErrTournamentEnded):
		status, reason = http.StatusConflict, "tournament_ended"
	case errors.Is(err, domain.ErrQuizNotFinished):
		status, reason = http.StatusConflict, "quiz_not_finished"
	}
	if status == http.StatusInternalServerError {
		log.Printf("http: internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Reason: reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: write response: %v", err)
	}
}
