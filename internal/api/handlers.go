package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/microlearn/microlearn-server/internal/logger"
	"github.com/microlearn/microlearn-server/internal/store"
)

// LearningService is what the handlers need from core.LearningService.
type LearningService interface {
	Register(ctx context.Context, name, username, password string) (store.User, error)
	Login(ctx context.Context, username, password string) (store.User, error)
	Chat(ctx context.Context, userID, topic, mode string) (store.ChatMessage, error)
	History(ctx context.Context, userID string) []store.ChatMessage
	Progress(ctx context.Context, userID string) (store.User, error)
	SetProgress(ctx context.Context, userID string, masteredCards int) (store.User, error)
	ReviewFlashcards(ctx context.Context, userID string, cardsReviewed int) (store.User, error)
}

type APIHandler struct {
	service LearningService
	log     *logger.Logger
}

func NewAPIHandler(svc LearningService, log *logger.Logger) *APIHandler {
	return &APIHandler{service: svc, log: log.With("component", "api")}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type ChatRequest struct {
	UserID string `json:"userId"`
	Topic  string `json:"topic"`
	Mode   string `json:"mode"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "userId and topic are required")
		return
	}

	msg, err := h.service.Chat(r.Context(), req.UserID, req.Topic, req.Mode)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.History(r.Context(), userID))
}

func (h *APIHandler) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.service.Progress(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type ProgressRequest struct {
	UserID        string `json:"userId"`
	MasteredCards int    `json:"masteredCards"`
}

func (h *APIHandler) SetProgressHandler(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	user, err := h.service.SetProgress(r.Context(), req.UserID, req.MasteredCards)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type FlashcardReviewRequest struct {
	UserID        string `json:"userId"`
	CardsReviewed int    `json:"cardsReviewed"`
}

func (h *APIHandler) FlashcardReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req FlashcardReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if _, err := h.service.ReviewFlashcards(r.Context(), req.UserID, req.CardsReviewed); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, store.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		h.log.Error("Unhandled service error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
