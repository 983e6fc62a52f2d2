// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-hub/internal/model"
	"github.com/Shivanand-hulikatti/event-hub/internal/repository"
	"github.com/Shivanand-hulikatti/event-hub/internal/service"
)

// EventHandler holds all HTTP handlers for the event hub API.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Success: false, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors onto status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, repository.ErrAlreadyJoined):
		writeError(w, http.StatusConflict, "User already joined this event")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func eventIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "eventId"))
	return id, err == nil
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Login handles POST /login
func (h *EventHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	body := map[string]any{
		"success": true,
		"message": "Login successful",
		"user":    res.User,
	}
	if res.Token != "" {
		body["token"] = res.Token
	}
	writeJSON(w, http.StatusOK, body)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListEvents(r.Context()))
}

// GetEvent handles GET /events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Event created successfully",
		"event":   event,
	})
}

// UpdateEvent handles PUT /events/{eventId}
// Only the fields present in the body are changed.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	// clients commonly echo the whole event back, id included
	var patch model.EventPatch
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Event updated successfully",
		"event":   event,
	})
}

// DeleteEvent handles DELETE /events/{eventId}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.svc.DeleteEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Event deleted successfully",
		"deletedEvent": event,
	})
}

// JoinEvent handles POST /join-event
// The username defaults to the authenticated user when the body omits it.
func (h *EventHandler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	var req model.JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = UsernameFromContext(r.Context())
	}

	var eventID int
	if req.EventID != "" {
		id, err := strconv.Atoi(req.EventID.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, "eventId must be an integer")
			return
		}
		eventID = id
	}

	if err := h.svc.Join(r.Context(), username, eventID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User successfully joined the event",
	})
}

// ListParticipants handles GET /participants/{eventId}
func (h *EventHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListParticipants(r.Context(), id))
}

// ListUserEvents handles GET /participants/user/{username}
func (h *EventHandler) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if unescaped, err := url.PathUnescape(username); err == nil {
		username = unescaped
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"events":  h.svc.ListUserEvents(r.Context(), username),
	})
}

// Stats handles GET /stats
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ComputeStats(r.Context()))
}

// ListNotifications handles GET /notifications
func (h *EventHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListNotifications(r.Context()))
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
