package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-hub/internal/auth"
	"github.com/Shivanand-hulikatti/event-hub/internal/config"
	"github.com/Shivanand-hulikatti/event-hub/internal/model"
	"github.com/Shivanand-hulikatti/event-hub/internal/repository"
	"github.com/Shivanand-hulikatti/event-hub/internal/service"
	"github.com/Shivanand-hulikatti/event-hub/internal/store"
)

type testServer struct {
	router  http.Handler
	backend store.Backend
	tokens  *auth.Issuer
}

func newTestServer(t *testing.T, rl config.RateLimitConfig) *testServer {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	logger := zerolog.Nop()
	tokens := auth.NewIssuer("handler-test-secret", time.Hour)
	svc := service.NewEventService(service.Deps{
		Events:        repository.NewEventRepository(backend, logger),
		Participants:  repository.NewParticipantRepository(backend, logger),
		Notifications: repository.NewNotificationRepository(backend, logger),
		Users:         repository.NewUserRepository(backend, logger),
		Tokens:        tokens,
	}, logger)

	router := NewRouter(NewEventHandler(svc), RouterConfig{RateLimit: rl, Tokens: tokens}, logger)
	return &testServer{router: router, backend: backend, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var sampleEvent = map[string]string{
	"title":       "Go Meetup",
	"date":        "2025-05-01",
	"time":        "18:00",
	"venue":       "Main Hall",
	"description": "Talks and pizza",
	"category":    "tech",
	"host":        "organizer",
}

func (s *testServer) createEvent(t *testing.T) model.Event {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/events", sampleEvent)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Success bool        `json:"success"`
		Event   model.Event `json:"event"`
	}](t, rec)
	require.True(t, body.Success)
	return body.Event
}

func noLimit() config.RateLimitConfig { return config.RateLimitConfig{} }

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, noLimit())

	rec := s.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, noLimit())

	rec := s.do(t, http.MethodGet, "/health", nil, "X-Request-ID", "abc-123")

	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, noLimit())

	rec := s.do(t, http.MethodOptions, "/events", nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventLifecycle(t *testing.T) {
	s := newTestServer(t, noLimit())

	rec := s.do(t, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	created := s.createEvent(t)
	require.Equal(t, 1, created.ID)

	rec = s.do(t, http.MethodGet, "/events/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, created, decode[model.Event](t, rec))

	// a client echoing the id back is tolerated
	rec = s.do(t, http.MethodPut, "/events/1", map[string]any{"id": 1, "venue": "Room 4"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[struct {
		Event model.Event `json:"event"`
	}](t, rec).Event
	require.Equal(t, "Room 4", updated.Venue)
	require.Equal(t, created.Title, updated.Title)

	rec = s.do(t, http.MethodDelete, "/events/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decode[struct {
		Message      string      `json:"message"`
		DeletedEvent model.Event `json:"deletedEvent"`
	}](t, rec)
	require.Equal(t, "Event deleted successfully", deleted.Message)
	require.Equal(t, updated, deleted.DeletedEvent)

	rec = s.do(t, http.MethodGet, "/events/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventErrors(t *testing.T) {
	s := newTestServer(t, noLimit())

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"get unknown", http.MethodGet, "/events/42", nil, http.StatusNotFound},
		{"get non-numeric id", http.MethodGet, "/events/abc", nil, http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/events/42", map[string]string{"title": "x"}, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/events/42", nil, http.StatusNotFound},
		{"create missing fields", http.MethodPost, "/events", map[string]string{"title": "only"}, http.StatusBadRequest},
		{"create malformed body", http.MethodPost, "/events", "{not json", http.StatusBadRequest},
		{"create unknown field", http.MethodPost, "/events", map[string]any{"title": "x", "price": 10}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode[model.ErrorResponse](t, rec)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestJoinEvent(t *testing.T) {
	s := newTestServer(t, noLimit())
	e := s.createEvent(t)

	rec := s.do(t, http.MethodPost, "/join-event", map[string]any{"username": "alice", "eventId": e.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// numeric strings are accepted
	rec = s.do(t, http.MethodPost, "/join-event", `{"username":"bob","eventId":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/join-event", map[string]any{"username": "ALICE", "eventId": e.ID})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "User already joined this event", decode[model.ErrorResponse](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/participants/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roster := decode[model.Roster](t, rec)
	require.Equal(t, 2, roster.Count)
	require.Equal(t, []model.Participant{{Name: "alice", EventID: 1}, {Name: "bob", EventID: 1}}, roster.Participants)
}

func TestJoinEventErrors(t *testing.T) {
	s := newTestServer(t, noLimit())
	s.createEvent(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing username", `{"eventId":1}`, http.StatusBadRequest},
		{"missing event", `{"username":"alice"}`, http.StatusBadRequest},
		{"fractional event id", `{"username":"alice","eventId":1.5}`, http.StatusBadRequest},
		{"non-numeric event id", `{"username":"alice","eventId":"abc"}`, http.StatusBadRequest},
		{"unknown event", `{"username":"alice","eventId":9}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/join-event", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestJoinEventUsesBearerUsername(t *testing.T) {
	s := newTestServer(t, noLimit())
	e := s.createEvent(t)
	token, err := s.tokens.MakeToken("carol")
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/join-event", map[string]any{"eventId": e.ID}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/participants/user/carol", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[struct {
		Success bool          `json:"success"`
		Events  []model.Event `json:"events"`
	}](t, rec)
	require.True(t, events.Success)
	require.Equal(t, []model.Event{e}, events.Events)
}

func TestInvalidBearerTokenIsIgnored(t *testing.T) {
	s := newTestServer(t, noLimit())
	e := s.createEvent(t)
	expired := auth.NewIssuer("handler-test-secret", -time.Minute)
	stale, err := expired.MakeToken("carol")
	require.NoError(t, err)

	for _, token := range []string{"not-a-token", stale} {
		rec := s.do(t, http.MethodGet, "/events", nil, "Authorization", "Bearer "+token)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(t, http.MethodGet, "/stats", nil, "Authorization", "Bearer "+token)
		require.Equal(t, http.StatusOK, rec.Code)

		// no username is taken from a token that does not verify
		rec = s.do(t, http.MethodPost, "/join-event", map[string]any{"eventId": e.ID}, "Authorization", "Bearer "+token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestListUserEventsUnknownUser(t *testing.T) {
	s := newTestServer(t, noLimit())
	s.createEvent(t)

	rec := s.do(t, http.MethodGet, "/participants/user/nobody", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"events":[]}`, rec.Body.String())
}

func TestParticipantsOfUnknownEventIsEmpty(t *testing.T) {
	s := newTestServer(t, noLimit())

	rec := s.do(t, http.MethodGet, "/participants/77", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"count":0,"participants":[]}`, rec.Body.String())
}

func TestDeleteNotifiesParticipants(t *testing.T) {
	s := newTestServer(t, noLimit())
	e := s.createEvent(t)
	for _, name := range []string{"alice", "bob"} {
		rec := s.do(t, http.MethodPost, "/join-event", map[string]any{"username": name, "eventId": e.ID})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodDelete, "/events/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]model.Notification](t, rec)
	require.Len(t, notes, 2)
	for i, name := range []string{"alice", "bob"} {
		require.Equal(t, name, notes[i].Recipient)
		require.Equal(t, "Event deleted: Go Meetup", notes[i].Message)
		_, err := time.Parse("2006-01-02T15:04:05.000Z", notes[i].Timestamp)
		require.NoError(t, err)
	}

	rec = s.do(t, http.MethodGet, "/participants/1", nil)
	require.JSONEq(t, `{"count":0,"participants":[]}`, rec.Body.String())
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t, noLimit())
	e := s.createEvent(t)
	rec := s.do(t, http.MethodPost, "/join-event", map[string]any{"username": "alice", "eventId": e.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"mostPopularEvents": [{"id": 1, "title": "Go Meetup", "participantCount": 1}],
		"categoryCounts": {"tech": 1}
	}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, noLimit())
	users := store.NewCollection[model.User](s.backend, store.Users, zerolog.Nop())
	require.NoError(t, users.Save(context.Background(), []model.User{
		{Username: "organizer", Password: "secret", Name: "Olga"},
	}))

	rec := s.do(t, http.MethodPost, "/login", map[string]string{"username": "Organizer", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Success bool              `json:"success"`
		User    model.UserProfile `json:"user"`
		Token   string            `json:"token"`
	}](t, rec)
	require.True(t, body.Success)
	require.Equal(t, "organizer", body.User.Username)
	require.NotContains(t, rec.Body.String(), "secret")

	claims, err := s.tokens.ParseToken(body.Token)
	require.NoError(t, err)
	require.Equal(t, "organizer", claims.Username)

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"username": "organizer", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"username": "organizer"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitOnJoin(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{PerMinute: 1, Burst: 2})
	s.createEvent(t)

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/join-event", `{"eventId":1}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/join-event", `{"eventId":1}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	// unthrottled routes are unaffected
	rec = s.do(t, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, noLimit())
	s.do(t, http.MethodGet, "/events", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "eventhub_http_requests_total")
	require.Contains(t, rec.Body.String(), "eventhub_store_saves_total")
}
