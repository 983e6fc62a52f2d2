package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-hub/internal/metrics"
	"github.com/Shivanand-hulikatti/event-hub/internal/model"
	"github.com/Shivanand-hulikatti/event-hub/internal/repository"
)

// Join records username as a participant of eventID. Names are matched
// case-insensitively, so "Alice" and "alice " are the same participant.
func (s *EventService) Join(ctx context.Context, username string, eventID int) error {
	username = strings.TrimSpace(username)

	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if eventID <= 0 {
		missing = append(missing, "eventId")
	}
	if len(missing) > 0 {
		metrics.Joins.WithLabelValues("invalid").Inc()
		return &ValidationError{Fields: missing, Message: "username and eventId are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		metrics.Joins.WithLabelValues("not_found").Inc()
		return fmt.Errorf("event %d: %w", eventID, err)
	}

	err := s.participants.Add(ctx, model.Participant{Name: username, EventID: eventID})
	if errors.Is(err, repository.ErrAlreadyJoined) {
		metrics.Joins.WithLabelValues("conflict").Inc()
		return err
	}
	s.bestEffort(ctx, "join event", err)

	metrics.Joins.WithLabelValues("joined").Inc()
	s.log(ctx).Info().Str("username", username).Int("event_id", eventID).Msg("user joined event")
	return nil
}

// ListParticipants returns the roster of one event in join order. An
// unknown event yields an empty roster.
func (s *EventService) ListParticipants(ctx context.Context, eventID int) model.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.participants.ListByEvent(ctx, eventID)
	return model.Roster{Count: len(members), Participants: members}
}

// ListUserEvents returns the events username joined, in catalog order.
func (s *EventService) ListUserEvents(ctx context.Context, username string) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	joined := s.participants.ListEventIDsByUser(ctx, username)
	out := []model.Event{}
	if len(joined) == 0 {
		return out
	}
	for _, e := range s.events.List(ctx) {
		if _, ok := joined[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}
