package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/event-hub/internal/metrics"
	"github.com/Shivanand-hulikatti/event-hub/internal/model"
	"github.com/Shivanand-hulikatti/event-hub/internal/repository"
	"github.com/Shivanand-hulikatti/event-hub/internal/sanitize"
)

// ListEvents returns the catalog in storage order.
func (s *EventService) ListEvents(ctx context.Context) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.List(ctx)
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, id int) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", id, err)
	}
	return event, nil
}

// CreateEvent validates the request and appends a new event to the catalog.
// All fields are required; the id is one more than the highest existing id.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	// fields are stored as given; blanks only count as missing
	trimmed := req
	for _, f := range []*string{&trimmed.Title, &trimmed.Date, &trimmed.Time, &trimmed.Venue,
		&trimmed.Description, &trimmed.Category, &trimmed.Host} {
		*f = strings.TrimSpace(*f)
	}
	if err := s.validate.Struct(trimmed); err != nil {
		return nil, toValidationError(err, "all event fields are required")
	}
	s.reportMarkup(ctx, "create", model.EventPatch{
		Title: &req.Title, Date: &req.Date, Time: &req.Time, Venue: &req.Venue,
		Description: &req.Description, Category: &req.Category, Host: &req.Host,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.events.Create(ctx, model.Event{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Venue:       req.Venue,
		Description: req.Description,
		Category:    req.Category,
		Host:        req.Host,
	})
	s.bestEffort(ctx, "create event", err)

	metrics.EventMutations.WithLabelValues("create").Inc()
	s.log(ctx).Info().Int("event_id", event.ID).Str("title", event.Title).Msg("event created")
	return event, nil
}

// UpdateEvent merges patch over the stored event and notifies every
// participant of the event. Fields absent from the patch are kept.
func (s *EventService) UpdateEvent(ctx context.Context, id int, patch model.EventPatch) (*model.Event, error) {
	s.reportMarkup(ctx, "update", patch)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", id, err)
	}

	updated := patch.Apply(*existing)
	updated.ID = existing.ID
	if err := s.events.Replace(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("event %d: %w", id, err)
		}
		s.bestEffort(ctx, "update event", err)
	}

	affected := s.participants.ListByEvent(ctx, id)
	s.notify(ctx, affected, fmt.Sprintf("The event \"%s\" has been updated.", updated.Title))

	metrics.EventMutations.WithLabelValues("update").Inc()
	s.log(ctx).Info().Int("event_id", id).Int("notified", len(affected)).Msg("event updated")
	return &updated, nil
}

// DeleteEvent removes an event, notifies its participants and then removes
// their memberships. The participant set is captured before the ledger is
// touched so every member is notified exactly once.
func (s *EventService) DeleteEvent(ctx context.Context, id int) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.events.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("event %d: %w", id, err)
	}
	s.bestEffort(ctx, "delete event", err)

	affected := s.participants.ListByEvent(ctx, id)
	s.notify(ctx, affected, fmt.Sprintf("Event deleted: %s", removed.Title))

	n, err := s.participants.DeleteByEvent(ctx, id)
	s.bestEffort(ctx, "delete participants", err)

	metrics.EventMutations.WithLabelValues("delete").Inc()
	s.log(ctx).Info().Int("event_id", id).Int("participants_removed", n).Msg("event deleted")
	return removed, nil
}

// reportMarkup logs event fields that look like HTML. Values are never
// rewritten.
func (s *EventService) reportMarkup(ctx context.Context, op string, p model.EventPatch) {
	fields := sanitize.MarkupFields(map[string]*string{
		"title":       p.Title,
		"date":        p.Date,
		"time":        p.Time,
		"venue":       p.Venue,
		"description": p.Description,
		"category":    p.Category,
		"host":        p.Host,
	}, "title", "date", "time", "venue", "description", "category", "host")
	if len(fields) == 0 {
		return
	}
	metrics.MarkupFields.WithLabelValues(op).Add(float64(len(fields)))
	s.log(ctx).Warn().Str("op", op).Strs("fields", fields).Msg("event fields contain markup, stored verbatim")
}

func toValidationError(err error, msg string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields, Message: msg}
}
