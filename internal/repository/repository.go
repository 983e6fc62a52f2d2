// Package repository maps the event hub's collections onto domain-level
// queries. Every call reloads the collection from the store; nothing is
// cached between calls.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-hub/internal/model"
	"github.com/Shivanand-hulikatti/event-hub/internal/store"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyJoined is returned when the same user joins an event twice.
var ErrAlreadyJoined = errors.New("user already joined this event")

// NormalizeName is the identity used to match participant names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ─── Events ──────────────────────────────────────────────────────────────────

// EventRepository handles persistence for the event catalog.
type EventRepository struct {
	events *store.Collection[model.Event]
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(backend store.Backend, logger zerolog.Logger) *EventRepository {
	return &EventRepository{events: store.NewCollection[model.Event](backend, store.Events, logger)}
}

// List returns all events in catalog (insertion) order.
func (r *EventRepository) List(ctx context.Context) []model.Event {
	return r.events.Load(ctx)
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id int) (*model.Event, error) {
	for _, e := range r.events.Load(ctx) {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns the next id (highest existing id + 1, or 1 when the catalog
// is empty), appends the event and persists the catalog.
func (r *EventRepository) Create(ctx context.Context, e model.Event) (*model.Event, error) {
	events := r.events.Load(ctx)
	e.ID = NextID(events)
	events = append(events, e)
	return &e, r.events.Save(ctx, events)
}

// Replace overwrites the event with the same id and persists the catalog.
func (r *EventRepository) Replace(ctx context.Context, e model.Event) error {
	events := r.events.Load(ctx)
	for i := range events {
		if events[i].ID == e.ID {
			events[i] = e
			return r.events.Save(ctx, events)
		}
	}
	return ErrNotFound
}

// Delete removes the event with id and returns it.
func (r *EventRepository) Delete(ctx context.Context, id int) (*model.Event, error) {
	events := r.events.Load(ctx)
	for i := range events {
		if events[i].ID == id {
			removed := events[i]
			events = append(events[:i], events[i+1:]...)
			return &removed, r.events.Save(ctx, events)
		}
	}
	return nil, ErrNotFound
}

// NextID returns one more than the highest id in events, or 1 when empty.
func NextID(events []model.Event) int {
	next := 1
	for _, e := range events {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	return next
}

// ─── Participants ────────────────────────────────────────────────────────────

// ParticipantRepository handles persistence for the participation ledger.
type ParticipantRepository struct {
	participants *store.Collection[model.Participant]
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(backend store.Backend, logger zerolog.Logger) *ParticipantRepository {
	return &ParticipantRepository{participants: store.NewCollection[model.Participant](backend, store.Participants, logger)}
}

// List returns the whole ledger in storage order.
func (r *ParticipantRepository) List(ctx context.Context) []model.Participant {
	return r.participants.Load(ctx)
}

// Add records a membership, rejecting a second membership of the same
// normalized name in the same event with ErrAlreadyJoined.
func (r *ParticipantRepository) Add(ctx context.Context, p model.Participant) error {
	ledger := r.participants.Load(ctx)
	key := NormalizeName(p.Name)
	for _, existing := range ledger {
		if existing.EventID == p.EventID && NormalizeName(existing.Name) == key {
			return ErrAlreadyJoined
		}
	}
	return r.participants.Save(ctx, append(ledger, p))
}

// ListByEvent returns the memberships of one event in storage order.
func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID int) []model.Participant {
	return FilterByEvent(r.participants.Load(ctx), eventID)
}

// ListEventIDsByUser returns the set of event ids the named user joined.
func (r *ParticipantRepository) ListEventIDsByUser(ctx context.Context, name string) map[int]struct{} {
	key := NormalizeName(name)
	ids := make(map[int]struct{})
	for _, p := range r.participants.Load(ctx) {
		if NormalizeName(p.Name) == key {
			ids[p.EventID] = struct{}{}
		}
	}
	return ids
}

// DeleteByEvent removes every membership of eventID and returns how many
// were removed. The ledger is only rewritten when something changed.
func (r *ParticipantRepository) DeleteByEvent(ctx context.Context, eventID int) (int, error) {
	ledger := r.participants.Load(ctx)
	kept := make([]model.Participant, 0, len(ledger))
	for _, p := range ledger {
		if p.EventID != eventID {
			kept = append(kept, p)
		}
	}
	removed := len(ledger) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, r.participants.Save(ctx, kept)
}

// FilterByEvent returns the members of eventID, preserving order.
func FilterByEvent(ledger []model.Participant, eventID int) []model.Participant {
	out := []model.Participant{}
	for _, p := range ledger {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out
}

// ─── Notifications ───────────────────────────────────────────────────────────

// NotificationRepository handles persistence for the notification log.
type NotificationRepository struct {
	notifications *store.Collection[model.Notification]
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(backend store.Backend, logger zerolog.Logger) *NotificationRepository {
	return &NotificationRepository{notifications: store.NewCollection[model.Notification](backend, store.Notifications, logger)}
}

// Append adds notifications to the end of the log. Nothing is written when
// there is nothing to append.
func (r *NotificationRepository) Append(ctx context.Context, n ...model.Notification) error {
	if len(n) == 0 {
		return nil
	}
	log := r.notifications.Load(ctx)
	return r.notifications.Save(ctx, append(log, n...))
}

// List returns every notification in insertion order.
func (r *NotificationRepository) List(ctx context.Context) []model.Notification {
	return r.notifications.Load(ctx)
}

// ─── Users ───────────────────────────────────────────────────────────────────

// UserRepository gives read access to the user accounts.
type UserRepository struct {
	users *store.Collection[model.User]
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(backend store.Backend, logger zerolog.Logger) *UserRepository {
	return &UserRepository{users: store.NewCollection[model.User](backend, store.Users, logger)}
}

// GetByUsername matches usernames case-insensitively.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users.Load(ctx) {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}
