// Package service implements the event hub's business rules: the event
// catalog, the participation ledger, the notification log and the
// statistics engine, plus login.
//
// Every operation reads the current state from the repositories; mutating
// operations are serialized behind a single writer lock so two overlapping
// requests cannot overwrite each other's changes.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-hub/internal/auth"
	"github.com/Shivanand-hulikatti/event-hub/internal/repository"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ErrInvalidCredentials is returned when a login does not match a user.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// EventService orchestrates event-related business operations.
type EventService struct {
	mu sync.RWMutex

	events        *repository.EventRepository
	participants  *repository.ParticipantRepository
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	tokens        *auth.Issuer

	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// Deps groups the collaborators of an EventService.
type Deps struct {
	Events        *repository.EventRepository
	Participants  *repository.ParticipantRepository
	Notifications *repository.NotificationRepository
	Users         *repository.UserRepository
	Tokens        *auth.Issuer
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(deps Deps, logger zerolog.Logger) *EventService {
	v := validator.New()
	// report json field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &EventService{
		events:        deps.Events,
		participants:  deps.Participants,
		notifications: deps.Notifications,
		users:         deps.Users,
		tokens:        deps.Tokens,
		validate:      v,
		logger:        logger.With().Str("component", "events").Logger(),
		now:           time.Now,
	}
}

// log returns the request-scoped logger when the context carries one.
func (s *EventService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

// bestEffort logs a storage write failure. The core favours availability:
// the operation still reports success to its caller.
func (s *EventService) bestEffort(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	s.log(ctx).Error().Err(err).Str("op", op).Msg("persist failed, continuing")
}

func (s *EventService) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}
