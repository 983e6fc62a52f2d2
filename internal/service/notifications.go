package service

import (
	"context"

	"github.com/Shivanand-hulikatti/event-hub/internal/metrics"
	"github.com/Shivanand-hulikatti/event-hub/internal/model"
)

// ListNotifications returns the notification log in insertion order.
func (s *EventService) ListNotifications(ctx context.Context) []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications.List(ctx)
}

// notify appends one notification per recipient, all sharing one timestamp.
// Callers must hold the write lock.
func (s *EventService) notify(ctx context.Context, recipients []model.Participant, message string) {
	if len(recipients) == 0 {
		return
	}
	ts := s.timestamp()
	batch := make([]model.Notification, 0, len(recipients))
	for _, p := range recipients {
		batch = append(batch, model.Notification{
			Message:   message,
			Recipient: p.Name,
			Timestamp: ts,
		})
	}
	s.bestEffort(ctx, "append notifications", s.notifications.Append(ctx, batch...))
	metrics.NotificationsAppended.Add(float64(len(batch)))
}
