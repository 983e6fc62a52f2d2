package service

import (
	"context"
	"sort"

	"github.com/Shivanand-hulikatti/event-hub/internal/model"
)

// topEvents is the length of the popularity ranking.
const topEvents = 5

// ComputeStats derives the popularity ranking and per-category participant
// totals from the current catalog and ledger. Nothing is cached.
func (s *EventService) ComputeStats(ctx context.Context) model.Stats {
	s.mu.RLock()
	events := s.events.List(ctx)
	ledger := s.participants.List(ctx)
	s.mu.RUnlock()

	return BuildStats(events, ledger)
}

// BuildStats ranks events by participant count, descending, keeping catalog
// order among ties, and sums participant counts per category.
func BuildStats(events []model.Event, ledger []model.Participant) model.Stats {
	counts := make(map[int]int, len(events))
	for _, p := range ledger {
		counts[p.EventID]++
	}

	ranking := make([]model.EventPopularity, 0, len(events))
	categories := make(map[string]int)
	for _, e := range events {
		n := counts[e.ID]
		ranking = append(ranking, model.EventPopularity{ID: e.ID, Title: e.Title, ParticipantCount: n})
		categories[e.Category] += n
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].ParticipantCount > ranking[j].ParticipantCount
	})
	if len(ranking) > topEvents {
		ranking = ranking[:topEvents]
	}

	return model.Stats{MostPopularEvents: ranking, CategoryCounts: categories}
}
