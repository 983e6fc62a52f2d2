package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-hub/internal/metrics"
)

// Collection is a typed view over one named collection of a Backend.
type Collection[T any] struct {
	mu      sync.Mutex
	name    string
	backend Backend
	logger  zerolog.Logger
}

// NewCollection binds name on backend to the record type T.
func NewCollection[T any](backend Backend, name string, logger zerolog.Logger) *Collection[T] {
	return &Collection[T]{
		name:    name,
		backend: backend,
		logger:  logger.With().Str("component", "store").Str("collection", name).Logger(),
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Load returns every record in storage order. A missing collection is empty;
// an unreadable or malformed one is logged and treated as empty.
func (c *Collection[T]) Load(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.backend.Read(ctx, c.name)
	if errors.Is(err, ErrMissing) {
		return []T{}
	}
	if err != nil {
		metrics.StoreErrors.WithLabelValues(c.name, "load").Inc()
		c.logger.Error().Err(err).Msg("read collection")
		return []T{}
	}

	records := []T{}
	if err := json.Unmarshal(data, &records); err != nil {
		metrics.StoreErrors.WithLabelValues(c.name, "load").Inc()
		c.logger.Error().Err(err).Msg("decode collection")
		return []T{}
	}
	if records == nil {
		records = []T{}
	}
	return records
}

// Save overwrites the collection with records.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		metrics.StoreErrors.WithLabelValues(c.name, "save").Inc()
		return fmt.Errorf("encode %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.backend.Write(ctx, c.name, data); err != nil {
		metrics.StoreErrors.WithLabelValues(c.name, "save").Inc()
		c.logger.Error().Err(err).Msg("save collection")
		return err
	}
	metrics.StoreSaves.WithLabelValues(c.name).Inc()
	c.logger.Debug().Int("records", len(records)).Msg("collection saved")
	return nil
}
