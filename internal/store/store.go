// Package store persists named record collections.
//
// A collection is a flat sequence of records serialized as one indented JSON
// array and rewritten wholesale on every save. Backends only move bytes;
// Collection adds typing, per-collection locking and the degrade-to-empty
// read policy.
package store

import (
	"context"
	"errors"
)

// Collection names used by the event hub.
const (
	Users         = "users"
	Events        = "events"
	Participants  = "participants"
	Notifications = "notifications"
)

// ErrMissing is returned by a Backend when a collection was never written.
var ErrMissing = errors.New("collection does not exist")

// Backend reads and writes the serialized form of a collection.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Name() string
}
