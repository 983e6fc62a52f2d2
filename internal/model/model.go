// Package model defines the core domain types for the event hub.
package model

import "encoding/json"

// Event represents a hosted activity created by an organizer.
type Event struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Host        string `json:"host"`
}

// Participant records a user's membership in one event.
type Participant struct {
	Name    string `json:"name"`
	EventID int    `json:"eventId"`
}

// Notification is an append-only message generated by a catalog mutation.
type Notification struct {
	Message   string `json:"message"`
	Recipient string `json:"recipient"`
	Timestamp string `json:"timestamp"`
}

// User is an account allowed to log in. Users are provisioned out of band.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Profile returns the user without credentials.
func (u User) Profile() UserProfile {
	return UserProfile{Username: u.Username, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserProfile is the public view of a User.
type UserProfile struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Venue       string `json:"venue" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Host        string `json:"host" validate:"required"`
}

// EventPatch carries the fields of a partial update. Nil fields are kept.
type EventPatch struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Venue       *string `json:"venue"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Host        *string `json:"host"`
}

// Apply merges the patch over e and returns the result.
func (p EventPatch) Apply(e Event) Event {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Title, p.Title)
	set(&e.Date, p.Date)
	set(&e.Time, p.Time)
	set(&e.Venue, p.Venue)
	set(&e.Description, p.Description)
	set(&e.Category, p.Category)
	set(&e.Host, p.Host)
	return e
}

// JoinRequest is the payload for joining an event. EventID accepts either a
// JSON number or a numeric string.
type JoinRequest struct {
	Username string      `json:"username"`
	EventID  json.Number `json:"eventId"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Roster is the participant list of one event.
type Roster struct {
	Count        int           `json:"count"`
	Participants []Participant `json:"participants"`
}

// EventPopularity is one entry of the popularity ranking.
type EventPopularity struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	ParticipantCount int    `json:"participantCount"`
}

// Stats is the aggregate view over the catalog and ledger.
type Stats struct {
	MostPopularEvents []EventPopularity `json:"mostPopularEvents"`
	CategoryCounts    map[string]int    `json:"categoryCounts"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
