package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-hub/internal/auth"
	"github.com/Shivanand-hulikatti/event-hub/internal/model"
	"github.com/Shivanand-hulikatti/event-hub/internal/repository"
)

// LoginResult is the outcome of a successful login. Token is empty when
// token signing is not configured.
type LoginResult struct {
	User  model.UserProfile
	Token string
}

// Login checks username (case-insensitive) and password against the user
// collection.
func (s *EventService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &ValidationError{Message: "username and password are required"}
	}

	s.mu.RLock()
	user, err := s.users.GetByUsername(ctx, username)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		s.log(ctx).Warn().Str("username", username).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.MakeToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{User: user.Profile(), Token: token}, nil
}
