package shop

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/thev1ndu/xp/errors"
)

const (
	// tokenBytes gives 128 bits of entropy
	tokenBytes = 16
	// maxStoreAttempts bounds compare-and-swap retries under contention
	maxStoreAttempts = 5
)

// Register checks that username is a known player and issues a new access
// token for it. A previous token for the same username stops being valid.
func (s *Service) Register(ctx context.Context, username string) (string, error) {
	if !ValidUsername(username) {
		return "", errors.New(errors.ErrInvalidRequest, "Invalid username")
	}
	logger := s.requestLogger(ctx, username)

	response, err := s.executor.Execute(ctx, s.commands.Exists(username))
	if err != nil {
		logger.Error().Err(err).Msg("Player lookup failed")
		return "", errors.Wrap(err, errors.ErrRemoteUnavailable, "Game server unavailable")
	}
	if s.commands.PlayerLookup.Classify(response) == OutcomeRejected {
		logger.Info().Str("response", response).Msg("Registration rejected, player not found")
		return "", errors.New(errors.ErrUnknownPlayer, "Player not found in Minecraft server!")
	}

	token, err := newToken()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternalServerError, "Failed to generate token")
	}

	for attempt := 0; attempt < maxStoreAttempts; attempt++ {
		current, _, err := s.store.Get(ctx, username)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternalServerError, "Failed to read token store")
		}
		swapped, err := s.store.CompareAndSwap(ctx, username, current, token)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternalServerError, "Failed to store token")
		}
		if swapped {
			logger.Info().Bool("replaced", current != "").Msg("Player registered")
			return token, nil
		}
	}

	return "", errors.NewWithDebug(errors.ErrInternalServerError, "Failed to store token",
		fmt.Sprintf("token for %s changed %d times during registration", username, maxStoreAttempts))
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
