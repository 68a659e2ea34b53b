package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/fintrack-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Settings is the part of the fake API configuration refresh tokens need
type Settings interface {
	GetRefreshTokenTTL() time.Duration
	GetRefreshTokenLength() int
}

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo   Repo
	ttl    time.Duration
	length int
	lock   sync.Mutex // serialises Rotate so a token is only ever exchanged once
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg Settings) *Manager {
	return &Manager{
		repo:   repo,
		ttl:    cfg.GetRefreshTokenTTL(),
		length: cfg.GetRefreshTokenLength(),
	}
}

// Create generates a new refresh token for userID and stores it
func (m *Manager) Create(userID string) (string, error) {
	tokenBytes := make([]byte, m.length)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Verify returns the stored metadata for a live token
func (m *Manager) Verify(token string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return nil, errors.ErrTokenExpired
	}
	return rt, nil
}

// Rotate consumes token and issues its replacement. A token can be rotated
// once; presenting it again fails with ErrInvalidRefreshToken.
func (m *Manager) Rotate(token string) (userID, next string, err error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rt, err := m.Verify(token)
	if err != nil {
		return "", "", err
	}
	if err := m.repo.Delete(token); err != nil {
		return "", "", errors.ErrInvalidRefreshToken
	}
	next, err = m.Create(rt.UserID)
	if err != nil {
		return "", "", err
	}
	return rt.UserID, next, nil
}

// Delete removes a refresh token from storage
func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

// DeleteForUser signs userID out everywhere
func (m *Manager) DeleteForUser(userID string) error {
	return m.repo.DeleteByUserID(userID)
}

// IsExpired checks if a refresh token has outlived the configured lifetime
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.ttl
}
