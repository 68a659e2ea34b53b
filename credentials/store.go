package credentials

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/users"
	"github.com/rs/zerolog/log"
)

// Store gives typed access to the accessToken, refreshToken and user keys of a Repo.
type Store struct {
	repo Repo
}

func NewStore(repo Repo) *Store {
	return &Store{repo: repo}
}

// AccessToken returns the stored access token, or "" when none is stored
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" when none is stored
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefreshToken)
}

// Pair returns whatever is stored. Check Present before trusting it.
func (s *Store) Pair(ctx context.Context) (Pair, error) {
	access, err := s.AccessToken(ctx)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// SavePair persists a freshly issued pair from login, registration or an OAuth callback.
func (s *Store) SavePair(ctx context.Context, p Pair) error {
	if !p.Present() {
		return errors.Wrapf(errors.ErrInvalidToken, "save credentials: access and refresh token are both required")
	}
	if err := s.repo.Set(ctx, KeyAccessToken, p.AccessToken); err != nil {
		return errors.Wrapf(err, "save access token")
	}
	if err := s.repo.Set(ctx, KeyRefreshToken, p.RefreshToken); err != nil {
		return errors.Wrapf(err, "save refresh token")
	}
	return nil
}

// SaveRefreshed stores the result of a refresh. The refresh token is only
// overwritten when the server rotated it.
func (s *Store) SaveRefreshed(ctx context.Context, p Pair) error {
	if p.AccessToken == "" {
		return errors.Wrapf(errors.ErrInvalidToken, "save refreshed credentials: empty access token")
	}
	if err := s.repo.Set(ctx, KeyAccessToken, p.AccessToken); err != nil {
		return errors.Wrapf(err, "save access token")
	}
	if p.RefreshToken != "" {
		if err := s.repo.Set(ctx, KeyRefreshToken, p.RefreshToken); err != nil {
			return errors.Wrapf(err, "save refresh token")
		}
	}
	return nil
}

// CachedUser returns the cached identity record, or nil when nothing usable is cached.
// A corrupt entry is dropped.
func (s *Store) CachedUser(ctx context.Context) (*users.User, error) {
	raw, err := s.get(ctx, KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}

	var u users.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Warn().Err(err).Msg("dropping unreadable cached user")
		_ = s.repo.Delete(ctx, KeyUser)
		return nil, nil
	}
	return &u, nil
}

func (s *Store) CacheUser(ctx context.Context, u *users.User) error {
	if u == nil {
		return s.repo.Delete(ctx, KeyUser)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return errors.Wrapf(err, "encode cached user")
	}
	return errors.Wrapf(s.repo.Set(ctx, KeyUser, string(data)), "save cached user")
}

// Clear removes the pair and the cached user
func (s *Store) Clear(ctx context.Context) error {
	return errors.Wrapf(s.repo.Delete(ctx, AllKeys...), "clear credentials")
}

func (s *Store) get(ctx context.Context, key Key) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if errors.Is(err, errors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "read %s", key)
	}
	return v, nil
}
