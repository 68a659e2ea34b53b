package filerepo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/fintrack-client/credentials"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const fileName = "credentials.json"

var _ credentials.Repo = (*FileRepo)(nil)

type fileContents struct {
	Version int                        `json:"version"`
	Values  map[credentials.Key]string `json:"values"`
}

// FileRepo stores credentials as a single JSON document readable only by the owner.
type FileRepo struct {
	path string
	lock sync.Mutex
}

// New creates the directory with 0700 permissions if needed.
// If baseDir is empty, uses ~/.fintrack/
func New(baseDir string) (*FileRepo, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".fintrack")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("credential file store initialized")

	return &FileRepo{path: filepath.Join(baseDir, fileName)}, nil
}

// Path returns the location of the credentials file
func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Get(ctx context.Context, key credentials.Key) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	contents, err := r.load()
	if err != nil {
		return "", err
	}
	v, ok := contents.Values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (r *FileRepo) Set(ctx context.Context, key credentials.Key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	contents, err := r.load()
	if err != nil {
		return err
	}
	contents.Values[key] = value
	return r.save(contents)
}

func (r *FileRepo) Delete(ctx context.Context, keys ...credentials.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	contents, err := r.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(contents.Values, k)
	}
	if len(contents.Values) == 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credentials file: %w", err)
		}
		return nil
	}
	return r.save(contents)
}

func (r *FileRepo) load() (*fileContents, error) {
	contents := &fileContents{Version: 1, Values: make(map[credentials.Key]string)}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return contents, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := json.Unmarshal(data, contents); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", r.path, err)
	}
	if contents.Values == nil {
		contents.Values = make(map[credentials.Key]string)
	}
	return contents, nil
}

func (r *FileRepo) save(contents *fileContents) error {
	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write to temp file first
	tempPath := r.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, r.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}
