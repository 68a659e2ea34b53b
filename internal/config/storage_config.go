package config

import "strings"

type StorageBackend string

const (
	StorageFile   StorageBackend = "file"
	StorageMemory StorageBackend = "memory"
	StorageValkey StorageBackend = "valkey"
)

type Storage struct {
	src *sources
}

var _ StorageConfig = Storage{}

// GetStorageBackend returns the credential backend, defaulting to file for unknown values
func (s Storage) GetStorageBackend() StorageBackend {
	raw := s.src.lookup(s.src.overrides.Storage, "FINTRACK_STORAGE", s.src.file.Storage, string(StorageFile))
	switch backend := StorageBackend(strings.ToLower(raw)); backend {
	case StorageFile, StorageMemory, StorageValkey:
		return backend
	default:
		return StorageFile
	}
}

func (s Storage) GetValkeyAddr() string {
	return s.src.lookup("", "FINTRACK_VALKEY_ADDR", s.src.file.ValkeyAddr, "localhost:6379")
}

func (s Storage) GetValkeyPrefix() string {
	return s.src.lookup("", "FINTRACK_VALKEY_PREFIX", s.src.file.ValkeyPrefix, "fintrack")
}
