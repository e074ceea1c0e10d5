package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/terra-clan/manrura/internal/directory"
	"github.com/terra-clan/manrura/internal/models"
)

// Store loads and saves the application snapshot, one blob per key
type Store struct {
	kv KV
}

// NewStore wraps a KV backend
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// KV exposes the underlying backend for health checks
func (s *Store) KV() KV {
	return s.kv
}

// Load reads every blob. A blob that is missing, unreadable, null or not
// valid JSON falls back to its built-in default without affecting the
// others. Load never fails.
func (s *Store) Load(ctx context.Context) *models.Snapshot {
	defaults := directory.DefaultSnapshot()
	snap := &models.Snapshot{}

	if !s.load(ctx, models.KeyUsers, &snap.Users) {
		snap.Users = defaults.Users
	}
	if !s.load(ctx, models.KeyWards, &snap.Wards) {
		snap.Wards = defaults.Wards
	}
	if !s.load(ctx, models.KeyAssessments, &snap.Assessments) {
		snap.Assessments = defaults.Assessments
	}
	if !s.load(ctx, models.KeyPeriods, &snap.Periods) {
		snap.Periods = defaults.Periods
	}

	return snap
}

// load decodes key into dst and reports whether a usable value was found
func (s *Store) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		slog.Warn("failed to read stored state, using default", "key", key, "error", err)
		return false
	}
	if !ok {
		slog.Debug("no stored state, using default", "key", key)
		return false
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("stored state is malformed, using default", "key", key, "error", err)
		return false
	}
	return true
}

// Save writes the named keys of snap. With no keys every blob is written.
// Keys are written independently; the returned error joins all failures.
func (s *Store) Save(ctx context.Context, snap *models.Snapshot, keys ...string) error {
	if len(keys) == 0 {
		keys = models.AllKeys
	}

	var errs []error
	for _, key := range keys {
		value, err := blobFor(snap, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		data, err := json.Marshal(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to encode %s: %w", key, err))
			continue
		}

		if err := s.kv.Set(ctx, key, data); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

var ErrUnknownKey = errors.New("unknown state key")

func blobFor(snap *models.Snapshot, key string) (any, error) {
	switch key {
	case models.KeyUsers:
		return snap.Users, nil
	case models.KeyWards:
		return snap.Wards, nil
	case models.KeyAssessments:
		return snap.Assessments, nil
	case models.KeyPeriods:
		return snap.Periods, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}
