// Package catalog - Atomic catalog holder for hot reload
package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	ierr "wireless-quote/internal/errors"
)

// LoadFunc produces a fresh sealed catalog, e.g. by re-reading a file
type LoadFunc func() (*Catalog, error)

// Store holds the current catalog. Readers always observe a complete
// catalog: either the one before a swap or the one after it.
type Store struct {
	current atomic.Pointer[Catalog]
	logger  *zap.Logger
}

// NewStore creates a store holding initial, which must be sealed
func NewStore(initial *Catalog, logger *zap.Logger) (*Store, error) {
	if !initial.IsSealed() {
		return nil, ierr.Config("catalog store requires a sealed catalog")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{logger: logger}
	s.current.Store(initial)
	return s, nil
}

// Current returns the catalog in effect
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap installs next and returns the catalog it replaced
func (s *Store) Swap(next *Catalog) (*Catalog, error) {
	if !next.IsSealed() {
		return nil, ierr.Config("refusing to swap in an unsealed catalog")
	}
	prev := s.current.Swap(next)
	s.logger.Info("catalog swapped",
		zap.String("from_version", prev.Version()),
		zap.String("from_hash", prev.Hash().String()),
		zap.String("to_version", next.Version()),
		zap.String("to_hash", next.Hash().String()),
	)
	return prev, nil
}

// Reload calls load and swaps in the result when its content differs from
// the current catalog. It reports whether a swap happened. A failed load
// leaves the current catalog in place.
func (s *Store) Reload(load LoadFunc) (bool, error) {
	next, err := load()
	if err != nil {
		s.logger.Error("catalog reload failed, keeping current catalog",
			zap.String("version", s.Current().Version()),
			zap.Error(err),
		)
		return false, err
	}
	if next.Hash() == s.Current().Hash() {
		return false, nil
	}
	if _, err := s.Swap(next); err != nil {
		return false, err
	}
	return true, nil
}

// Watch reloads every interval until ctx is done. Reload errors are logged
// and do not stop the loop.
func (s *Store) Watch(ctx context.Context, interval time.Duration, load LoadFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Reload(load)
		}
	}
}
