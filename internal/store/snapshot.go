// Package store holds the service's in-memory state: the latest snapshot and
// the recent alert feed.
package store

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
)

// ErrNoSnapshot is returned before the first snapshot has been stored.
var ErrNoSnapshot = errors.New("no snapshot generated yet")

// Snapshots holds the most recent snapshot. Each Replace swaps in a whole
// snapshot, so readers never observe a mix of two generations.
type Snapshots struct {
	latest atomic.Pointer[domain.Snapshot]
}

// NewSnapshots returns an empty holder.
func NewSnapshots() *Snapshots {
	return &Snapshots{}
}

// Replace stores snap as the latest snapshot. The caller must not modify
// snap afterwards.
func (s *Snapshots) Replace(snap domain.Snapshot) {
	s.latest.Store(&snap)
}

// Latest returns the current snapshot. Callers must treat Records as read-only.
func (s *Snapshots) Latest() (domain.Snapshot, error) {
	p := s.latest.Load()
	if p == nil {
		return domain.Snapshot{}, ErrNoSnapshot
	}
	return *p, nil
}

// Record looks up a record in the latest snapshot by id.
func (s *Snapshots) Record(id string) (domain.LocationRecord, bool, error) {
	snap, err := s.Latest()
	if err != nil {
		return domain.LocationRecord{}, false, err
	}
	for _, r := range snap.Records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return domain.LocationRecord{}, false, nil
}

// CheckReadiness reports ready once a snapshot exists.
func (s *Snapshots) CheckReadiness(_ context.Context) error {
	if s.latest.Load() == nil {
		return ErrNoSnapshot
	}
	return nil
}
