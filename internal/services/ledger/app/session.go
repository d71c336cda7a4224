package app

import (
	"sync"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/build"
	"github.com/louisbranch/buildledger/internal/services/ledger/domain/reconcile"
)

// Session is one character open for editing. Only one caller may use its
// ledger at a time; a concurrent caller is turned away with SESSION_BUSY.
type Session struct {
	id string

	mu        sync.Mutex
	ledger    *build.Ledger
	document  []byte
	reconcile reconcile.Result
	notices   []string
}

// ID returns the character id.
func (s *Session) ID() string { return s.id }

// Reconcile returns the load-time reconciliation result.
func (s *Session) Reconcile() reconcile.Result { return s.reconcile }

// Notices returns the localized load notices. They are produced once, when
// the session is opened.
func (s *Session) Notices() []string { return append([]string(nil), s.notices...) }

// Do runs fn with exclusive access to the ledger.
func (s *Session) Do(fn func(*build.Ledger) error) error {
	if !s.mu.TryLock() {
		return apperrors.WithMetadata(apperrors.CodeSessionBusy,
			"character "+s.id+" is busy", map[string]string{"ID": s.id})
	}
	defer s.mu.Unlock()
	return fn(s.ledger)
}

// Snapshot returns the current snapshot.
func (s *Session) Snapshot() (build.Snapshot, error) {
	var snap build.Snapshot
	err := s.Do(func(l *build.Ledger) error {
		snap = l.Snapshot()
		return nil
	})
	return snap, err
}
