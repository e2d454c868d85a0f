// Package lock manages the two device-held exclusive locks guarding a
// configuration session against concurrent administrators.
//
// The locks are taken and released through the XML API, config lock first,
// commit lock second. The device releases both locks on its own when the
// administrator who holds them performs a commit; callers must Reset the
// manager after such a commit and lock again instead of trusting the local
// flag.
package lock

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/netconfd/panos-driver/pkg/driver/xmlapi"
)

// Kind is one of the two device lock kinds.
type Kind string

const (
	Config Kind = "config"
	Commit Kind = "commit"
)

// kinds is the fixed acquisition and release order.
var kinds = []Kind{Config, Commit}

const (
	takeLockCmd    = "<request><%[1]s-lock><add><comment>%[2]s</comment></add></%[1]s-lock></request>"
	releaseLockCmd = "<request><%[1]s-lock><remove></remove></%[1]s-lock></request>"
)

// Channel is the slice of the XML command channel the manager needs.
type Channel interface {
	Op(ctx context.Context, cmd string) (*xmlapi.Response, error)
}

type Manager struct {
	ch      Channel
	comment string
	locked  bool
}

func New(ch Channel, comment string) *Manager {
	return &Manager{
		ch:      ch,
		comment: comment,
	}
}

// Lock takes the config lock then the commit lock. It is idempotent: when
// the locks are already held no device commands are issued.
//
// A failure on either lock aborts immediately without cleaning up a possibly
// half-acquired state: the remaining lock may belong to this process or to a
// stale session from a prior crash, and only an operator can tell which. It
// must then be removed manually (CLI, API or web UI) by the administrator
// who set it, or by a superuser.
func (m *Manager) Lock(ctx context.Context) error {
	if m.locked {
		log.Debug("config and commit already locked - skipping")
		return nil
	}
	for _, kind := range kinds {
		cmd := fmt.Sprintf(takeLockCmd, kind, m.comment)
		resp, err := m.ch.Op(ctx, cmd)
		if err == nil {
			err = resp.Err()
		}
		if err != nil {
			return &AcquisitionError{Kind: kind, Err: err}
		}
		log.Debugf("%s-lock acquired", kind)
	}
	m.locked = true
	return nil
}

// Unlock releases both locks in the same fixed order. On failure the locked
// flag stays set so a later Unlock can try again.
//
// Note that a lock that disappeared under us (removed by another
// administrator, or auto-released by the device on a commit this manager was
// not told about) also fails here: the configuration may have changed in the
// middle of whatever was done under the lock, and the operator should know.
func (m *Manager) Unlock(ctx context.Context) error {
	if !m.locked {
		log.Debug("config and commit was not locked - skipping release")
		return nil
	}
	for _, kind := range kinds {
		cmd := fmt.Sprintf(releaseLockCmd, kind)
		resp, err := m.ch.Op(ctx, cmd)
		if err == nil {
			err = resp.Err()
		}
		if err != nil {
			return &ReleaseError{Kind: kind, Err: err}
		}
		log.Debugf("%s-lock released", kind)
	}
	m.locked = false
	return nil
}

// Locked reports the local view of the lock state. The device remains
// authoritative; this flag is best-effort bookkeeping.
func (m *Manager) Locked() bool {
	return m.locked
}

// Reset clears the local locked flag without issuing device commands. Used
// after a commit, which makes the device drop both locks itself.
func (m *Manager) Reset() {
	m.locked = false
}

// WithLock runs fn with both locks held, releasing them afterwards. The
// error of fn wins over a release error.
func (m *Manager) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.Lock(ctx); err != nil {
		return err
	}
	err := fn(ctx)
	uerr := m.Unlock(ctx)
	if err != nil {
		return err
	}
	return uerr
}

// AcquisitionError reports which lock kind could not be taken.
type AcquisitionError struct {
	Kind Kind
	Err  error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire %s-lock: %v", e.Kind, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ReleaseError reports which lock kind could not be released.
type ReleaseError struct {
	Kind Kind
	Err  error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("failed to release %s-lock: %v", e.Kind, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }
