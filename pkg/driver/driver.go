// Package driver implements the configuration-lifecycle driver for PAN-OS
// devices: candidate staging, commit, discard and rollback over the device's
// XML API and interactive CLI, guarded by the device-held config and commit
// locks.
package driver

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/netconfd/panos-driver/pkg/config"
	"github.com/netconfd/panos-driver/pkg/driver/lock"
	"github.com/netconfd/panos-driver/pkg/driver/shell"
	"github.com/netconfd/panos-driver/pkg/driver/xmlapi"
)

// CommandChannel is the stateless XML request/response channel. It carries
// locking, backup, load/replace, discard and the rollback load.
type CommandChannel interface {
	Op(ctx context.Context, cmd string) (*xmlapi.Response, error)
	Import(ctx context.Context, filename string) (string, error)
	ShowRunning(ctx context.Context) (string, error)
	ShowCandidate(ctx context.Context) (string, error)
}

// ShellChannel is the interactive CLI channel, opened lazily for the
// operations the XML API does not cover reliably: merge staging, commit,
// diff and the rollback commit. Once open it lives until the driver closes.
type ShellChannel interface {
	SendConfigs(lines []string) error
	Commit(comment string) error
	Diff() (string, error)
	IsAlive() bool
	Close() error
}

const (
	// settle pauses after commit and after the rollback load, giving the
	// device time before the next command is issued
	commitSettleTime   = 3 * time.Second
	rollbackSettleTime = 5 * time.Second
)

type Driver struct {
	cfg *config.DeviceConfig

	api   CommandChannel
	sh    ShellChannel
	locks *lock.Manager

	tx txState

	newAPI   func(ctx context.Context, cfg *config.DeviceConfig) (CommandChannel, error)
	newShell func(cfg *config.DeviceConfig) (ShellChannel, error)

	now            func() time.Time
	commitSettle   time.Duration
	rollbackSettle time.Duration
}

// New creates a driver for the given device. No connection is made until
// Open.
func New(cfg *config.DeviceConfig) *Driver {
	return &Driver{
		cfg: cfg,
		newAPI: func(ctx context.Context, cfg *config.DeviceConfig) (CommandChannel, error) {
			c, err := xmlapi.NewClient(ctx, cfg)
			if err != nil {
				return nil, err
			}
			if err := c.Connect(ctx); err != nil {
				return nil, err
			}
			return c, nil
		},
		newShell: func(cfg *config.DeviceConfig) (ShellChannel, error) {
			return shell.New(cfg)
		},
		now:            time.Now,
		commitSettle:   commitSettleTime,
		rollbackSettle: rollbackSettleTime,
	}
}

// Open establishes the XML API session and, if session locking is enabled,
// takes the config and commit locks for the life of the session.
func (d *Driver) Open(ctx context.Context) error {
	api, err := d.newAPI(ctx, d.cfg)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	d.api = api

	if d.cfg.ConfigLock {
		if d.locks == nil {
			d.locks = lock.New(api, d.cfg.ConfigLockComment)
		}
		if err := d.locks.Lock(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases session locks and tears down both channels.
func (d *Driver) Close(ctx context.Context) error {
	if d.cfg.ConfigLock && d.locks != nil {
		if err := d.locks.Unlock(ctx); err != nil {
			return err
		}
		d.locks = nil
	}
	d.api = nil
	if d.sh != nil {
		err := d.sh.Close()
		d.sh = nil
		if err != nil {
			return err
		}
	}
	return nil
}

// IsAlive reports whether the session is usable. With the shell channel open
// the transport state of the CLI session is authoritative, otherwise an open
// API channel counts as alive.
func (d *Driver) IsAlive() bool {
	if d.api == nil {
		return false
	}
	if d.sh != nil {
		return d.sh.IsAlive()
	}
	return true
}

// openShell opens the interactive CLI channel on first use.
func (d *Driver) openShell() error {
	if d.sh != nil {
		return nil
	}
	log.Debugf("opening shell channel to %s", d.cfg.Address)
	sh, err := d.newShell(d.cfg)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	d.sh = sh
	return nil
}

// Loaded reports whether a candidate configuration is staged and neither
// committed nor discarded yet.
func (d *Driver) Loaded() bool { return d.tx.loaded }

// Changed reports whether the most recent commit succeeded, which gates
// rollback eligibility.
func (d *Driver) Changed() bool { return d.tx.changed }
