package driver

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// txState tracks the configuration transaction:
//
//	Idle (loaded=false, changed=false)
//	  --stage-->    Staged (loaded=true)
//	  --commit-->   Committed (loaded=false, changed=true)
//	  --discard-->  Idle
//	Committed --rollback--> Idle
//
// backupFile names the device-side snapshot taken before the first stage
// operation of the transaction; discard and rollback reload it.
type txState struct {
	loaded      bool
	changed     bool
	mergeConfig bool
	backupFile  string
}

const (
	backupFileFormat = "config_%s.xml"

	saveConfigCmd = "<save><config><to>%s</to></config></save>"
	loadConfigCmd = "<load><config><from>%s</from></config></load>"
)

// Config scopes accepted by GetConfig.
const (
	ScopeRunning   = "running"
	ScopeCandidate = "candidate"
	ScopeStartup   = "startup"
	ScopeAll       = "all"
)

// Configs carries the textual configurations returned by GetConfig. Scopes
// that were not requested stay empty; PAN-OS has no separate startup
// configuration, so Startup is always empty.
type Configs struct {
	Running   string `json:"running"`
	Candidate string `json:"candidate"`
	Startup   string `json:"startup"`
}

// saveBackup snapshots the running configuration to a date-derived file on
// the device. It runs exactly once per transaction, before the first
// mutation; repeated stage operations within the transaction reuse the
// snapshot.
func (d *Driver) saveBackup(ctx context.Context) error {
	name := fmt.Sprintf(backupFileFormat, d.now().Format("2006-01-02"))
	resp, err := d.api.Op(ctx, fmt.Sprintf(saveConfigCmd, name))
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return err
	}
	log.Debugf("saved running config backup to %s", name)
	d.tx.backupFile = name
	return nil
}

// LoadReplaceCandidate stages a full candidate configuration from a local
// file: the file is uploaded to the device's configuration import area and
// loaded over the candidate. Inline content is not supported on this path.
func (d *Driver) LoadReplaceCandidate(ctx context.Context, filename string) error {
	if filename == "" {
		return &ReplaceConfigError{Msg: "this operation requires a config file"}
	}
	if !d.tx.loaded {
		if err := d.saveBackup(ctx); err != nil {
			return &ReplaceConfigError{Msg: "error while storing backup config", Err: err}
		}
	}

	path, err := d.api.Import(ctx, filename)
	if err != nil {
		return &ReplaceConfigError{Msg: "error while moving the config file to the device", Err: err}
	}

	resp, err := d.api.Op(ctx, fmt.Sprintf(loadConfigCmd, path))
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return &ReplaceConfigError{Msg: fmt.Sprintf("error while loading config from %s", path), Err: err}
	}

	d.tx.loaded = true
	d.tx.mergeConfig = false
	return nil
}

// LoadMergeCandidate stages incremental set-style statements from a local
// file or from inline content, exactly one of which must be given. The
// statements go through the shell channel, which does not reliably surface
// per-line failures; a bad statement shows up at commit time.
func (d *Driver) LoadMergeCandidate(ctx context.Context, filename, content string) error {
	var lines []string
	switch {
	case filename != "" && content != "":
		return &MergeConfigError{Msg: "provide either a file or a set-format string, not both"}
	case filename != "":
		b, err := os.ReadFile(filename)
		if err != nil {
			return &MergeConfigError{Msg: fmt.Sprintf("error while opening %s", filename), Err: err}
		}
		lines = splitStatements(string(b))
	case content != "":
		lines = splitStatements(content)
	default:
		return &MergeConfigError{Msg: "you must provide either a file or a set-format string"}
	}
	return d.sendMergeCommands(ctx, lines)
}

func (d *Driver) sendMergeCommands(ctx context.Context, lines []string) error {
	if !d.tx.loaded {
		if err := d.saveBackup(ctx); err != nil {
			return &MergeConfigError{Msg: "error while storing backup config", Err: err}
		}
	}
	if err := d.openShell(); err != nil {
		return err
	}
	if err := d.sh.SendConfigs(lines); err != nil {
		return &MergeConfigError{Msg: "error while sending merge statements", Err: err}
	}
	d.tx.loaded = true
	d.tx.mergeConfig = true
	return nil
}

func splitStatements(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// CompareConfig returns the device's textual diff of candidate against
// running configuration. With nothing staged the device reports no
// differences; this is not an error.
func (d *Driver) CompareConfig(ctx context.Context) (string, error) {
	if err := d.openShell(); err != nil {
		return "", err
	}
	return d.sh.Diff()
}

// GetConfig retrieves the configuration texts for the requested scope, one
// of running, candidate, startup or all.
func (d *Driver) GetConfig(ctx context.Context, scope string) (*Configs, error) {
	c := &Configs{}
	var err error
	switch scope {
	case ScopeAll:
		if c.Running, err = d.api.ShowRunning(ctx); err != nil {
			return nil, err
		}
		if c.Candidate, err = d.api.ShowCandidate(ctx); err != nil {
			return nil, err
		}
	case ScopeRunning:
		if c.Running, err = d.api.ShowRunning(ctx); err != nil {
			return nil, err
		}
	case ScopeCandidate:
		if c.Candidate, err = d.api.ShowCandidate(ctx); err != nil {
			return nil, err
		}
	case ScopeStartup:
	default:
		return nil, fmt.Errorf("unknown config scope %q", scope)
	}
	return c, nil
}

// CommitConfig activates the staged candidate. On success the device also
// drops both session locks as a side effect, so with session locking enabled
// they are re-acquired before returning; a failed commit never re-acquires.
func (d *Driver) CommitConfig(ctx context.Context, message string) error {
	if !d.tx.loaded {
		return &ReplaceConfigError{Msg: "no config loaded"}
	}
	if err := d.openShell(); err != nil {
		return err
	}
	if err := d.sh.Commit(message); err != nil {
		if d.tx.mergeConfig {
			return &MergeConfigError{Msg: "error while committing config", Err: err}
		}
		return &ReplaceConfigError{Msg: "error while committing config", Err: err}
	}
	time.Sleep(d.commitSettle)
	d.tx.loaded = false
	d.tx.changed = true

	if d.cfg.ConfigLock && d.locks != nil {
		d.locks.Reset()
		if err := d.locks.Lock(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DiscardConfig drops the staged candidate by reloading the backup snapshot
// over it. With nothing staged it is a no-op.
func (d *Driver) DiscardConfig(ctx context.Context) error {
	if !d.tx.loaded {
		log.Debug("no candidate staged - skipping discard")
		return nil
	}
	resp, err := d.api.Op(ctx, fmt.Sprintf(loadConfigCmd, d.tx.backupFile))
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return &ReplaceConfigError{Msg: "error while loading backup config", Err: err}
	}
	d.tx.loaded = false
	d.tx.mergeConfig = false
	return nil
}

// Rollback reverts a committed transaction: the backup snapshot is loaded
// over the candidate and committed. With no committed change it is a no-op.
//
// A failure of the rollback commit is surfaced to the caller: the device is
// left with the backup staged but not active, and silently ignoring that
// would defeat the safety net.
func (d *Driver) Rollback(ctx context.Context) error {
	if !d.tx.changed {
		log.Debug("no committed change - skipping rollback")
		return nil
	}
	resp, err := d.api.Op(ctx, fmt.Sprintf(loadConfigCmd, d.tx.backupFile))
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return &ReplaceConfigError{Msg: "error while loading backup config", Err: err}
	}
	time.Sleep(d.rollbackSettle)

	if err := d.openShell(); err != nil {
		return err
	}
	if err := d.sh.Commit(""); err != nil {
		return &ReplaceConfigError{Msg: "error while committing backup config", Err: err}
	}
	d.tx.loaded = false
	d.tx.changed = false
	d.tx.mergeConfig = false
	return nil
}
