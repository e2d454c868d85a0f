package lock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/netconfd/panos-driver/pkg/driver/xmlapi"
)

type fakeChannel struct {
	cmds []string
	// failOn makes Op return a device error status for commands containing
	// the substring.
	failOn string
}

func (f *fakeChannel) Op(_ context.Context, cmd string) (*xmlapi.Response, error) {
	f.cmds = append(f.cmds, cmd)
	if f.failOn != "" && strings.Contains(cmd, f.failOn) {
		return xmlapi.ParseResponse([]byte(`<response status="error"><msg><line>lock held by admin</line></msg></response>`))
	}
	return xmlapi.ParseResponse([]byte(`<response status="success"/>`))
}

func TestLockOrderAndIdempotency(t *testing.T) {
	ch := &fakeChannel{}
	m := New(ch, "test-lock")

	if err := m.Lock(context.TODO()); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if !m.Locked() {
		t.Fatalf("Locked() = false after successful Lock()")
	}
	if len(ch.cmds) != 2 {
		t.Fatalf("expected 2 device commands, got %d: %v", len(ch.cmds), ch.cmds)
	}
	if !strings.Contains(ch.cmds[0], "<config-lock><add>") {
		t.Errorf("first command is not the config-lock add: %s", ch.cmds[0])
	}
	if !strings.Contains(ch.cmds[1], "<commit-lock><add>") {
		t.Errorf("second command is not the commit-lock add: %s", ch.cmds[1])
	}
	if !strings.Contains(ch.cmds[0], "<comment>test-lock</comment>") {
		t.Errorf("lock comment missing from command: %s", ch.cmds[0])
	}

	// second Lock must not issue further device commands
	if err := m.Lock(context.TODO()); err != nil {
		t.Fatalf("second Lock() error = %v", err)
	}
	if len(ch.cmds) != 2 {
		t.Fatalf("idempotent Lock() issued commands, got %d total", len(ch.cmds))
	}
}

func TestUnlockWhenNotLocked(t *testing.T) {
	ch := &fakeChannel{}
	m := New(ch, "test-lock")

	if err := m.Unlock(context.TODO()); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if len(ch.cmds) != 0 {
		t.Fatalf("Unlock() without lock issued %d commands", len(ch.cmds))
	}
}

func TestLockFailsOnCommitLock(t *testing.T) {
	ch := &fakeChannel{failOn: "commit-lock"}
	m := New(ch, "test-lock")

	err := m.Lock(context.TODO())
	if err == nil {
		t.Fatal("Lock() expected error, got nil")
	}
	var aerr *AcquisitionError
	if !errors.As(err, &aerr) {
		t.Fatalf("Lock() error = %T, want *AcquisitionError", err)
	}
	if aerr.Kind != Commit {
		t.Errorf("AcquisitionError.Kind = %s, want %s", aerr.Kind, Commit)
	}
	if m.Locked() {
		t.Error("Locked() = true after failed Lock()")
	}
	// no automatic cleanup of the half-acquired config lock
	if len(ch.cmds) != 2 {
		t.Fatalf("expected exactly 2 commands (no cleanup), got %d: %v", len(ch.cmds), ch.cmds)
	}
	for _, c := range ch.cmds {
		if strings.Contains(c, "<remove>") {
			t.Errorf("unexpected automatic lock release: %s", c)
		}
	}
}

func TestUnlockFailureKeepsLockedFlag(t *testing.T) {
	ch := &fakeChannel{}
	m := New(ch, "test-lock")
	if err := m.Lock(context.TODO()); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	ch.failOn = "config-lock"
	err := m.Unlock(context.TODO())
	var rerr *ReleaseError
	if !errors.As(err, &rerr) {
		t.Fatalf("Unlock() error = %T, want *ReleaseError", err)
	}
	if rerr.Kind != Config {
		t.Errorf("ReleaseError.Kind = %s, want %s", rerr.Kind, Config)
	}
	if !m.Locked() {
		t.Error("Locked() = false after failed Unlock(), want true so release can be retried")
	}
}

func TestReset(t *testing.T) {
	ch := &fakeChannel{}
	m := New(ch, "test-lock")
	if err := m.Lock(context.TODO()); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	// the device dropped both locks on commit; Reset mirrors that locally
	m.Reset()
	if m.Locked() {
		t.Fatal("Locked() = true after Reset()")
	}
	if err := m.Lock(context.TODO()); err != nil {
		t.Fatalf("re-Lock() after Reset() error = %v", err)
	}
	if len(ch.cmds) != 4 {
		t.Fatalf("expected 4 commands after re-lock, got %d", len(ch.cmds))
	}
}

func TestWithLock(t *testing.T) {
	ch := &fakeChannel{}
	m := New(ch, "test-lock")

	ran := false
	err := m.WithLock(context.TODO(), func(ctx context.Context) error {
		ran = true
		if !m.Locked() {
			t.Error("locks not held inside WithLock")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if !ran {
		t.Fatal("WithLock() did not run fn")
	}
	if m.Locked() {
		t.Error("Locked() = true after WithLock returned")
	}
	if len(ch.cmds) != 4 {
		t.Fatalf("expected 4 commands (2 add, 2 remove), got %d", len(ch.cmds))
	}
}
