package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/netconfd/panos-driver/pkg/config"
	"github.com/netconfd/panos-driver/pkg/driver"
	"github.com/netconfd/panos-driver/pkg/driver/lock"
	"github.com/netconfd/panos-driver/pkg/driver/types"
)

type fakeDriver struct {
	calls []string

	openErr   error
	commitErr error
	diff      string
}

func (f *fakeDriver) call(s string) { f.calls = append(f.calls, s) }

func (f *fakeDriver) Open(context.Context) error  { f.call("open"); return f.openErr }
func (f *fakeDriver) Close(context.Context) error { f.call("close"); return nil }
func (f *fakeDriver) IsAlive() bool               { return true }

func (f *fakeDriver) GetConfig(_ context.Context, scope string) (*driver.Configs, error) {
	f.call("get-config:" + scope)
	return &driver.Configs{Running: "<config/>"}, nil
}

func (f *fakeDriver) LoadReplaceCandidate(_ context.Context, filename string) error {
	f.call("replace:" + filename)
	return nil
}

func (f *fakeDriver) LoadMergeCandidate(_ context.Context, filename, content string) error {
	f.call("merge:" + filename + ":" + content)
	return nil
}

func (f *fakeDriver) CompareConfig(context.Context) (string, error) {
	f.call("compare")
	return f.diff, nil
}

func (f *fakeDriver) CommitConfig(_ context.Context, message string) error {
	f.call("commit:" + message)
	return f.commitErr
}

func (f *fakeDriver) DiscardConfig(context.Context) error { f.call("discard"); return nil }
func (f *fakeDriver) Rollback(context.Context) error      { f.call("rollback"); return nil }

func (f *fakeDriver) GetFacts(context.Context) (*types.Facts, error) {
	f.call("get-facts")
	return &types.Facts{Hostname: "fw1", Vendor: "Palo Alto Networks"}, nil
}

func (f *fakeDriver) GetInterfaces(context.Context) (map[string]types.Interface, error) {
	f.call("get-interfaces")
	return map[string]types.Interface{}, nil
}

func (f *fakeDriver) GetInterfacesIP(context.Context) (map[string]types.InterfaceIP, error) {
	f.call("get-interfaces-ip")
	return map[string]types.InterfaceIP{}, nil
}

func (f *fakeDriver) GetLLDPNeighbors(context.Context) (map[string][]types.LLDPNeighbor, error) {
	f.call("get-lldp-neighbors")
	return map[string][]types.LLDPNeighbor{}, nil
}

func (f *fakeDriver) GetRouteTo(_ context.Context, destination, protocol string) (map[string][]types.Route, error) {
	f.call("get-routes:" + destination + ":" + protocol)
	return map[string][]types.Route{}, nil
}

func newTestServer(fd *fakeDriver) *Server {
	s := NewServer(&config.Config{
		HTTPServer: &config.HTTPServer{Address: ":0"},
		Devices: []*config.DeviceConfig{
			{Name: "fw1", Address: "192.0.2.1"},
		},
	})
	s.newDriver = func(*config.DeviceConfig) ConfigDriver { return fd }
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func TestSessionLifecycle(t *testing.T) {
	fd := &fakeDriver{}
	s := newTestServer(fd)

	if w := do(t, s, http.MethodPost, "/devices/fw1/session", ""); w.Code != http.StatusCreated {
		t.Fatalf("open status = %d, body %s", w.Code, w.Body)
	}
	// a second open on the same device conflicts
	if w := do(t, s, http.MethodPost, "/devices/fw1/session", ""); w.Code != http.StatusConflict {
		t.Fatalf("double open status = %d", w.Code)
	}
	if w := do(t, s, http.MethodDelete, "/devices/fw1/session", ""); w.Code != http.StatusOK {
		t.Fatalf("close status = %d", w.Code)
	}
	if w := do(t, s, http.MethodDelete, "/devices/fw1/session", ""); w.Code != http.StatusConflict {
		t.Fatalf("double close status = %d", w.Code)
	}
}

func TestOpenUnknownDevice(t *testing.T) {
	s := newTestServer(&fakeDriver{})
	if w := do(t, s, http.MethodPost, "/devices/fw9/session", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestOperationsRequireOpenSession(t *testing.T) {
	s := newTestServer(&fakeDriver{})
	if w := do(t, s, http.MethodPost, "/devices/fw1/config/commit", ""); w.Code != http.StatusConflict {
		t.Fatalf("commit without session status = %d", w.Code)
	}
}

func TestConfigLifecycleFlow(t *testing.T) {
	fd := &fakeDriver{diff: "+ set a b"}
	s := newTestServer(fd)

	if w := do(t, s, http.MethodPost, "/devices/fw1/session", ""); w.Code != http.StatusCreated {
		t.Fatalf("open status = %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/devices/fw1/config/merge", `{"content":"set a b"}`); w.Code != http.StatusOK {
		t.Fatalf("merge status = %d, body %s", w.Code, w.Body)
	}

	w := do(t, s, http.MethodGet, "/devices/fw1/config/diff", "")
	if w.Code != http.StatusOK {
		t.Fatalf("diff status = %d", w.Code)
	}
	var diffResp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &diffResp); err != nil {
		t.Fatalf("diff response decode: %v", err)
	}
	if diffResp["diff"] != "+ set a b" {
		t.Errorf("diff = %q", diffResp["diff"])
	}

	if w := do(t, s, http.MethodPost, "/devices/fw1/config/commit", `{"message":"window 42"}`); w.Code != http.StatusOK {
		t.Fatalf("commit status = %d", w.Code)
	}

	want := []string{"open", "merge::set a b", "compare", "commit:window 42"}
	if len(fd.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fd.calls, want)
	}
	for i := range want {
		if fd.calls[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q", i, fd.calls[i], want[i])
		}
	}
}

func TestGetConfigDefaultScope(t *testing.T) {
	fd := &fakeDriver{}
	s := newTestServer(fd)
	do(t, s, http.MethodPost, "/devices/fw1/session", "")

	if w := do(t, s, http.MethodGet, "/devices/fw1/config", ""); w.Code != http.StatusOK {
		t.Fatalf("get-config status = %d", w.Code)
	}
	if got := fd.calls[len(fd.calls)-1]; got != "get-config:all" {
		t.Errorf("last call = %q, want get-config:all", got)
	}
}

func TestStateEndpoints(t *testing.T) {
	fd := &fakeDriver{}
	s := newTestServer(fd)
	do(t, s, http.MethodPost, "/devices/fw1/session", "")

	w := do(t, s, http.MethodGet, "/devices/fw1/state/facts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("facts status = %d", w.Code)
	}
	var facts types.Facts
	if err := json.Unmarshal(w.Body.Bytes(), &facts); err != nil {
		t.Fatalf("facts decode: %v", err)
	}
	if facts.Hostname != "fw1" {
		t.Errorf("hostname = %q", facts.Hostname)
	}

	if w := do(t, s, http.MethodGet, "/devices/fw1/state/routes?destination=10.0.0.1&protocol=bgp", ""); w.Code != http.StatusOK {
		t.Fatalf("routes status = %d", w.Code)
	}
	if got := fd.calls[len(fd.calls)-1]; got != "get-routes:10.0.0.1:bgp" {
		t.Errorf("last call = %q", got)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"lock acquisition", &lock.AcquisitionError{Kind: lock.Commit}, http.StatusLocked},
		{"lock release", &lock.ReleaseError{Kind: lock.Config}, http.StatusLocked},
		{"connection", &driver.ConnectionError{}, http.StatusBadGateway},
		{"replace", &driver.ReplaceConfigError{Msg: "x"}, http.StatusConflict},
		{"merge", &driver.MergeConfigError{Msg: "x"}, http.StatusConflict},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommitErrorMapping(t *testing.T) {
	fd := &fakeDriver{commitErr: &driver.ReplaceConfigError{Msg: "error while committing config"}}
	s := newTestServer(fd)
	do(t, s, http.MethodPost, "/devices/fw1/session", "")
	do(t, s, http.MethodPost, "/devices/fw1/config/merge", `{"content":"set a b"}`)

	w := do(t, s, http.MethodPost, "/devices/fw1/config/commit", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("commit error status = %d, want 409", w.Code)
	}
	var er errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("error response decode: %v", err)
	}
	if !strings.Contains(er.Error, "error while committing config") {
		t.Errorf("error body = %q", er.Error)
	}
}
