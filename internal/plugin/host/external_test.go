package host

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

type mockRunner struct {
	stdout []byte
	err    error
	calls  int
}

func (m *mockRunner) Run(context.Context, string, []string, io.Reader) ([]byte, []byte, error) {
	m.calls++
	return m.stdout, nil, m.err
}

func TestExternalConnectRejects(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "splash-host-log")

	tests := []struct {
		name      string
		path      string
		hostDir   string
		runner    *mockRunner
		wantErr   string
		wantCalls int
	}{
		{
			name:    "outside host directory",
			path:    "/usr/bin/splash-host-log",
			hostDir: dir,
			runner:  &mockRunner{},
			wantErr: "invalid host binary",
		},
		{
			name:      "query fails",
			path:      inside,
			hostDir:   dir,
			runner:    &mockRunner{err: errors.New("exec format error")},
			wantErr:   "failed to detect host protocol",
			wantCalls: 1,
		},
		{
			name:      "incompatible protocol",
			path:      inside,
			runner:    &mockRunner{stdout: []byte(`{"name":"old","protocol_version":"1.0.0"}`)},
			wantErr:   "incompatible",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExternal(tt.path, tt.runner)
			_, err := h.Connect(context.Background(), Env{HostDir: tt.hostDir})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Connect() error = %v, want containing %q", err, tt.wantErr)
			}
			if tt.runner.calls != tt.wantCalls {
				t.Errorf("runner calls = %d, want %d", tt.runner.calls, tt.wantCalls)
			}
		})
	}
}

func TestExternalInfo(t *testing.T) {
	runner := &mockRunner{stdout: []byte(`{"name":"loghost","version":"1.2.0","protocol_version":"0.1.0"}`)}
	h := NewExternal("/opt/splash/splash-host-log", runner)

	if h.Name() != "splash-host-log" || h.Path() != "/opt/splash/splash-host-log" {
		t.Errorf("Name() = %s, Path() = %s", h.Name(), h.Path())
	}

	result, err := h.Info(context.Background())
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if !result.Compatible || result.Info.Name != "loghost" || result.Info.Version != "1.2.0" {
		t.Errorf("Info() = %+v", result)
	}
}
