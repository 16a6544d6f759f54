package host

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
)

type fakeProcess struct {
	pid, ppid int
	exe       string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return p.ppid }
func (p fakeProcess) Executable() string { return p.exe }

func withProcesses(t *testing.T, processes []ps.Process, err error) {
	t.Helper()
	orig := processLister
	processLister = func() ([]ps.Process, error) { return processes, err }
	t.Cleanup(func() { processLister = orig })
}

func TestFindProcesses(t *testing.T) {
	withProcesses(t, []ps.Process{
		fakeProcess{pid: 40, ppid: 1, exe: "splash-host-log"},
		fakeProcess{pid: 12, ppid: 1, exe: "bash"},
		fakeProcess{pid: 30, ppid: 12, exe: "kiosk-shell"},
		fakeProcess{pid: 20, ppid: 12, exe: "splash-host-wayland"},
	}, nil)

	found, err := FindProcesses("kiosk-shell")
	if err != nil {
		t.Fatalf("FindProcesses() error = %v", err)
	}

	wantPIDs := []int{20, 30, 40}
	if len(found) != len(wantPIDs) {
		t.Fatalf("FindProcesses() = %+v", found)
	}
	for i, pid := range wantPIDs {
		if found[i].PID != pid {
			t.Errorf("found[%d].PID = %d, want %d", i, found[i].PID, pid)
		}
	}
	if found[1].PPID != 12 || found[1].Executable != "kiosk-shell" {
		t.Errorf("found[1] = %+v", found[1])
	}
}

func TestFindProcessesError(t *testing.T) {
	withProcesses(t, nil, errors.New("permission denied"))
	if _, err := FindProcesses(); err == nil {
		t.Error("FindProcesses() should fail when the process list is unavailable")
	}
}
