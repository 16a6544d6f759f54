package host

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ExecutablePrefix names external host binaries (e.g., "splash-host-log").
const ExecutablePrefix = "splash-host"

// Process is a running external host.
type Process struct {
	PID        int
	PPID       int
	Executable string
}

// processLister is swapped out in tests.
var processLister = ps.Processes

// FindProcesses lists running processes whose executable starts with
// ExecutablePrefix or equals one of names, ordered by PID.
func FindProcesses(names ...string) ([]Process, error) {
	processes, err := processLister()
	if err != nil {
		return nil, fmt.Errorf("failed to get process list: %w", err)
	}

	var found []Process
	for _, p := range processes {
		if !isHostExecutable(p.Executable(), names) {
			continue
		}
		found = append(found, Process{PID: p.Pid(), PPID: p.PPid(), Executable: p.Executable()})
	}
	slices.SortFunc(found, func(a, b Process) int { return a.PID - b.PID })
	return found, nil
}

func isHostExecutable(executable string, names []string) bool {
	if strings.HasPrefix(executable, ExecutablePrefix) {
		return true
	}
	return slices.Contains(names, executable)
}
