package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/splash/pkg/plugin"
)

// InfoFlag is the flag an external host answers with its PluginInfo as JSON.
const InfoFlag = "--plugin-info"

// queryTimeout bounds the --plugin-info query.
const queryTimeout = 5 * time.Second

// DetectorResult contains information about a queried host binary.
type DetectorResult struct {
	// Info is the metadata reported by --plugin-info.
	Info plugin.PluginInfo

	// Compatible reports whether the host's protocol version can be driven.
	Compatible bool

	// Reason explains an incompatible result.
	Reason string
}

// Detect queries an external host binary and checks its protocol version.
// An incompatible host is not an error; see DetectorResult.Compatible.
func Detect(ctx context.Context, runner ProcessRunner, hostPath string) (*DetectorResult, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stdout, stderr, err := runner.Run(ctx, hostPath, []string{InfoFlag}, nil)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("failed to query host: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("failed to query host: %w", err)
	}

	var info plugin.PluginInfo
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("failed to parse host info: %w", err)
	}

	result := &DetectorResult{Info: info}
	compatible, err := IsCompatible(info.ProtocolVersion)
	result.Compatible = compatible
	if err != nil {
		result.Reason = err.Error()
	}
	return result, nil
}
