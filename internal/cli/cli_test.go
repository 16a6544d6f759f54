// Package cli_test provides tests for the CLI package.
package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/splash/internal/cli"
)

const capacitorConfig = `{
  "plugins": {
    "SplashScreen": {
      "showDuration": 3,
      "ios": {"spinnerStyle": "small"},
      "androidSpinnerStyle": "large",
      "logger": {"level": "silent"}
    }
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// execute runs a fresh root command and returns what it printed.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SPLASH_PLATFORM", "")
	t.Setenv(cli.HostEnv, "")

	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "splash version") {
		t.Errorf("Expected version banner, got: %s", out)
	}
}

func TestResolveCommand(t *testing.T) {
	cfg := writeFile(t, "capacitor.config.json", capacitorConfig)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"global value", []string{"resolve", "showDuration", "-c", cfg}, "3", false},
		{"normalized to milliseconds", []string{"resolve", "showDuration", "--ms", "-c", cfg}, "3000", false},
		{"call option wins", []string{"resolve", "showDuration", "--ms", "-c", cfg, "-o", "showDuration=1.5"}, "1500", false},
		{"nested platform block", []string{"resolve", "spinnerStyle", "-c", cfg, "-p", "ios"}, `"small"`, false},
		{"flat platform key", []string{"resolve", "spinnerStyle", "-c", cfg, "-p", "android"}, `"large"`, false},
		{"dotted option nests", []string{"resolve", "spinner.size", "-o", "spinner.size=24"}, "24", false},
		{"typed lookup", []string{"resolve", "showDuration", "-t", "int", "-c", cfg}, "3", false},
		{"wrong type", []string{"resolve", "spinnerStyle", "-t", "bool", "-c", cfg}, "", true},
		{"missing key", []string{"resolve", "fadeInDuration", "-c", cfg}, "", true},
		{"unknown platform", []string{"resolve", "showDuration", "-p", "web"}, "", true},
		{"bad option", []string{"resolve", "showDuration", "-o", "novalue"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && strings.TrimSpace(out) != tt.want {
				t.Errorf("resolve = %q, want %q", strings.TrimSpace(out), tt.want)
			}
		})
	}
}

func TestOptionsCommand(t *testing.T) {
	cfg := writeFile(t, "capacitor.config.json", capacitorConfig)

	out, _, err := execute(t, "options", "show", "-c", cfg, "-o", "fadeInDuration=0.25")
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	for _, want := range []string{"showDuration", "3000ms", "250ms", "small"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}

	out, _, err = execute(t, "options", "animate", "-o", "style=zoom")
	if err != nil {
		t.Fatalf("options animate failed: %v", err)
	}
	if !strings.Contains(out, "extra.style") {
		t.Errorf("Expected extra options in output, got:\n%s", out)
	}

	if _, _, err := execute(t, "options", "bogus"); err == nil {
		t.Error("Expected an error for an unknown call")
	}
}

const sessionScript = `
name = "show then hide"

[config]
fadeInDuration = 200
fadeOutDuration = 200

[[steps]]
at = 0
call = "show"
expect = "ok"

[[steps]]
at = 1000
call = "hide"
expect = "ok"
`

func TestSimulateCommand(t *testing.T) {
	path := writeFile(t, "session.toml", sessionScript)

	t.Run("Table", func(t *testing.T) {
		out, _, err := execute(t, "simulate", path, "--log-level", "silent")
		if err != nil {
			t.Fatalf("simulate failed: %v\n%s", err, out)
		}
		for _, want := range []string{"Script: show then hide", "attach", "detach", "Final: hidden"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected %q in output, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "FAIL") {
			t.Errorf("Unexpected failure in output:\n%s", out)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		out, _, err := execute(t, "simulate", path, "--json", "--log-level", "silent")
		if err != nil {
			t.Fatalf("simulate failed: %v", err)
		}
		var got struct {
			Script  string `json:"script"`
			Phase   string `json:"final_phase"`
			Records []struct {
				AtMS   int64  `json:"at_ms"`
				Actor  string `json:"actor"`
				Action string `json:"action"`
			} `json:"records"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("Invalid JSON: %v\n%s", err, out)
		}
		if got.Phase != "hidden" || len(got.Records) == 0 {
			t.Errorf("timeline = %+v", got)
		}
		last := got.Records[len(got.Records)-1]
		if last.Actor != "result" || last.Action != "hide" || last.AtMS != 1200 {
			t.Errorf("last record = %+v, want hide result at 1200ms", last)
		}
	})

	t.Run("FailedExpectation", func(t *testing.T) {
		failing := writeFile(t, "failing.toml", `
[[steps]]
at = 0
call = "animate"
expect = "ok"
`)
		out, _, err := execute(t, "simulate", failing, "--no-delegate", "--log-level", "silent")
		if err == nil {
			t.Fatal("Expected simulate to fail")
		}
		if !strings.Contains(out, "FAIL animate") {
			t.Errorf("Expected the failure to be printed, got:\n%s", out)
		}
	})

	t.Run("MissingScript", func(t *testing.T) {
		if _, _, err := execute(t, "simulate", filepath.Join(t.TempDir(), "none.toml")); err == nil {
			t.Error("Expected an error for a missing script")
		}
	})

	t.Run("UnknownHost", func(t *testing.T) {
		if _, _, err := execute(t, "simulate", path, "--host", "bogus"); err == nil {
			t.Error("Expected an error for an unknown host")
		}
	})
}

func TestHostListCommand(t *testing.T) {
	out, _, err := execute(t, "host", "list")
	if err != nil {
		t.Fatalf("host list failed: %v", err)
	}
	for _, want := range []string{"sim", "log"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected host %q in output, got:\n%s", want, out)
		}
	}
}
