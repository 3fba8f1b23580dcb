package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/pkgdep/internal/config"
	"github.com/joshuapare/pkgdep/pkg/types"
)

// resetFlags restores every flag variable to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	cfgFile = ""
	scope = types.ScopeMachine
	providerKey, ignoreKeys, exactIgnore = "", nil, false
	depsMin, depsMax, depsMinInclusive, depsMaxInclusive = "", "", false, false
	registerName, registerVersion, registerID, registerNewID, registerAttributes = "", "", "", false, 0
	importEncoding = ""
	exportOutput, exportEncoding, exportBOM = "", "", false
	exitCode = exitOK

	// Unbound flags keep their value and changed state between executions,
	// and viper prefers a changed flag over the config file.
	for _, name := range flagKeys {
		f := rootCmd.PersistentFlags().Lookup(name)
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
}

// testSession starts a session over a fresh in-memory store and closes it
// when the test ends.
func testSession(t *testing.T) *session {
	t.Helper()
	resetFlags()
	cfg := config.Defaults()
	cfg.Store.Backend = config.BackendMemory
	if err := startSession(cfg, ""); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	s := sess
	t.Cleanup(func() {
		if sess == s {
			closeSession()
		}
	})
	return s
}

// isolate points the user config directory and working directory at a
// scratch directory so no real configuration is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	t.Chdir(dir)
	return dir
}

// run executes the command line args and returns stdout and the exit
// status.
func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	var code int
	out, _ := captureOutput(t, func() error {
		code = execute()
		return nil
	})
	return out, code
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
