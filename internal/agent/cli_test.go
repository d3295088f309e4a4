package agent

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// stubBinary writes an executable shell script that stands in for the
// reviewer binary.
func stubBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-reviewer")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCLIReviewJSONOutput(t *testing.T) {
	bin := stubBinary(t, `cat >/dev/null
echo '{"result":"CRITICAL: broken","session_id":"sess-42","is_error":false}'
`)
	r := &CLIReviewer{binary: bin}

	resp, err := r.Review(context.Background(), Request{Prompt: "review this"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "CRITICAL: broken" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Session != "sess-42" {
		t.Errorf("session = %q", resp.Session)
	}
	if resp.ContinuityLost || resp.TimedOut {
		t.Error("unexpected flags set")
	}
}

func TestCLIReviewPlainTextFallback(t *testing.T) {
	bin := stubBinary(t, `cat >/dev/null
echo 'WARNING: plain text response'
`)
	r := &CLIReviewer{binary: bin}

	resp, err := r.Review(context.Background(), Request{Prompt: "review"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "WARNING: plain text response" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Session == "" {
		t.Error("plain-text output should get a synthesized session handle")
	}
}

func TestCLIReviewResumeFailure(t *testing.T) {
	bin := stubBinary(t, `cat >/dev/null
exit 1
`)
	r := &CLIReviewer{binary: bin}

	// A failed resume reports continuity loss instead of an error.
	resp, err := r.Review(context.Background(), Request{Prompt: "review", Session: "stale"})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.ContinuityLost {
		t.Error("resume failure must report ContinuityLost")
	}

	// The same failure without a session is a hard error.
	if _, err := r.Review(context.Background(), Request{Prompt: "review"}); err == nil {
		t.Error("fresh-session failure must surface as an error")
	}
}

func TestCLIReviewTimeout(t *testing.T) {
	bin := stubBinary(t, `cat >/dev/null
sleep 5
`)
	r := &CLIReviewer{binary: bin}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	resp, err := r.Review(ctx, Request{Prompt: "review"})
	if err != nil {
		t.Fatalf("timeout is recoverable, got error: %v", err)
	}
	if !resp.TimedOut {
		t.Error("expected TimedOut flag")
	}
}

func TestCLIReviewAgentError(t *testing.T) {
	bin := stubBinary(t, `cat >/dev/null
echo '{"result":"session too old","session_id":"","is_error":true}'
`)
	r := &CLIReviewer{binary: bin}

	if _, err := r.Review(context.Background(), Request{Prompt: "review"}); err == nil {
		t.Error("is_error responses must surface as errors")
	}
}

func TestNewCLIDefaults(t *testing.T) {
	t.Setenv("DOCCRITIC_AGENT", "")
	t.Setenv("DOCCRITIC_MODEL", "")
	r := NewCLI()
	if r.Name() != defaultBinary {
		t.Errorf("default binary = %q", r.Name())
	}

	t.Setenv("DOCCRITIC_AGENT", "my-reviewer")
	if NewCLI().Name() != "my-reviewer" {
		t.Error("DOCCRITIC_AGENT override ignored")
	}
}
