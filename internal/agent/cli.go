package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

const defaultBinary = "claude"

// CLIReviewer drives a headless reviewer binary (claude -p compatible).
// The prompt is piped via stdin to avoid argument-length limits; session
// continuity uses the binary's --resume flag.
type CLIReviewer struct {
	binary string
	model  string
}

// NewCLI creates a subprocess-backed reviewer. The binary defaults to
// "claude" and can be overridden with DOCCRITIC_AGENT; DOCCRITIC_MODEL
// selects a model if the binary supports one.
func NewCLI() *CLIReviewer {
	binary := os.Getenv("DOCCRITIC_AGENT")
	if binary == "" {
		binary = defaultBinary
	}
	return &CLIReviewer{binary: binary, model: os.Getenv("DOCCRITIC_MODEL")}
}

func (c *CLIReviewer) Name() string { return c.binary }

// cliOutput is the JSON envelope emitted with --output-format json.
type cliOutput struct {
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
	IsError   bool   `json:"is_error"`
}

func (c *CLIReviewer) Review(ctx context.Context, req Request) (Response, error) {
	resp, err := c.run(ctx, req.Prompt, req.Session)
	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, context.Canceled):
		return Response{}, err
	case req.Session != "":
		// Resume refused or the session expired. Report continuity loss and
		// let the caller decide whether to retry fresh.
		return Response{ContinuityLost: true}, nil
	default:
		return Response{}, err
	}
}

func (c *CLIReviewer) run(ctx context.Context, prompt, session string) (Response, error) {
	args := []string{"-p", "--output-format", "json"}
	if session != "" {
		args = append(args, "--resume", session)
	}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return Response{TimedOut: true}, nil
	} else if errors.Is(ctxErr, context.Canceled) {
		return Response{}, ctxErr
	}
	if err != nil {
		return Response{}, fmt.Errorf("agent: %s: %w", c.binary, err)
	}

	var out cliOutput
	if jsonErr := json.Unmarshal(stdout.Bytes(), &out); jsonErr != nil {
		// Older binaries emit plain text. Treat the whole output as the
		// response and synthesize a session handle.
		text := strings.TrimSpace(stdout.String())
		if text == "" {
			return Response{}, fmt.Errorf("agent: %s: empty response", c.binary)
		}
		return Response{Text: text, Session: uuid.NewString()}, nil
	}
	if out.IsError {
		return Response{}, fmt.Errorf("agent: %s reported an error: %s", c.binary, out.Result)
	}

	sessionID := out.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return Response{Text: strings.TrimSpace(out.Result), Session: sessionID}, nil
}
