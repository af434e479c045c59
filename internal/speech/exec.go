package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Request is the JSON payload sent to the speech helper on stdin.
type Request struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Slow     bool   `json:"slow"`
}

// ExecSpeaker shells out to an external text-to-speech helper. The helper
// reads a Request as JSON on stdin, synthesizes and plays the audio, and
// exits zero on success.
type ExecSpeaker struct {
	command  string
	args     []string
	language string
	slow     bool
	timeout  time.Duration
}

// NewExecSpeaker creates a Speaker backed by the given helper command.
func NewExecSpeaker(command string, args []string, language string, slow bool, timeout time.Duration) *ExecSpeaker {
	return &ExecSpeaker{
		command:  command,
		args:     args,
		language: language,
		slow:     slow,
		timeout:  timeout,
	}
}

// Speak sends the text to the helper and waits for it to finish, bounded by
// the configured timeout and the caller's context.
func (s *ExecSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command, s.args...)

	reqJSON, err := json.Marshal(Request{Text: text, Language: s.language, Slow: s.slow})
	if err != nil {
		return fmt.Errorf("failed to marshal speech request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("speech command timeout after %s", s.timeout)
	}
	if err != nil {
		if stderrStr := stderr.String(); stderrStr != "" {
			return fmt.Errorf("speech command failed: %w, stderr: %s", err, stderrStr)
		}
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}

// Close is a no-op; each Speak call owns its process.
func (s *ExecSpeaker) Close() error { return nil }
