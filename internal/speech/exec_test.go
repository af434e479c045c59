package speech

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script helpers are not available on windows")
	}
	path := filepath.Join(t.TempDir(), "helper.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write helper script: %v", err)
	}
	return path
}

func TestExecSpeaker_SendsRequestJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "request.json")
	script := writeScript(t, "cat > "+out+"\n")

	s := NewExecSpeaker(script, nil, "en", true, 5*time.Second)
	if err := s.Speak(context.Background(), "I NEED HELP"); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("helper did not receive stdin: %v", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatalf("helper received invalid JSON: %v", err)
	}
	if req.Text != "I NEED HELP" || req.Language != "en" || !req.Slow {
		t.Errorf("request = %+v, want text/language/slow carried through", req)
	}
}

func TestExecSpeaker_FailureIncludesStderr(t *testing.T) {
	script := writeScript(t, "echo 'no audio device' >&2\nexit 1\n")

	s := NewExecSpeaker(script, nil, "en", false, 5*time.Second)
	err := s.Speak(context.Background(), "hello")
	if err == nil {
		t.Fatal("Speak should fail when the helper exits non-zero")
	}
	if !strings.Contains(err.Error(), "no audio device") {
		t.Errorf("error %q should carry the helper's stderr", err)
	}
}

func TestExecSpeaker_Timeout(t *testing.T) {
	script := writeScript(t, "sleep 5\n")

	s := NewExecSpeaker(script, nil, "en", false, 100*time.Millisecond)
	start := time.Now()
	err := s.Speak(context.Background(), "hello")
	if err == nil {
		t.Fatal("Speak should fail on timeout")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error %q should mention the timeout", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Speak did not respect the timeout")
	}
}

func TestNopSpeaker(t *testing.T) {
	s := NewNop()
	if err := s.Speak(context.Background(), "anything"); err != nil {
		t.Errorf("nop Speak returned %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("nop Close returned %v", err)
	}
}
