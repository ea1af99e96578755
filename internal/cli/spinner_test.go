package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, message string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, message)
	s.out = &buf
	return s, &buf
}

func TestSpinnerDrawsMessageAndStatus(t *testing.T) {
	calls := 0
	s, buf := quietSpinner(context.Background(), "Searching")
	s.withStatus(func() string {
		calls++
		return "3 expanded"
	})
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Searching") {
		t.Errorf("output %q does not contain the message", out)
	}
	if !strings.Contains(out, "3 expanded") {
		t.Errorf("output %q does not contain the status", out)
	}
	if calls == 0 {
		t.Error("status function was never called")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s, _ := quietSpinner(ctx, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(2 * spinnerInterval)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopClearsLine(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Rendering")
	s.Start()
	time.Sleep(2 * spinnerInterval)
	s.Stop()

	if !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("output should end with a cleared line, got %q", buf.String())
	}
}

func TestNewSpinnerDefaultsToStderr(t *testing.T) {
	s := newSpinner("Test")
	if s.out == nil {
		t.Fatal("spinner has no output")
	}
	if s.Cancelled() {
		t.Error("new spinner should not be cancelled")
	}
}
