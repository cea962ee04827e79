package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogWritesOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(false)
	SetOutput(&buf)

	Log("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output while disabled, got %q", buf.String())
	}

	SetEnabled(true)
	defer SetEnabled(false)
	Log("visible %d", 2)
	LogIf(false, "skipped")
	Section("focus")
	LogTiming("scatter", 1500*time.Microsecond)

	out := buf.String()
	if !strings.Contains(out, "visible 2") {
		t.Errorf("expected message in output, got %q", out)
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("LogIf(false) should not write, got %q", out)
	}
	if !strings.Contains(out, "scatter took 1.5ms") {
		t.Errorf("expected timing line, got %q", out)
	}
	if !strings.Contains(out, "=== focus ===") {
		t.Errorf("expected section header, got %q", out)
	}
}
