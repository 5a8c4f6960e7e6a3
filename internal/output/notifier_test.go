package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestNotifier_RoutesBySeverity(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p := NewPrinterWithOptions(PrinterOptions{ColorMode: ColorNever, Out: &stdout, Err: &stderr})
	n := NewNotifier(p)

	n.Info("Signed in", "")
	n.Warn("Session expired", "Please log in again")
	n.Error("Server error", "100% broken")

	if got := stdout.String(); got != "Signed in\n" {
		t.Errorf("unexpected stdout: %q", got)
	}
	errOut := stderr.String()
	if !strings.Contains(errOut, "[WARN] Session expired: Please log in again") {
		t.Errorf("missing warning in stderr: %q", errOut)
	}
	if !strings.Contains(errOut, "[ERROR] Server error: 100% broken") {
		t.Errorf("missing error in stderr: %q", errOut)
	}
}

func TestNotifier_ErrorsSurviveQuiet(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p := NewPrinterWithOptions(PrinterOptions{ColorMode: ColorNever, Quiet: true, Out: &stdout, Err: &stderr})
	n := NewNotifier(p)

	n.Warn("hidden", "")
	n.Error("shown", "")

	if strings.Contains(stderr.String(), "hidden") {
		t.Error("warnings should be suppressed in quiet mode")
	}
	if !strings.Contains(stderr.String(), "shown") {
		t.Error("errors should not be suppressed in quiet mode")
	}
}
