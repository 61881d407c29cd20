package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prasmono/adb-to-local-copier/pkg/models"
)

func TestInfoSuppressedWhenQuiet(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithWriters(&out, &errOut, true)

	logger.Info("syncing %d remote roots", 3)

	if out.Len() != 0 {
		t.Errorf("quiet Info wrote %q", out.String())
	}
}

func TestErrorAlwaysReachesErrorStream(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithWriters(&out, &errOut, true)

	logger.Error("pull %s: device offline", "/sdcard/x")

	if got := errOut.String(); got != "ERROR: pull /sdcard/x: device offline\n" {
		t.Errorf("error stream = %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("error leaked to the output stream: %q", out.String())
	}
}

func TestRootSummaryQuietPrintsOnlyFailures(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithWriters(&out, &errOut, true)

	logger.RootSummary("/sdcard/DCIM", &models.RunSummary{Successes: 2, Elapsed: time.Second})
	if out.Len() != 0 {
		t.Errorf("quiet summary without errors wrote %q", out.String())
	}

	logger.RootSummary("/sdcard/DCIM", &models.RunSummary{Successes: 1, Errors: 2, Elapsed: time.Second})
	if !strings.Contains(out.String(), "1 successes and 2 errors") {
		t.Errorf("summary with errors suppressed: %q", out.String())
	}
}
