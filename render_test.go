package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/alnah/go-html2pdf/internal/hints"
)

// Notes:
// - RodSession needs a real Chrome; it is covered by the integration suite.
//   These tests cover the pure helpers around it.

func TestPrintOptions_A4With20mmMargins(t *testing.T) {
	t.Parallel()

	opts := printOptions()

	approx := func(name string, got *float64, want float64) {
		t.Helper()
		if got == nil {
			t.Fatalf("%s is nil", name)
		}
		if math.Abs(*got-want) > 0.001 {
			t.Errorf("%s = %.4f, want %.4f", name, *got, want)
		}
	}

	approx("PaperWidth", opts.PaperWidth, 8.27)
	approx("PaperHeight", opts.PaperHeight, 11.69)
	approx("MarginTop", opts.MarginTop, 0.7874)
	approx("MarginBottom", opts.MarginBottom, 0.7874)
	approx("MarginLeft", opts.MarginLeft, 0.7874)
	approx("MarginRight", opts.MarginRight, 0.7874)

	if !opts.PrintBackground {
		t.Error("PrintBackground = false, want true")
	}
	if opts.Landscape {
		t.Error("Landscape = true, want portrait")
	}
}

func TestNavigationError(t *testing.T) {
	t.Parallel()

	const url = "http://127.0.0.1:3000/a.html"

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		err := navigationError(context.Background(), url, fmt.Errorf("wait: %w", context.DeadlineExceeded))
		if !errors.Is(err, ErrNavigation) {
			t.Fatalf("error = %v, want ErrNavigation", err)
		}
		if !strings.Contains(err.Error(), "network idle") {
			t.Errorf("error %q should mention the idle wait", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		err := navigationError(context.Background(), url, errors.New("net::ERR_CONNECTION_REFUSED"))
		if !errors.Is(err, ErrNavigation) {
			t.Fatalf("error = %v, want ErrNavigation", err)
		}
		if !strings.Contains(err.Error(), url) {
			t.Errorf("error %q should name the URL", err)
		}
	})

	t.Run("caller canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := navigationError(ctx, url, errors.New("context canceled"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if errors.Is(err, ErrNavigation) {
			t.Error("cancellation must not be reported as a navigation failure")
		}
	})
}

// needsNoSandbox reads the environment, so these subtests are not parallel.
func TestNeedsNoSandbox(t *testing.T) {
	orig := hints.IsInContainer
	t.Cleanup(func() { hints.IsInContainer = orig })

	resetEnv := func(t *testing.T) {
		for _, k := range []string{"ROD_NO_SANDBOX", "CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
			t.Setenv(k, "")
		}
	}

	t.Run("plain host", func(t *testing.T) {
		resetEnv(t)
		hints.IsInContainer = func() bool { return false }
		if needsNoSandbox() {
			t.Error("sandbox should stay on outside CI and containers")
		}
	})

	t.Run("explicit env", func(t *testing.T) {
		resetEnv(t)
		hints.IsInContainer = func() bool { return false }
		t.Setenv("ROD_NO_SANDBOX", "1")
		if !needsNoSandbox() {
			t.Error("ROD_NO_SANDBOX=1 should disable the sandbox")
		}
	})

	t.Run("ci", func(t *testing.T) {
		resetEnv(t)
		hints.IsInContainer = func() bool { return false }
		t.Setenv("CI", "true")
		if !needsNoSandbox() {
			t.Error("CI should disable the sandbox")
		}
	})

	t.Run("container", func(t *testing.T) {
		resetEnv(t)
		hints.IsInContainer = func() bool { return true }
		if !needsNoSandbox() {
			t.Error("containers should disable the sandbox")
		}
	})
}

func TestOpenSession_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := OpenSession(ctx, BrowserConfig{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
