package timeouts_test

import (
	"testing"
	"time"

	"github.com/ovibase/ovibase/internal/app/system/timeouts"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second, SMS: 3 * time.Second})

	if got := timeouts.Short(); got != 7*time.Second {
		t.Errorf("Short: got %v", got)
	}
	if got := timeouts.SMS(); got != 3*time.Second {
		t.Errorf("SMS: got %v", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium should keep default, got %v", got)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Minute})
	timeouts.Reset()
	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("Ping after Reset: got %v", got)
	}
}
