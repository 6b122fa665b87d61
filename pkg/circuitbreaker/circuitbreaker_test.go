package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})

	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("attempt %d: got %v, want errBoom", i, err)
		}
	}

	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want StateOpen", got)
	}
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("got %v, want ErrOpen", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})

	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errBoom })

	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("state = %v, want StateClosed after interleaved success", got)
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    1,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 3,
	})

	_ = cb.Execute(func() error { return errBoom })
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want StateOpen", got)
	}

	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("half-open attempt %d: %v", i, err)
		}
	}
	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("state = %v, want StateClosed after recovery", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{
		FailureThreshold:    1,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 3,
	})

	_ = cb.Execute(func() error { return errBoom })
	time.Sleep(20 * time.Millisecond)

	_ = cb.Execute(func() error { return errBoom })
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want StateOpen after half-open failure", got)
	}
}

func TestReset(t *testing.T) {
	cb := New(DefaultConfig())
	for i := 0; i < DefaultConfig().FailureThreshold; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want StateOpen", got)
	}

	cb.Reset()
	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("state = %v, want StateClosed after reset", got)
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
}
