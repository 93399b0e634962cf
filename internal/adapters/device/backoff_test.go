package device

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff_Doubles(t *testing.T) {
	b := newBackoff(time.Millisecond, 4*time.Millisecond)
	want := []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 4 * time.Millisecond}

	for i, w := range want {
		if err := b.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
		if b.Current() != w {
			t.Errorf("after wait %d Current() = %v, want %v", i, b.Current(), w)
		}
	}

	b.Reset()
	if b.Current() != time.Millisecond {
		t.Errorf("after Reset Current() = %v, want 1ms", b.Current())
	}
}

func TestBackoff_WaitHonoursContext(t *testing.T) {
	b := newBackoff(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
}
