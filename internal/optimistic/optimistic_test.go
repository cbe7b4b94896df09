package optimistic

import (
	"context"
	"errors"
	"testing"
)

func TestDoKeepsChangeOnSuccess(t *testing.T) {
	v := 1
	err := Do(context.Background(), func() { v = 2 }, func(context.Context) error { return nil }, func() { v = 1 })
	if err != nil || v != 2 {
		t.Fatalf("v = %d, err = %v", v, err)
	}
}

func TestDoRevertsOnFailure(t *testing.T) {
	v := 1
	seen := 0
	boom := errors.New("boom")
	err := Do(context.Background(), func() { v = 2 }, func(context.Context) error {
		seen = v
		return boom
	}, func() { v = 1 })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if seen != 2 {
		t.Fatalf("attempt saw %d, want the applied value", seen)
	}
	if v != 1 {
		t.Fatalf("v = %d after revert", v)
	}
}

func TestSwap(t *testing.T) {
	active := true
	s := Swap[bool]{Get: func() bool { return active }, Set: func(b bool) { active = b }}

	if err := s.To(context.Background(), false, func(context.Context) error { return errors.New("down") }); err == nil {
		t.Fatal("expected error")
	}
	if !active {
		t.Fatal("value not restored")
	}
	if err := s.To(context.Background(), false, func(context.Context) error { return nil }); err != nil || active {
		t.Fatalf("active = %v, err = %v", active, err)
	}
}
