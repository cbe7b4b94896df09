package antibot

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/shubham-ralli/form-b/internal/models"
)

func has(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func TestInspectClean(t *testing.T) {
	c := New(NewMemoryCounter())
	flags, data := c.Inspect(context.Background(), "f1", "10.0.0.1", "Mozilla/5.0", map[string]any{
		"name":        "Ada",
		HoneypotField: "",
	})
	if len(flags) != 0 {
		t.Fatalf("flags = %v", flags)
	}
	if _, ok := data[HoneypotField]; ok {
		t.Fatal("honeypot field not stripped")
	}
	if data["name"] != "Ada" {
		t.Fatalf("data = %v", data)
	}
}

func TestInspectFlags(t *testing.T) {
	c := New(nil)
	flags, _ := c.Inspect(context.Background(), "f1", "", "", map[string]any{HoneypotField: "http://spam"})
	for _, want := range []string{models.FlagHoneypot, models.FlagNoUserAgent, models.FlagEmptyData} {
		if !has(flags, want) {
			t.Fatalf("missing %s in %v", want, flags)
		}
	}
}

func TestRapidRepeat(t *testing.T) {
	c := New(NewMemoryCounter())
	var flags []string
	for i := 0; i <= defaultBurst; i++ {
		flags, _ = c.Inspect(context.Background(), "f1", "10.0.0.2", "UA", map[string]any{"a": "b"})
	}
	if !has(flags, models.FlagRapidRepeat) {
		t.Fatalf("flags = %v", flags)
	}
	flags, _ = c.Inspect(context.Background(), "f2", "10.0.0.2", "UA", map[string]any{"a": "b"})
	if has(flags, models.FlagRapidRepeat) {
		t.Fatal("counter leaked across forms")
	}
}

func TestMemoryCounterWindow(t *testing.T) {
	m := NewMemoryCounter()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()
	m.Incr(ctx, "k", time.Minute)
	if n, _ := m.Incr(ctx, "k", time.Minute); n != 2 {
		t.Fatalf("n = %d", n)
	}
	now = now.Add(time.Minute)
	if n, _ := m.Incr(ctx, "k", time.Minute); n != 1 {
		t.Fatalf("after window n = %d", n)
	}
}

type failing struct{}

func (failing) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("down")
}

func TestCounterFailureIsIgnored(t *testing.T) {
	flags, _ := New(failing{}).Inspect(context.Background(), "f", "ip", "UA", map[string]any{"a": 1.0})
	if len(flags) != 0 {
		t.Fatalf("flags = %v", flags)
	}
}

func TestRedisCounterSetsWindow(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r := NewRedisCounter(addr)
	defer r.Close()
	ctx := context.Background()
	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	key := "formcraft:test:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	defer r.client.Del(ctx, key)
	for want := int64(1); want <= 3; want++ {
		n, err := r.Incr(ctx, key, time.Minute)
		if err != nil || n != want {
			t.Fatalf("incr = %d, %v; want %d", n, err, want)
		}
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %v, %v", ttl, err)
	}
}
