package db

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"testing"
	"time"
)

// countServer answers count requests on every accepted connection; the
// "slow" collection replies late.
func countServer(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveCounts(conn)
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func serveCounts(conn net.Conn) {
	defer conn.Close()
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		json.Unmarshal(payload, &req)
		count := 2.0
		if req["collection"] == "slow" {
			time.Sleep(200 * time.Millisecond)
			count = 111
		}
		resp, _ := json.Marshal(map[string]any{"ok": true, "data": map[string]any{"count": count}})
		out := make([]byte, 4+len(resp))
		binary.LittleEndian.PutUint32(out, uint32(len(resp)))
		copy(out[4:], resp)
		conn.Write(out)
	}
}

func TestGetReplacesBrokenClient(t *testing.T) {
	host, port := countServer(t)
	pool, err := NewPool(host, port, 1)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	first := pool.Get()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := first.Count(ctx, "slow", nil); err == nil {
		t.Fatal("expected timeout on slow count")
	}

	c := pool.Get()
	if c == first {
		t.Fatal("broken client was handed out again")
	}
	n, err := c.Count(context.Background(), "fast", nil)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v; want 2", n, err)
	}
}
