package gelf

import (
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestHookSendsGELF(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	hook, err := New(pc.LocalAddr().String(), "formcraft")
	if err != nil {
		t.Fatalf("new hook: %v", err)
	}
	defer hook.Close()

	entry := &logrus.Entry{
		Level:   logrus.WarnLevel,
		Message: "submission flagged",
		Time:    time.Now(),
		Data:    logrus.Fields{"formId": "f1", "id": "s9", "error": errors.New("boom")},
	}
	if err := hook.Fire(entry); err != nil {
		t.Fatalf("fire: %v", err)
	}

	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(buf[:n], &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg["short_message"] != "submission flagged" {
		t.Fatalf("short_message = %v", msg["short_message"])
	}
	if msg["level"] != 4.0 {
		t.Fatalf("level = %v", msg["level"])
	}
	if msg["_formId"] != "f1" || msg["_field_id"] != "s9" || msg["_error"] != "boom" {
		t.Fatalf("fields not forwarded: %v", msg)
	}
	if msg["_service"] != "formcraft" {
		t.Fatalf("service = %v", msg["_service"])
	}
}
