package gelf

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Hook sends each log entry as a GELF message over UDP.
type Hook struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP hook connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Hook, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Hook{conn: conn, hostname: hostname, service: service}, nil
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire never fails the log call; a message that cannot be encoded is dropped.
func (h *Hook) Fire(entry *logrus.Entry) error {
	msg := map[string]any{
		"version":       "1.1",
		"host":          h.hostname,
		"short_message": entry.Message,
		"timestamp":     float64(entry.Time.UnixNano()) / 1e9,
		"level":         syslogLevel(entry.Level),
		"_service":      h.service,
	}
	if entry.Time.IsZero() {
		msg["timestamp"] = float64(time.Now().UnixNano()) / 1e9
	}
	for k, v := range entry.Data {
		if k == "id" {
			k = "field_id" // _id is reserved by GELF
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		msg["_"+k] = fmt.Sprint(v)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil
	}

	// Fire-and-forget
	h.conn.Write(payload)
	return nil
}

func (h *Hook) Close() error {
	return h.conn.Close()
}

func syslogLevel(l logrus.Level) int {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return 2 // Critical
	case logrus.ErrorLevel:
		return 3
	case logrus.WarnLevel:
		return 4
	case logrus.InfoLevel:
		return 6
	default:
		return 7 // Debug
	}
}
