package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/paxos-council/council/internal/obs/logger"
)

func TestRedactHandler(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)
	r := logger.NewRedactHandler(h)
	l := slog.New(r)

	l.Info("peer contacted", "email", "john.doe@example.com", "password", "secret123")

	out := buf.String()
	if !strings.Contains(out, "[EMAIL]") {
		t.Error("email not redacted")
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Error("password not redacted")
	}
	if strings.Contains(out, "john.doe@example.com") {
		t.Error("original email leaked")
	}
}

func TestSamplingHandler(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)
	s := logger.NewSamplingHandler(h, 0.0001)
	l := slog.New(s)

	l.Info("election: poll tick")
	if buf.Len() > 0 {
		t.Error("log should be dropped by sampling")
	}

	l.Error("bind failed")
	if !strings.Contains(buf.String(), "bind failed") {
		t.Error("error level should bypass sampling")
	}
}

func TestAsyncHandler(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)
	a := logger.NewAsyncHandler(h, 100, true)
	l := slog.New(a)

	start := time.Now()
	l.Info("async message")
	if time.Since(start) > 10*time.Millisecond {
		t.Error("async log took too long")
	}

	a.Shutdown()
	if !strings.Contains(buf.String(), "async message") {
		t.Error("async message not flushed")
	}
}

func TestTraceHandler_AddsNoAttrsWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, nil)
	th := logger.NewTraceHandler(h)
	l := slog.New(th)

	l.Info("no span in context")

	if strings.Contains(buf.String(), "trace_id") {
		t.Error("expected no trace_id attribute without a span in context")
	}
}

func TestTeeHandler_DuplicatesToBothSinks(t *testing.T) {
	var bufA, bufB bytes.Buffer
	tee := logger.NewTeeHandler(slog.NewJSONHandler(&bufA, nil), slog.NewJSONHandler(&bufB, nil))
	l := slog.New(tee)

	l.Info("council member listening")

	if !strings.Contains(bufA.String(), "council member listening") {
		t.Error("first sink did not receive the record")
	}
	if !strings.Contains(bufB.String(), "council member listening") {
		t.Error("second sink did not receive the record")
	}
}
