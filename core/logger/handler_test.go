package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"log/slog"
)

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatKV,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "store")
	LogEvent(ctx, log, slog.LevelInfo, "catalog.save",
		slog.String("status", "ok"),
		slog.String("category", "ebooks"),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	if len(tokens) < 6 {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	expected := []string{"ts=", "level=INFO", "component=store", "event=catalog.save", "status=ok", "rid=rid-123"}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONDomainKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   formatJSON,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	ctx := WithRID(Background(), "77:5:3")

	log := slog.New(handler).With("component", "payments")
	LogEvent(ctx, log, slog.LevelInfo, "intent.create",
		slog.String("item_key", "bk1"),
		slog.Float64("amount_btc", 0.0001),
	)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		t.Fatalf("invalid json line %q: %v", line, err)
	}
	if fields["event"] != "intent.create" {
		t.Fatalf("event = %v", fields["event"])
	}
	if fields["item_key"] != "bk1" {
		t.Fatalf("item_key = %v", fields["item_key"])
	}
	// numeric rid segments are compacted to base36
	if fields["rid"] != "25.5.3" {
		t.Fatalf("rid = %v", fields["rid"])
	}
	if fields["rid_full"] != "77:5:3" {
		t.Fatalf("rid_full = %v", fields["rid_full"])
	}
}

func TestCompactRIDFallback(t *testing.T) {
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("unexpected compaction: %s", got)
	}
	if got := CompactRID("10:10:10"); got != "a.a.a" {
		t.Fatalf("compact = %s", got)
	}
}
