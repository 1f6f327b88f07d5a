package notify

import (
	"context"
	"errors"
	"testing"
)

type stubSink struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return s.typ }
func (s *stubSink) Publish(context.Context, ChangeEvent) error {
	s.calls++
	return s.err
}

type closingSink struct {
	stubSink
}

func (c *closingSink) Close() error {
	c.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubSink{id: "ok", typ: "http"}
	bad := &stubSink{id: "bad", typ: "http", err: errors.New("failed")}
	fanout := NewFanout([]Sink{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil sinks to be dropped, size=%d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), NewChangeEvent(OpCreate, "http://db:8000", "k1", nil))
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("every sink should be called once, got ok=%d bad=%d", ok.calls, bad.calls)
	}
}

func TestFanoutCloseClosesResourcefulSinks(t *testing.T) {
	c := &closingSink{stubSink{id: "ps", typ: TypePubSub}}
	fanout := NewFanout([]Sink{&stubSink{id: "h"}, c})
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c.closed {
		t.Fatalf("closer sink was not closed")
	}
}

func TestNilFanoutIsInert(t *testing.T) {
	var f *Fanout
	if n, err := f.Publish(context.Background(), ChangeEvent{}); n != 0 || err != nil {
		t.Fatalf("nil fanout publish = %d, %v", n, err)
	}
	if f.Size() != 0 || f.Close() != nil {
		t.Fatalf("nil fanout should be empty")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	sinks, err := BuildAll(context.Background(), reg, []SinkConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPSinkConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(sinks) != 1 {
		t.Fatalf("expected 1 sink, got %d", len(sinks))
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []SinkConfig{{ID: "x", Type: "kafka"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}
