package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/okian/waterline/internal/domain/model"
	"github.com/okian/waterline/pkg/logger"
)

type captureSink struct {
	envelopes []model.Envelope
	full      bool
}

func (s *captureSink) Enqueue(_ context.Context, e model.Envelope) bool {
	if s.full {
		return false
	}
	s.envelopes = append(s.envelopes, e)
	return true
}

// stubMessage implements the paho message interface for handler tests.
type stubMessage struct {
	topic   string
	payload []byte
}

func (m *stubMessage) Duplicate() bool   { return false }
func (m *stubMessage) Qos() byte         { return 0 }
func (m *stubMessage) Retained() bool    { return false }
func (m *stubMessage) Topic() string     { return m.topic }
func (m *stubMessage) MessageID() uint16 { return 0 }
func (m *stubMessage) Payload() []byte   { return m.payload }
func (m *stubMessage) Ack()              {}

func newTestSubscriber(t *testing.T, sink Sink) *Subscriber {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	return NewSubscriber(
		"tcp://broker.test:1883",
		map[string]string{"trough1": "farm/cattle/water1"},
		sink,
		WithLocation(time.UTC),
		WithClientID("waterline-test"),
	)
}

func TestHandleMessageDecodesVolume(t *testing.T) {
	sink := &captureSink{}
	s := newTestSubscriber(t, sink)

	s.handleMessage(nil, &stubMessage{
		topic:   "farm/cattle/water1",
		payload: []byte(`{"volume": 1250.5}`),
	})

	if len(sink.envelopes) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(sink.envelopes))
	}
	e := sink.envelopes[0]
	if e.ChannelID != "trough1" {
		t.Errorf("expected channel trough1, got %q", e.ChannelID)
	}
	if e.Reading.RawVolume != 1250.5 {
		t.Errorf("expected volume 1250.5, got %v", e.Reading.RawVolume)
	}
	if e.Reading.Timestamp.IsZero() {
		t.Error("expected an arrival timestamp to be assigned")
	}
}

func TestHandleMessageAcceptsNumericStrings(t *testing.T) {
	sink := &captureSink{}
	s := newTestSubscriber(t, sink)

	s.handleMessage(nil, &stubMessage{
		topic:   "farm/cattle/water1",
		payload: []byte(`{"volume": "850.25"}`),
	})

	if len(sink.envelopes) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(sink.envelopes))
	}
	if got := sink.envelopes[0].Reading.RawVolume; got != 850.25 {
		t.Errorf("expected volume 850.25, got %v", got)
	}
}

func TestHandleMessageDropsMalformedPayloads(t *testing.T) {
	sink := &captureSink{}
	s := newTestSubscriber(t, sink)

	for _, payload := range []string{
		`not json`,
		`{}`,
		`{"volume": "plenty"}`,
		`{"volume": null}`,
	} {
		s.handleMessage(nil, &stubMessage{
			topic:   "farm/cattle/water1",
			payload: []byte(payload),
		})
	}

	if len(sink.envelopes) != 0 {
		t.Errorf("expected malformed payloads to be dropped, got %d envelopes", len(sink.envelopes))
	}
}

func TestHandleMessageIgnoresUnmappedTopics(t *testing.T) {
	sink := &captureSink{}
	s := newTestSubscriber(t, sink)

	s.handleMessage(nil, &stubMessage{
		topic:   "farm/cattle/unknown",
		payload: []byte(`{"volume": 100}`),
	})

	if len(sink.envelopes) != 0 {
		t.Errorf("expected unmapped topic to be ignored, got %d envelopes", len(sink.envelopes))
	}
}

func TestHandleMessageToleratesFullQueue(t *testing.T) {
	sink := &captureSink{full: true}
	s := newTestSubscriber(t, sink)

	// Must not panic or block when the queue rejects the reading.
	s.handleMessage(nil, &stubMessage{
		topic:   "farm/cattle/water1",
		payload: []byte(`{"volume": 100}`),
	})
}
