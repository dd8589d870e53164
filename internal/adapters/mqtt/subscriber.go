// Package mqtt subscribes to the telemetry broker and feeds decoded
// volume readings into the ingestion queue.
//
// One message carries one JSON reading, e.g. {"volume": 1250.5}. The
// channel id comes from the topic the message arrived on; the timestamp
// is assigned at arrival in the configured location. Malformed payloads
// and unmapped topics are logged and dropped.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/okian/waterline/internal/domain/model"
	"github.com/okian/waterline/pkg/logger"
	"github.com/okian/waterline/pkg/metrics"
)

// Default subscriber configuration constants.
const (
	defaultClientID       = "waterline"
	defaultQoS            = 0
	defaultConnectTimeout = 10 * time.Second
	disconnectQuiesceMS   = 250
)

// Sink receives decoded readings. Implemented by the ingestion queue.
type Sink interface {
	Enqueue(ctx context.Context, e model.Envelope) bool
}

// payload mirrors the wire shape of one telemetry message.
type payload struct {
	Volume *volumeValue `json:"volume"`
}

// volumeValue accepts a JSON number or a numeric string; sensor firmware
// is inconsistent about which it sends.
type volumeValue float64

func (v *volumeValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse volume: %w", err)
	}
	*v = volumeValue(f)
	return nil
}

// Subscriber bridges the MQTT broker to the ingestion queue.
type Subscriber struct {
	brokerURL string
	username  string
	password  string
	clientID  string
	qos       byte
	timeout   time.Duration

	// topic -> channel id, built from the configured channel -> topic map.
	channelByTopic map[string]string

	sink   Sink
	loc    *time.Location
	client paho.Client
	logger logger.Logger
}

// Option applies a configuration option to the Subscriber.
type Option func(*Subscriber)

// WithCredentials sets the broker username and password.
func WithCredentials(username, password string) Option {
	return func(s *Subscriber) {
		s.username = username
		s.password = password
	}
}

// WithClientID sets the MQTT client identifier.
func WithClientID(id string) Option {
	return func(s *Subscriber) {
		if id != "" {
			s.clientID = id
		}
	}
}

// WithQoS sets the subscription quality of service.
func WithQoS(qos byte) Option {
	return func(s *Subscriber) {
		s.qos = qos
	}
}

// WithLocation sets the timezone stamped onto arriving readings.
func WithLocation(loc *time.Location) Option {
	return func(s *Subscriber) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithConnectTimeout bounds the initial broker connection.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *Subscriber) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSubscriber creates a Subscriber for the given broker and channel
// topic map, delivering readings into sink.
func NewSubscriber(brokerURL string, topics map[string]string, sink Sink, opts ...Option) *Subscriber {
	s := &Subscriber{
		brokerURL:      brokerURL,
		clientID:       defaultClientID,
		qos:            defaultQoS,
		timeout:        defaultConnectTimeout,
		channelByTopic: make(map[string]string, len(topics)),
		sink:           sink,
		loc:            time.Local,
		logger:         logger.Get().Named("mqtt"),
	}
	for channel, topic := range topics {
		s.channelByTopic[topic] = channel
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects to the broker and subscribes to all configured topics.
// The paho client reconnects and resubscribes on its own afterwards.
func (s *Subscriber) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(s.brokerURL).
		SetClientID(s.clientID).
		SetUsername(s.username).
		SetPassword(s.password).
		SetAutoReconnect(true).
		SetConnectTimeout(s.timeout).
		SetOnConnectHandler(func(c paho.Client) {
			s.subscribeAll(ctx, c)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			s.logger.Warn(ctx, "broker connection lost", logger.Error(err))
		})

	s.client = paho.NewClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("%w: timed out after %s", ErrConnect, s.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	s.logger.Info(ctx, "connected to broker",
		logger.String("broker", s.brokerURL),
		logger.Int("topics", len(s.channelByTopic)),
	)
	return nil
}

// subscribeAll runs on every (re)connect.
func (s *Subscriber) subscribeAll(ctx context.Context, c paho.Client) {
	for topic := range s.channelByTopic {
		t := c.Subscribe(topic, s.qos, s.handleMessage)
		topic := topic
		go func() {
			t.Wait()
			if err := t.Error(); err != nil {
				s.logger.Error(ctx, "subscribe failed",
					logger.String("topic", topic),
					logger.Error(err),
				)
			}
		}()
	}
}

// handleMessage decodes one telemetry message and enqueues it.
func (s *Subscriber) handleMessage(_ paho.Client, msg paho.Message) {
	ctx := context.Background()

	channel, ok := s.channelByTopic[msg.Topic()]
	if !ok {
		s.logger.Debug(ctx, "message on unmapped topic", logger.String("topic", msg.Topic()))
		return
	}

	var p payload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil || p.Volume == nil {
		metrics.RecordReadingDropped()
		s.logger.Warn(ctx, "malformed telemetry payload",
			logger.String("channel", channel),
			logger.Error(err),
		)
		return
	}

	e := model.Envelope{
		ChannelID: channel,
		Reading: model.Reading{
			Timestamp: time.Now().In(s.loc),
			RawVolume: float64(*p.Volume),
		},
	}
	if !s.sink.Enqueue(ctx, e) {
		metrics.RecordReadingDropped()
		s.logger.Warn(ctx, "ingestion queue full, reading dropped",
			logger.String("channel", channel),
		)
	}
}

// Stop disconnects from the broker.
func (s *Subscriber) Stop() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(disconnectQuiesceMS)
	}
}
