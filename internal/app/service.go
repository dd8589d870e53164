// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the MQTT subscriber.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	readingqueue "github.com/okian/waterline/internal/adapters/mq/queue"
	"github.com/okian/waterline/internal/adapters/repository"
	"github.com/okian/waterline/internal/domain/classify"
	"github.com/okian/waterline/internal/domain/consumption"
	"github.com/okian/waterline/internal/domain/feature"
	"github.com/okian/waterline/internal/domain/model"
	"github.com/okian/waterline/internal/domain/series"
	"github.com/okian/waterline/internal/domain/smoothing"
	"github.com/okian/waterline/pkg/logger"
	"github.com/okian/waterline/pkg/metrics"
)

// Service wires ingestion, derivation, persistence and inference.
type Service struct {
	mu sync.Mutex

	// Core components
	buffer     *series.Buffer
	store      repository.Store
	queue      readingqueue.Queue
	deriver    *feature.Deriver
	classifier classify.Classifier

	// Configuration
	window    int
	threshold float64
	queueSize int
	dbPath    string
	channels  []string
	loc       *time.Location
	ownsStore bool

	// State
	started    bool
	ingestDone chan struct{}
	now        func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWindow sets the moving-average window over raw volumes.
func WithWindow(window int) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithThreshold sets the consumption gate in milliliters.
func WithThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.threshold = threshold
		}
	}
}

// WithQueueSize bounds the in-memory ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDBPath locates the sqlite historical store.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithChannels lists the channel ids replayed on warm restart.
func WithChannels(channels []string) Option {
	return func(s *Service) {
		s.channels = channels
	}
}

// WithLocation sets the timezone for rollover and bucketing.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithStore injects a historical store, replacing the sqlite default.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClassifier injects a classifier, replacing the rule-based default.
func WithClassifier(c classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithClock injects the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		window:     smoothing.DefaultWindow,
		threshold:  consumption.DefaultThresholdML,
		queueSize:  10_000,
		dbPath:     "waterline.db",
		loc:        time.Local,
		now:        time.Now,
		ingestDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the components, replays today's durable readings into
// the buffer, and launches the ingest loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting waterline service...")

	s.buffer = series.NewBuffer(
		series.WithWindow(s.window),
		series.WithThreshold(s.threshold),
		series.WithLocation(s.loc),
	)

	if s.store == nil {
		store, err := repository.NewSQLiteStore(ctx, s.dbPath, repository.WithLocation(s.loc))
		if err != nil {
			return fmt.Errorf("open historical store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	if s.classifier == nil {
		s.classifier = classify.NewRuleClassifier()
	}

	s.deriver = feature.NewDeriver(s, s.loc)

	s.queue = readingqueue.NewInMemoryQueue(
		readingqueue.WithCapacity(s.queueSize),
	)

	// Prime the buffer with today's already-durable readings so a restart
	// does not open a gap in the derived series. Live messages queue up
	// behind the replay because the ingest loop starts afterwards.
	s.warmRestart(ctx)

	s.ingestDone = make(chan struct{})
	go s.ingestLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "waterline service started",
		logger.Int("window", s.window),
		logger.Float64("threshold_ml", s.threshold),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// warmRestart replays today's raw readings from the store through the
// buffer. Replayed readings are not re-persisted.
func (s *Service) warmRestart(ctx context.Context) {
	today := s.now().In(s.loc)
	for _, channel := range s.channels {
		readings, err := s.store.RawForDate(ctx, channel, today)
		if err != nil {
			s.logger.Warn(ctx, "warm restart fetch failed",
				logger.String("channel", channel),
				logger.Error(err),
			)
			continue
		}
		replayed := 0
		for _, r := range readings {
			if _, err := s.buffer.Record(ctx, channel, r); err != nil {
				s.logger.Warn(ctx, "warm restart replay rejected a reading",
					logger.String("channel", channel),
					logger.Error(err),
				)
				continue
			}
			replayed++
		}
		if replayed > 0 {
			s.logger.Info(ctx, "warm restart replayed readings",
				logger.String("channel", channel),
				logger.Int("count", replayed),
			)
		}
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping waterline service...")

	if s.queue != nil {
		_ = s.queue.Close()
		<-s.ingestDone
	}

	if s.ownsStore && s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "waterline service stopped")
}

// Enqueue submits a reading envelope for asynchronous ingestion.
// Returns false on backpressure; the reading is then lost (at-most-once).
func (s *Service) Enqueue(ctx context.Context, e model.Envelope) bool {
	return s.queue.Enqueue(ctx, e)
}

// ingestLoop drains the queue one reading at a time, serializing all
// buffer mutation.
func (s *Service) ingestLoop(ctx context.Context) {
	defer close(s.ingestDone)

	for e := range s.queue.Dequeue(ctx) {
		s.ingest(ctx, e)
	}
}

// ingest processes a single reading: record under the buffer lock, then
// persist outside it. Persistence failure is a warning; the in-memory
// state stays authoritative for same-session queries.
func (s *Service) ingest(ctx context.Context, e model.Envelope) {
	start := time.Now()
	res, err := s.buffer.Record(ctx, e.ChannelID, e.Reading)
	metrics.RecordRecordLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		reason := "invalid"
		if errors.Is(err, series.ErrStaleReading) {
			reason = "stale"
		}
		metrics.RecordReadingRejected(e.ChannelID, reason)
		s.logger.Warn(ctx, "reading rejected",
			logger.String("channel", e.ChannelID),
			logger.Error(err),
		)
		return
	}

	metrics.RecordReadingReceived(e.ChannelID)
	metrics.UpdateCumulativeConsumption(e.ChannelID, res.Point.CumulativeConsumption)
	metrics.UpdateSeriesLength(e.ChannelID, res.SeriesLen)
	if res.RolledOver {
		metrics.RecordDayRollover(e.ChannelID)
		s.logger.Info(ctx, "day rollover",
			logger.String("channel", e.ChannelID),
			logger.Time("at", e.Reading.Timestamp),
		)
	}

	if err := s.store.AppendRaw(ctx, e.ChannelID, e.Reading); err != nil {
		metrics.RecordPersistError()
		s.logger.Warn(ctx, "raw reading not persisted",
			logger.String("channel", e.ChannelID),
			logger.Error(err),
		)
	} else {
		metrics.RecordPersistWrite()
	}

	if err := s.store.AppendDerived(ctx, e.ChannelID, res.Point); err != nil {
		metrics.RecordPersistError()
		s.logger.Warn(ctx, "derived point not persisted",
			logger.String("channel", e.ChannelID),
			logger.Error(err),
		)
	} else {
		metrics.RecordPersistWrite()
	}

	s.logger.Debug(ctx, "reading processed",
		logger.String("channel", e.ChannelID),
		logger.Float64("raw", res.Point.RawVolume),
		logger.Float64("filtered", res.Point.FilteredVolume),
		logger.Float64("cumulative", res.Point.CumulativeConsumption),
	)
}

// ConsumptionAtOrBefore answers "last cumulative value at or before
// target" for a channel and date. Today's data is served from the buffer
// when it has a matching point; everything else falls through to the
// historical store. No data at all is 0, not an error.
func (s *Service) ConsumptionAtOrBefore(ctx context.Context, channelID string, date, target time.Time) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if v, ok := s.buffer.LatestAtOrBefore(ctx, channelID, date, target); ok {
		metrics.RecordQuery("memory")
		return v, nil
	}

	v, ok, err := s.store.LastDerivedAtOrBefore(ctx, channelID, date, target)
	if err != nil {
		return 0, fmt.Errorf("historical lookup: %w", err)
	}
	if !ok {
		metrics.RecordQuery("none")
		return 0, nil
	}
	metrics.RecordQuery("store")
	return v, nil
}

// PredictInput mirrors the domain inference request shape.
type PredictInput = model.InferenceRequest

// PredictResult mirrors the domain inference result shape.
type PredictResult = model.InferenceResult

// Predict derives the feature vector for the channel at the current
// instant, classifies it, and archives the outcome. Archive failure does
// not fail the already-computed response.
func (s *Service) Predict(ctx context.Context, in PredictInput) (PredictResult, error) {
	now := s.now().In(s.loc)

	fv, err := s.deriver.Derive(ctx, in.ChannelID, now, feature.Inputs{
		BodyWeightKG: in.BodyWeightKG,
		BodyTempC:    in.BodyTempC,
		AmbientTempC: in.AmbientTempC,
		FeedKG:       in.FeedKG,
	})
	if err != nil {
		metrics.RecordPredictionError("derive")
		return PredictResult{}, fmt.Errorf("derive features: %w", err)
	}

	classifyStart := time.Now()
	label, err := s.classifier.Classify(ctx, fv)
	metrics.RecordClassifyLatency(float64(time.Since(classifyStart).Milliseconds()))
	if err != nil {
		metrics.RecordPredictionError("classifier")
		return PredictResult{}, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}

	metrics.RecordPrediction(label.String())

	archive := model.Prediction{
		ID:        uuid.NewString(),
		Timestamp: now,
		Features:  fv,
		Label:     label,
	}
	if err := s.store.ArchivePrediction(ctx, archive); err != nil {
		metrics.RecordArchiveError()
		s.logger.Warn(ctx, "prediction not archived",
			logger.String("channel", in.ChannelID),
			logger.Error(err),
		)
	}

	s.logger.Info(ctx, "prediction served",
		logger.String("channel", in.ChannelID),
		logger.String("label", label.String()),
	)

	return PredictResult{Label: label, Timestamp: now, Features: fv}, nil
}

// Consumption returns the cumulative consumption for a channel at the
// given instant (today's series).
func (s *Service) Consumption(ctx context.Context, channelID string, at time.Time) (float64, error) {
	local := at.In(s.loc)
	return s.ConsumptionAtOrBefore(ctx, channelID, local, local)
}

// Now returns the service's current wall-clock time in its location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// GetStats returns a point-in-time view of service internals.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":  started,
		"timezone": s.loc.String(),
	}
	if !started {
		return stats
	}

	ctx := context.Background()
	channels := s.buffer.Channels(ctx)
	lengths := make(map[string]int, len(channels))
	for _, c := range channels {
		lengths[c] = s.buffer.Len(ctx, c)
	}
	stats["channels"] = channels
	stats["series_length"] = lengths
	stats["queue_length"] = s.queue.Len(ctx)
	return stats
}
