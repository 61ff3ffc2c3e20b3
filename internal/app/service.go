// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/winrate/internal/adapters/history"
	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/internal/domain/prediction"
	"github.com/okian/winrate/internal/domain/types"
	"github.com/okian/winrate/pkg/logger"
	"github.com/okian/winrate/pkg/metrics"
)

// Service loads a player's history and predicts the next-match win probability.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader    match.Loader
	predictor prediction.Predictor

	// Configuration
	window          int
	historySettings history.Settings
	loaderOpts      []history.Option

	// State
	started     bool
	predictions atomic.Int64
	failures    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoader injects the history loader. When unset, Start builds one
// from the history settings.
func WithLoader(l match.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithPredictor injects the predictor. When unset, Start builds a
// FormulaPredictor with the configured window.
func WithPredictor(p prediction.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithRecentWindow sets the recent window used by the default predictor.
func WithRecentWindow(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.window = k
		}
	}
}

// WithHistorySettings selects the loader Start builds.
func WithHistorySettings(settings history.Settings, opts ...history.Option) Option {
	return func(s *Service) {
		s.historySettings = settings
		s.loaderOpts = opts
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		window:          features.DefaultRecentWindow,
		historySettings: history.Settings{Source: history.SourceFile, Dir: "."},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the loader and predictor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.loader == nil {
		opts := append([]history.Option{history.WithLogger(s.logger)}, s.loaderOpts...)
		loader, err := history.New(s.historySettings, opts...)
		if err != nil {
			return fmt.Errorf("build history loader: %w", err)
		}
		s.loader = loader
	}
	if s.predictor == nil {
		s.predictor = prediction.NewFormulaPredictor(prediction.WithRecentWindow(s.window))
	}

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.String("history_source", s.historySettings.Source),
		logger.Int("window", s.windowOf(s.predictor)),
	)
	return nil
}

// Stop releases the loader.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.loader.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing history loader failed", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Predict loads the player's history and returns the predicted win probability.
func (s *Service) Predict(ctx context.Context, playerID string) (types.Prediction, error) {
	s.mu.RLock()
	started, loader, predictor := s.started, s.loader, s.predictor
	s.mu.RUnlock()
	if !started {
		return types.Prediction{}, ErrNotStarted
	}

	start := time.Now()
	log := s.logger.With(logger.String("player_id", playerID))

	h, err := loader.Load(ctx, playerID)
	if err != nil {
		kind := ErrorKind(err)
		metrics.RecordHistoryLoadError(sourceName(loader), kind)
		return types.Prediction{}, s.fail(ctx, log, kind, fmt.Errorf("load history: %w", err))
	}
	metrics.RecordHistoryLoad(sourceName(loader), h.Len(), elapsedMs(start))

	res, err := predictor.Predict(ctx, h)
	if err != nil {
		return types.Prediction{}, s.fail(ctx, log, ErrorKind(err), fmt.Errorf("predict: %w", err))
	}

	latencyMs := elapsedMs(start)
	metrics.RecordPrediction(res.Probability, latencyMs)
	s.predictions.Add(1)

	window := s.windowOf(predictor)
	log.Info(ctx, "prediction computed",
		logger.Int("matches", h.Len()),
		logger.Float64("probability", res.Probability),
		logger.Float64("raw_score", res.Breakdown.RawScore),
		logger.Float64("latency_ms", latencyMs),
	)
	return types.NewPrediction(playerID, h.Len(), window, res), nil
}

func (s *Service) fail(ctx context.Context, log logger.Logger, kind string, err error) error {
	s.failures.Add(1)
	metrics.RecordPredictionError(kind)
	metrics.RecordErrorByComponent("service", kind)
	switch kind {
	case KindInternal, KindSourceUnavailable, KindMalformedSource:
		log.Error(ctx, "prediction failed", logger.String("kind", kind), logger.Error(err))
	default:
		log.Warn(ctx, "prediction failed", logger.String("kind", kind), logger.Error(err))
	}
	return err
}

// windowOf reports the window the predictor actually uses.
func (s *Service) windowOf(p prediction.Predictor) int {
	if fp, ok := p.(*prediction.FormulaPredictor); ok {
		return fp.Window()
	}
	return s.window
}

// elapsedMs keeps sub-millisecond resolution for the latency histograms.
func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func sourceName(l match.Loader) string {
	switch l.(type) {
	case *history.FileLoader:
		return history.SourceFile
	case *history.HTTPLoader:
		return history.SourceHTTP
	case *history.MemoryLoader:
		return history.SourceMemory
	default:
		return "custom"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"window":      s.windowOf(s.predictor),
		"predictions": s.predictions.Load(),
		"failures":    s.failures.Load(),
	}
	if s.loader != nil {
		stats["historySource"] = sourceName(s.loader)
	}
	return stats
}
