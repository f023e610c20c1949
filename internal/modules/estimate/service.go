// README: Estimate orchestration: validate, quota, prompt, acquire, recover, normalise, cross-check.
package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"ecotravel/internal/ai"
	"ecotravel/internal/modules/aiusage"
)

// routeTolerance is the relative gap between model and road distance that earns a warning.
const routeTolerance = 0.25

// Quota deducts one AI estimate from a caller's allowance.
type Quota interface {
	UseToken(ctx context.Context, uid string) error
}

// DistanceChecker returns a road distance used to sanity-check the model's estimate.
type DistanceChecker interface {
	RoadDistanceKm(ctx context.Context, origin, destination string) (float64, error)
}

// Observer receives recovery and request outcomes.
type Observer interface {
	ObserveRecovery(outcome string)
	ObserveEstimate(result string)
}

type Service struct {
	acquirer  *ai.Acquirer
	logger    *zap.Logger
	quota     Quota
	distances DistanceChecker
	observer  Observer
}

type Option func(*Service)

func WithQuota(q Quota) Option {
	return func(s *Service) { s.quota = q }
}

func WithDistanceChecker(d DistanceChecker) Option {
	return func(s *Service) { s.distances = d }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates the estimation service. A nil acquirer means no API key was
// configured; every call then fails with ai.ErrMissingAPIKey.
func NewService(acquirer *ai.Acquirer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{acquirer: acquirer, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether the service can reach an AI provider.
func (s *Service) Configured() bool {
	return s.acquirer != nil
}

// Estimate runs the full pipeline for one trip on behalf of caller uid.
func (s *Service) Estimate(ctx context.Context, uid string, req TripRequest) (*Result, error) {
	res, err := s.estimate(ctx, uid, req)
	if err != nil {
		s.observeEstimate(resultLabel(err))
		return nil, err
	}
	s.observeEstimate("ok")
	return res, nil
}

func (s *Service) estimate(ctx context.Context, uid string, req TripRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.acquirer == nil {
		return nil, ai.ErrMissingAPIKey
	}
	if s.quota != nil {
		if err := s.quota.UseToken(ctx, uid); err != nil {
			return nil, err
		}
	}

	prompt := ai.BuildPrompt(req.Origin, req.Destination, req.Travelers)
	acq, err := s.acquirer.Acquire(ctx, prompt)
	if err != nil {
		return nil, err
	}

	doc, err := ai.RepairJSON(acq.Text)
	if err != nil {
		s.observeRecovery("malformed")
		s.logger.Warn("unrecoverable model output", zap.String("model", acq.Model), zap.Error(err))
		return nil, err
	}
	est, err := ai.DecodeEstimate(acq.Text, doc)
	if err != nil {
		s.observeRecovery("malformed")
		s.logger.Warn("undecodable model output", zap.String("model", acq.Model), zap.Error(err))
		return nil, err
	}
	if json.Valid([]byte(strings.TrimSpace(acq.Text))) {
		s.observeRecovery("clean")
	} else {
		s.observeRecovery("repaired")
	}

	res := &Result{
		Estimate: est,
		Model:    acq.Model,
		Attempts: acq.Attempts,
		Warnings: schemaWarnings(doc),
	}
	normalize(res)
	s.crossCheckRoute(ctx, req, res)

	s.logger.Info("estimate ready",
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.Int("travelers", req.Travelers),
		zap.String("model", acq.Model),
		zap.Int("attempts", acq.Attempts),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// normalize fills the derived Result fields. Inconsistent model output only adds warnings.
func normalize(res *Result) {
	est := res.Estimate

	if est.CarVsTrainSavings != nil {
		res.Savings = *est.CarVsTrainSavings
	} else {
		res.Savings = est.Emissions.Car - est.Emissions.Train
	}

	if m, ok := ai.ParseMode(est.Recommendation); ok {
		res.Recommended = m
	} else if est.Recommendation != "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unrecognised recommendation %q", est.Recommendation))
	}

	if est.Emissions.Car < est.Emissions.Train {
		res.Warnings = append(res.Warnings, "car emissions are lower than train emissions")
	}
}

func (s *Service) crossCheckRoute(ctx context.Context, req TripRequest, res *Result) {
	if s.distances == nil {
		return
	}
	km, err := s.distances.RoadDistanceKm(ctx, req.Origin, req.Destination)
	if err != nil {
		s.logger.Info("road distance unavailable", zap.Error(err))
		return
	}
	res.RouteDistanceKm = &km

	model := res.Estimate.DistanceKm
	if model > 0 && km > 0 && math.Abs(model-km)/km > routeTolerance {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("estimated distance %.0f km differs from road distance %.0f km", model, km))
	}
}

// Models returns the ranked, generation-capable models for diagnostics.
func (s *Service) Models(ctx context.Context) ([]ai.ModelCandidate, error) {
	if s.acquirer == nil {
		return nil, ai.ErrMissingAPIKey
	}
	return s.acquirer.Candidates(ctx)
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		return "insufficient_tokens"
	}
	if kind := ai.KindOf(err); kind != ai.KindUnknown {
		return kind.String()
	}
	return "error"
}

func (s *Service) observeRecovery(outcome string) {
	if s.observer != nil {
		s.observer.ObserveRecovery(outcome)
	}
}

func (s *Service) observeEstimate(result string) {
	if s.observer != nil {
		s.observer.ObserveEstimate(result)
	}
}
