// README: Multi-model acquisition: ranked candidates, full/short names, fall through on quota and 404.
package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DefaultMaxCandidates bounds how many ranked models one request may try.
const DefaultMaxCandidates = 8

// Recorder receives pipeline outcomes for metrics. A nil Recorder is ignored.
type Recorder interface {
	ObserveAttempt(outcome string)
	ObserveAcquisition(outcome string)
}

// Acquisition is a successful Acquire result.
type Acquisition struct {
	Text string
	// Model is the identifier the successful call was made with.
	Model string
	// Attempts counts generation calls, including the successful one.
	Attempts int
}

// Acquirer turns a prompt into raw model text by walking the ranked model list.
type Acquirer struct {
	provider      Provider
	logger        *zap.Logger
	recorder      Recorder
	maxCandidates int
	genConfig     GenerationConfig
}

type AcquirerOption func(*Acquirer)

func WithMaxCandidates(n int) AcquirerOption {
	return func(a *Acquirer) {
		if n > 0 {
			a.maxCandidates = n
		}
	}
}

func WithRecorder(r Recorder) AcquirerOption {
	return func(a *Acquirer) { a.recorder = r }
}

func WithGenerationConfig(cfg GenerationConfig) AcquirerOption {
	return func(a *Acquirer) { a.genConfig = cfg }
}

// NewAcquirer creates an Acquirer. logger may be nil.
func NewAcquirer(provider Provider, logger *zap.Logger, opts ...AcquirerOption) *Acquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Acquirer{
		provider:      provider,
		logger:        logger,
		maxCandidates: DefaultMaxCandidates,
		genConfig:     DefaultGenerationConfig,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Candidates lists and ranks the provider's generation-capable models.
func (a *Acquirer) Candidates(ctx context.Context) ([]ModelCandidate, error) {
	names, err := a.provider.ListModels(ctx)
	if err != nil {
		return nil, &AcquisitionError{Kind: KindListing, Last: err}
	}
	if len(names) == 0 {
		return nil, &AcquisitionError{Kind: KindListing, Last: errors.New("no models support content generation for this API key")}
	}
	return RankModels(names), nil
}

// Acquire returns the first successful generation for prompt.
// Failures are *AcquisitionError with KindListing or KindExhausted.
func (a *Acquirer) Acquire(ctx context.Context, prompt string) (Acquisition, error) {
	candidates, err := a.Candidates(ctx)
	if err != nil {
		a.observeAcquisition(KindListing.String())
		a.logger.Error("model listing failed", zap.Error(err))
		return Acquisition{}, err
	}
	if len(candidates) > a.maxCandidates {
		candidates = candidates[:a.maxCandidates]
	}

	var lastErr error
	attempts := 0

candidates:
	for _, c := range candidates {
		for _, name := range namingVariants(c) {
			attempts++
			text, err := a.provider.Generate(ctx, name, prompt, a.genConfig)
			if err == nil {
				a.observeAttempt("success")
				a.observeAcquisition("success")
				a.logger.Info("model responded",
					zap.String("model", name),
					zap.Int("attempts", attempts),
				)
				return Acquisition{Text: text, Model: name, Attempts: attempts}, nil
			}

			kind := KindOf(err)
			a.observeAttempt(kind.String())
			switch kind {
			case KindModelNotFound:
				a.logger.Debug("model name not found, trying alternative", zap.String("model", name))
				continue
			case KindQuotaExceeded:
				lastErr = err
				a.logger.Warn("model quota exhausted, falling through", zap.String("model", name), zap.Error(err))
				continue
			default:
				lastErr = err
				a.logger.Warn("model call failed, trying next candidate", zap.String("model", name), zap.Error(err))
				if ctx.Err() != nil {
					break candidates
				}
				continue candidates
			}
		}
	}

	acqErr := &AcquisitionError{Kind: KindExhausted, Last: lastErr}
	if ctx.Err() == nil {
		// Diagnostic only; a failure here must not mask lastErr.
		if names, err := a.provider.ListModels(ctx); err == nil {
			acqErr.Available = names
		}
	}
	a.observeAcquisition(KindExhausted.String())
	a.logger.Error("all model candidates failed",
		zap.Int("candidates", len(candidates)),
		zap.Int("attempts", attempts),
		zap.Error(acqErr),
	)
	return Acquisition{}, acqErr
}

// namingVariants yields the full identifier and, when different, the short form.
func namingVariants(c ModelCandidate) []string {
	if c.ShortName == "" || c.ShortName == c.FullName {
		return []string{c.FullName}
	}
	return []string{c.FullName, c.ShortName}
}

func (a *Acquirer) observeAttempt(outcome string) {
	if a.recorder != nil {
		a.recorder.ObserveAttempt(outcome)
	}
}

func (a *Acquirer) observeAcquisition(outcome string) {
	if a.recorder != nil {
		a.recorder.ObserveAcquisition(outcome)
	}
}
