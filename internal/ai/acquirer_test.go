package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/googleapi"
)

// stubProvider is a test double for Provider.
type stubProvider struct {
	models   []string
	listErr  error
	listings int

	// results maps a model name to its outcome; names not present return a 404.
	results map[string]stubResult
	calls   []string
}

type stubResult struct {
	text string
	err  error
}

func (s *stubProvider) ListModels(_ context.Context) ([]string, error) {
	s.listings++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.models, nil
}

func (s *stubProvider) Generate(_ context.Context, model, _ string, cfg GenerationConfig) (string, error) {
	s.calls = append(s.calls, model)
	r, ok := s.results[model]
	if !ok {
		return "", ClassifyProviderError(model, &googleapi.Error{Code: http.StatusNotFound, Message: "not found"})
	}
	return r.text, r.err
}

func quotaErr(model string) error {
	return ClassifyProviderError(model, &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota exceeded"})
}

func serverErr(model string) error {
	return ClassifyProviderError(model, &googleapi.Error{Code: http.StatusInternalServerError, Message: "backend error"})
}

func callsFor(calls []string, candidate string) int {
	n := 0
	for _, c := range calls {
		if ShortName(c) == ShortName(candidate) {
			n++
		}
	}
	return n
}

func TestAcquire_FallsThroughQuotaToFourthCandidate(t *testing.T) {
	p := &stubProvider{
		models: []string{
			"models/gemini-2.0-flash",
			"models/gemini-1.5-flash",
			"models/gemini-1.5-pro",
			"models/text-bison",
		},
		results: map[string]stubResult{
			"models/gemini-2.0-flash": {err: quotaErr("models/gemini-2.0-flash")},
			"gemini-2.0-flash":        {err: quotaErr("gemini-2.0-flash")},
			"models/gemini-1.5-flash": {err: quotaErr("models/gemini-1.5-flash")},
			"gemini-1.5-flash":        {err: quotaErr("gemini-1.5-flash")},
			"models/gemini-1.5-pro":   {err: quotaErr("models/gemini-1.5-pro")},
			"gemini-1.5-pro":          {err: quotaErr("gemini-1.5-pro")},
			"models/text-bison":       {text: `{"distance_km": 10}`},
		},
	}

	a := NewAcquirer(p, zaptest.NewLogger(t))
	got, err := a.Acquire(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, `{"distance_km": 10}`, got.Text)
	assert.Equal(t, "models/text-bison", got.Model)
	for _, failed := range []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"} {
		assert.LessOrEqual(t, callsFor(p.calls, failed), 2, "attempts for %s", failed)
	}
	assert.Equal(t, 7, got.Attempts)
	assert.Equal(t, 1, p.listings, "diagnostic listing must not run on success")
}

func TestAcquire_EmptyListingIsFatalWithoutGeneration(t *testing.T) {
	p := &stubProvider{}
	a := NewAcquirer(p, nil)

	_, err := a.Acquire(context.Background(), "prompt")
	require.Error(t, err)

	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Equal(t, KindListing, acqErr.Kind)
	assert.Equal(t, KindListing, KindOf(err))
	assert.Empty(t, p.calls)
}

func TestAcquire_ListingErrorIsFatal(t *testing.T) {
	p := &stubProvider{listErr: errors.New("dial tcp: connection refused")}
	a := NewAcquirer(p, nil)

	_, err := a.Acquire(context.Background(), "prompt")
	assert.Equal(t, KindListing, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, p.calls)
}

func TestAcquire_NotFoundTriesShortName(t *testing.T) {
	p := &stubProvider{
		models: []string{"models/gemini-2.0-flash"},
		results: map[string]stubResult{
			"gemini-2.0-flash": {text: "{}"},
		},
	}
	a := NewAcquirer(p, nil)

	got, err := a.Acquire(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/gemini-2.0-flash", "gemini-2.0-flash"}, p.calls)
	assert.Equal(t, "gemini-2.0-flash", got.Model)
	assert.Equal(t, 2, got.Attempts)
}

func TestAcquire_OtherErrorSkipsToNextCandidate(t *testing.T) {
	p := &stubProvider{
		models: []string{"models/gemini-2.0-flash", "models/gemini-1.5-flash"},
		results: map[string]stubResult{
			"models/gemini-2.0-flash": {err: serverErr("models/gemini-2.0-flash")},
			"models/gemini-1.5-flash": {text: "{}"},
		},
	}
	a := NewAcquirer(p, nil)

	_, err := a.Acquire(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/gemini-2.0-flash", "models/gemini-1.5-flash"}, p.calls)
}

func TestAcquire_ExhaustedCarriesLastErrorAndAvailableModels(t *testing.T) {
	p := &stubProvider{
		models: []string{"models/gemini-1.5-pro", "models/gemini-2.0-flash"},
		results: map[string]stubResult{
			"models/gemini-2.0-flash": {err: quotaErr("models/gemini-2.0-flash")},
			"gemini-2.0-flash":        {err: quotaErr("gemini-2.0-flash")},
			"models/gemini-1.5-pro":   {err: serverErr("models/gemini-1.5-pro")},
		},
	}
	a := NewAcquirer(p, nil)

	_, err := a.Acquire(context.Background(), "prompt")
	require.Error(t, err)

	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Equal(t, KindExhausted, acqErr.Kind)
	assert.Equal(t, KindTransient, KindOf(acqErr.Last))
	assert.ElementsMatch(t, p.models, acqErr.Available)
	assert.Equal(t, 2, p.listings)
	assert.Contains(t, err.Error(), "available models")
}

func TestAcquire_OnlyNotFoundGivesGenericReason(t *testing.T) {
	p := &stubProvider{models: []string{"models/gemini-2.0-flash"}}
	a := NewAcquirer(p, nil)

	_, err := a.Acquire(context.Background(), "prompt")
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Nil(t, acqErr.Last)
	assert.True(t, strings.HasPrefix(err.Error(), "no response from any model"))
}

// flakyListing fails only the diagnostic re-listing.
type flakyListing struct {
	stubProvider
}

func (f *flakyListing) ListModels(ctx context.Context) ([]string, error) {
	if f.listings > 0 {
		f.listings++
		return nil, errors.New("listing unavailable")
	}
	return f.stubProvider.ListModels(ctx)
}

func TestAcquire_DiagnosticListingErrorIsSuppressed(t *testing.T) {
	p := &flakyListing{stubProvider{
		models: []string{"models/gemini-2.0-flash"},
		results: map[string]stubResult{
			"models/gemini-2.0-flash": {err: serverErr("models/gemini-2.0-flash")},
		},
	}}
	a := NewAcquirer(p, nil)

	_, err := a.Acquire(context.Background(), "prompt")
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Equal(t, KindExhausted, acqErr.Kind)
	assert.Empty(t, acqErr.Available)
	assert.NotContains(t, err.Error(), "listing unavailable")
	assert.Contains(t, err.Error(), "backend error")
}

func TestAcquire_BoundsCandidateCount(t *testing.T) {
	var models []string
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		models = append(models, "models/m-"+n)
	}
	p := &stubProvider{models: models, results: map[string]stubResult{}}
	for _, m := range models {
		p.results[m] = stubResult{err: serverErr(m)}
	}
	a := NewAcquirer(p, nil)

	_, err := a.Acquire(context.Background(), "prompt")
	require.Error(t, err)
	assert.Len(t, p.calls, DefaultMaxCandidates)
	assert.NotContains(t, p.calls, "models/m-i")
}

type countingRecorder struct {
	attempts     map[string]int
	acquisitions map[string]int
}

func (r *countingRecorder) ObserveAttempt(o string)     { r.attempts[o]++ }
func (r *countingRecorder) ObserveAcquisition(o string) { r.acquisitions[o]++ }

func TestAcquire_RecordsOutcomes(t *testing.T) {
	p := &stubProvider{
		models: []string{"models/gemini-2.0-flash"},
		results: map[string]stubResult{
			"models/gemini-2.0-flash": {err: quotaErr("models/gemini-2.0-flash")},
			"gemini-2.0-flash":        {text: "{}"},
		},
	}
	rec := &countingRecorder{attempts: map[string]int{}, acquisitions: map[string]int{}}
	a := NewAcquirer(p, nil, WithRecorder(rec))

	_, err := a.Acquire(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.attempts["quota_exceeded"])
	assert.Equal(t, 1, rec.attempts["success"])
	assert.Equal(t, 1, rec.acquisitions["success"])
}
