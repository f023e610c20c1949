package ai

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// looseNumber accepts a JSON number or a numeric string. Anything else decodes as absent.
type looseNumber struct {
	v  float64
	ok bool
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	*n = looseNumber{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case float64:
		*n = looseNumber{v: x, ok: true}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*n = looseNumber{v: f, ok: true}
		}
	}
	return nil
}

// looseString accepts a JSON string; numbers and booleans keep their literal text.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	*s = ""
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case string:
		*s = looseString(x)
	case float64, bool:
		*s = looseString(strings.TrimSpace(string(b)))
	}
	return nil
}

// UnmarshalJSON never rejects a well-formed document because of field types.
// Values of the wrong type are left at zero; the schema check reports them.
func (e *Emissions) UnmarshalJSON(b []byte) error {
	*e = Emissions{}
	var w struct {
		Car   looseNumber `json:"car"`
		Bus   looseNumber `json:"bus"`
		EV    looseNumber `json:"ev"`
		Train looseNumber `json:"train"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return nil
	}
	*e = Emissions{Car: w.Car.v, Bus: w.Bus.v, EV: w.EV.v, Train: w.Train.v}
	return nil
}

// UnmarshalJSON decodes leniently, like Emissions. travelers is rounded to the nearest
// whole number, and a non-numeric car_vs_train_savings counts as omitted.
func (e *EmissionEstimate) UnmarshalJSON(b []byte) error {
	var w struct {
		Origin               looseString `json:"origin"`
		Destination          looseString `json:"destination"`
		Travelers            looseNumber `json:"travelers"`
		DistanceKm           looseNumber `json:"distance_km"`
		Emissions            Emissions   `json:"emissions"`
		Recommendation       looseString `json:"recommendation"`
		RecommendationReason looseString `json:"recommendation_reason"`
		EcoFact              looseString `json:"eco_fact"`
		CarVsTrainSavings    looseNumber `json:"car_vs_train_savings"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		// A non-object document still decodes, as an empty estimate.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
	}

	*e = EmissionEstimate{
		Origin:               string(w.Origin),
		Destination:          string(w.Destination),
		DistanceKm:           w.DistanceKm.v,
		Emissions:            w.Emissions,
		Recommendation:       string(w.Recommendation),
		RecommendationReason: string(w.RecommendationReason),
		EcoFact:              string(w.EcoFact),
	}
	if w.Travelers.ok && math.Abs(w.Travelers.v) <= math.MaxInt32 {
		e.Travelers = int(math.Round(w.Travelers.v))
	}
	if w.CarVsTrainSavings.ok {
		savings := w.CarVsTrainSavings.v
		e.CarVsTrainSavings = &savings
	}
	return nil
}
