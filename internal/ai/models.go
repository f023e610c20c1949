package ai

import "strings"

// EmissionEstimate captures the structured output from the AI model.
// Fields mirror the JSON schema stated in BuildPrompt; nothing here is validated.
type EmissionEstimate struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Travelers   int     `json:"travelers"`
	DistanceKm  float64 `json:"distance_km"`

	// Emissions are kg CO2 for the whole party.
	Emissions Emissions `json:"emissions"`

	// Recommendation is expected to be one of the Mode keys, but the model may still return free text.
	Recommendation       string `json:"recommendation"`
	RecommendationReason string `json:"recommendation_reason"`
	EcoFact              string `json:"eco_fact"`

	// CarVsTrainSavings is nil when the model omitted it.
	CarVsTrainSavings *float64 `json:"car_vs_train_savings,omitempty"`
}

type Emissions struct {
	Car   float64 `json:"car"`
	Bus   float64 `json:"bus"`
	EV    float64 `json:"ev"`
	Train float64 `json:"train"`
}

// ByMode returns the emission for m, and false for an unknown mode.
func (e Emissions) ByMode(m Mode) (float64, bool) {
	switch m {
	case ModeCar:
		return e.Car, true
	case ModeBus:
		return e.Bus, true
	case ModeEV:
		return e.EV, true
	case ModeTrain:
		return e.Train, true
	}
	return 0, false
}

// Mode is one of the four transport modes the calculator compares.
type Mode string

const (
	ModeCar   Mode = "car"
	ModeBus   Mode = "bus"
	ModeEV    Mode = "ev"
	ModeTrain Mode = "train"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeCar, ModeBus, ModeEV, ModeTrain}

var modeNames = map[Mode]string{
	ModeCar:   "Personal Car",
	ModeBus:   "Public Bus",
	ModeEV:    "Electric Vehicle",
	ModeTrain: "Train",
}

var modeAliases = map[string]Mode{
	"car":              ModeCar,
	"personal car":     ModeCar,
	"petrol car":       ModeCar,
	"bus":              ModeBus,
	"public bus":       ModeBus,
	"coach":            ModeBus,
	"ev":               ModeEV,
	"electric vehicle": ModeEV,
	"electric car":     ModeEV,
	"electric":         ModeEV,
	"train":            ModeTrain,
	"rail":             ModeTrain,
}

// DisplayName is the human label for m.
func (m Mode) DisplayName() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return string(m)
}

// ParseMode maps the model's recommendation onto the closed set of modes.
// Only exact keys and known display names match; arbitrary substrings do not.
func ParseMode(s string) (Mode, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.Trim(key, ".!\"'")
	m, ok := modeAliases[key]
	return m, ok
}

// ModelCandidate is one provider model in ranked order.
type ModelCandidate struct {
	FullName  string `json:"full_name"`
	ShortName string `json:"short_name"`
	Rank      int    `json:"rank"`
}

// GenerationConfig is the sampling configuration sent with every attempt.
type GenerationConfig struct {
	Temperature      float32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

// DefaultGenerationConfig keeps output near-deterministic and within one screen of JSON.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:      0.1,
	MaxOutputTokens:  2048,
	ResponseMIMEType: "application/json",
}
