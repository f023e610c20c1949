package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("Bangalore", "Mysore", 2)
	b := BuildPrompt("Bangalore", "Mysore", 2)
	assert.Equal(t, a, b)
}

func TestBuildPrompt_EmbedsInputsAndFactors(t *testing.T) {
	p := BuildPrompt("Bangalore", "Mysore", 2)

	assert.Contains(t, p, "from Bangalore to Mysore for 2 traveler(s)")
	assert.Contains(t, p, `"origin": "Bangalore"`)
	assert.Contains(t, p, `"travelers": 2,`)
	for _, factor := range []string{"0.19", "0.089", "0.05", "0.041"} {
		assert.Contains(t, p, factor)
	}
	for _, key := range []string{`"car"`, `"bus"`, `"ev"`, `"train"`, `"distance_km"`, `"eco_fact"`, `"car_vs_train_savings"`} {
		assert.Contains(t, p, key)
	}
	assert.Contains(t, p, "Do NOT multiply by the number of travelers")
}

func TestBuildPrompt_DiffersByInput(t *testing.T) {
	assert.NotEqual(t, BuildPrompt("A", "B", 1), BuildPrompt("A", "B", 3))
	assert.False(t, strings.Contains(BuildPrompt("Paris", "Lyon", 1), "Bangalore"))
}
