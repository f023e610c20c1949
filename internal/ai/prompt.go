package ai

import "fmt"

// Emission factors in kg CO2 per km. They are stated literally in the prompt so the
// model cannot substitute its own.
const (
	CarFactor   = 0.19  // per vehicle
	BusFactor   = 0.089 // per passenger
	EVFactor    = 0.05  // per vehicle
	TrainFactor = 0.041 // per passenger
)

// BuildPrompt constructs the instructions for the AI.
// Inputs are expected to be validated by the caller.
func BuildPrompt(origin, destination string, travelers int) string {
	return fmt.Sprintf(`You are an expert environmental scientist specializing in transportation carbon footprint analysis.

TASK: Calculate the carbon footprint for travel from %[1]s to %[2]s for %[3]d traveler(s).

STANDARD EMISSION FACTORS (use these exact values):
- Personal Car (Petrol): 0.19 kg CO2 per km per vehicle
- Public Bus: 0.089 kg CO2 per km per passenger
- Electric Vehicle: 0.05 kg CO2 per km per vehicle
- Train: 0.041 kg CO2 per km per passenger

INSTRUCTIONS:
1. Estimate the road/rail distance between the two cities in kilometers. Use realistic distances.
2. Calculate CO2 emissions for each transport mode for ALL %[3]d traveler(s).
3. For Car and EV: Assume all travelers share one vehicle. Multiply distance by emission factor. Do NOT multiply by the number of travelers.
4. For Bus and Train: Multiply distance by emission factor by number of travelers.
5. Recommend the most eco-friendly option. The "recommendation" field MUST be exactly one of: "car", "bus", "ev", "train".
6. Provide a fun, educational eco-fact related to this journey or region.

CRITICAL: Return your response ONLY as a valid JSON object with this exact structure:
{
    "origin": "%[1]s",
    "destination": "%[2]s",
    "travelers": %[3]d,
    "distance_km": <number>,
    "emissions": {
        "car": <number in kg>,
        "bus": <number in kg>,
        "ev": <number in kg>,
        "train": <number in kg>
    },
    "recommendation": "car" | "bus" | "ev" | "train",
    "recommendation_reason": "<brief explanation>",
    "eco_fact": "<fun educational fact about eco-travel or the region>",
    "car_vs_train_savings": <number in kg - how much CO2 saved by taking train instead of car>
}

Return ONLY the JSON object, no additional text, no markdown formatting and no code fences.`, origin, destination, travelers)
}
