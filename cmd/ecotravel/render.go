package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"ecotravel/internal/ai"
	"ecotravel/internal/modules/estimate"
)

const disclaimer = "Disclaimer: Estimates are generated by AI for awareness purposes and may vary from actual values. " +
	"Calculations are based on average emission factors and do not account for specific vehicle efficiency, " +
	"occupancy rates, or route conditions."

const apiKeyHelp = `Google API Key not found!
To set up your API Key:
  1. Create a .env file in the project folder.
  2. Add GOOGLE_API_KEY=your_key_here to it.
  3. Get a free key from https://aistudio.google.com/app/apikey`

const defaultReason = "The most sustainable choice for your journey!"

func render(w io.Writer, res *estimate.Result) {
	est := res.Estimate

	fmt.Fprintf(w, "Your Travel Carbon Footprint: %s -> %s\n\n", est.Origin, est.Destination)
	fmt.Fprintf(w, "  Distance:          %.0f km\n", est.DistanceKm)
	if res.RouteDistanceKm != nil {
		fmt.Fprintf(w, "  Road distance:     %.0f km (Google Maps)\n", *res.RouteDistanceKm)
	}
	fmt.Fprintf(w, "  Travelers:         %d\n", est.Travelers)
	fmt.Fprintf(w, "  Potential savings: %.1f kg CO2\n\n", res.Savings)

	fmt.Fprintln(w, "Transport options:")
	for _, m := range ai.Modes {
		kg, _ := est.Emissions.ByMode(m)
		marker := "  "
		if m == res.Recommended {
			marker = "* "
		}
		fmt.Fprintf(w, "  %s%-17s %8.1f kg CO2\n", marker, m.DisplayName(), kg)
	}
	fmt.Fprintln(w)

	rec := est.Recommendation
	if res.Recommended != "" {
		rec = res.Recommended.DisplayName()
	}
	reason := est.RecommendationReason
	if reason == "" {
		reason = defaultReason
	}
	fmt.Fprintf(w, "Recommendation: %s - %s\n", rec, reason)
	if est.EcoFact != "" {
		fmt.Fprintf(w, "Did you know? %s\n", est.EcoFact)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "note: %s\n", warn)
	}
	fmt.Fprintf(w, "\n%s\n", disclaimer)
}

// errorMessage turns a pipeline failure into the text shown to the user.
func errorMessage(err error) string {
	if errors.Is(err, estimate.ErrBadRequest) {
		return "Please enter both origin and destination cities and 1-" +
			fmt.Sprint(estimate.MaxTravelers) + " travelers."
	}

	switch ai.KindOf(err) {
	case ai.KindConfiguration:
		return apiKeyHelp
	case ai.KindListing:
		var acqErr *ai.AcquisitionError
		if errors.As(err, &acqErr) && acqErr.Last != nil {
			return "Failed to list models: " + acqErr.Last.Error()
		}
		return "Failed to list models."
	case ai.KindExhausted:
		var acqErr *ai.AcquisitionError
		if errors.As(err, &acqErr) && len(acqErr.Available) > 0 {
			return "Could not connect to preferred models. Your API key has access to: " +
				strings.Join(acqErr.Available, ", ")
		}
		return "AI Error: " + err.Error()
	case ai.KindMalformedResponse:
		msg := "The AI response could not be understood: " + err.Error()
		var malformed *ai.MalformedResponseError
		if errors.As(err, &malformed) && malformed.Raw != "" {
			msg += "\nRaw response:\n" + malformed.Raw
		}
		return msg
	}
	return "Failed to calculate. Please check your API key and try again."
}
