// README: Best-effort JSON repair for model output (slice, brace balance, trailing commas).
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// SliceObject trims text and cuts it to the span between the first '{' and the last '}'.
// Text without both braces is returned trimmed but otherwise unchanged.
func SliceObject(text string) string {
	t := strings.TrimSpace(text)
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start == -1 || end == -1 || end < start {
		return t
	}
	return t[start : end+1]
}

// BalanceBraces appends closing braces when the text has more '{' than '}'.
// This repairs output cut off by the token limit.
func BalanceBraces(text string) string {
	open := strings.Count(text, "{")
	closed := strings.Count(text, "}")
	if open <= closed {
		return text
	}
	return text + strings.Repeat("}", open-closed)
}

// StripTrailingCommas removes commas directly preceding ']' or '}'.
func StripTrailingCommas(text string) string {
	return trailingComma.ReplaceAllString(text, "$1")
}

func sliceAndBalance(text string) string {
	return BalanceBraces(SliceObject(text))
}

func parse(candidate string) error {
	var v any
	return json.Unmarshal([]byte(candidate), &v)
}

// RepairJSON returns a parseable JSON document extracted from raw model output.
// The second pass strips trailing commas from the original text and repeats the first.
// On failure the error is a *MalformedResponseError holding the first parse error.
func RepairJSON(raw string) ([]byte, error) {
	first := sliceAndBalance(raw)
	firstErr := parse(first)
	if firstErr == nil {
		return []byte(first), nil
	}

	second := sliceAndBalance(StripTrailingCommas(raw))
	if err := parse(second); err == nil {
		return []byte(second), nil
	}
	return nil, &MalformedResponseError{Raw: raw, Err: firstErr}
}

// Recover repairs raw model output and decodes it into an EmissionEstimate.
// Any document that parses yields a record; missing or mistyped fields are left at zero.
func Recover(raw string) (*EmissionEstimate, error) {
	doc, err := RepairJSON(raw)
	if err != nil {
		return nil, err
	}
	return DecodeEstimate(raw, doc)
}

// DecodeEstimate decodes a document produced by RepairJSON. Field types are not checked.
// raw is only kept for error reporting.
func DecodeEstimate(raw string, doc []byte) (*EmissionEstimate, error) {
	var est EmissionEstimate
	if err := json.Unmarshal(doc, &est); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}
	return &est, nil
}
