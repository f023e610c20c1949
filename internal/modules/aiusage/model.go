package aiusage

import "errors"

// ErrInsufficientTokens is returned when a caller has no estimates left for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of AI estimates granted per caller per month.
const DefaultTokens = 100

// Usage is a caller's allowance for the current month.
type Usage struct {
	UID             string `json:"uid"`
	TokensRemaining int    `json:"tokens_remaining"`
	Month           string `json:"month"`
}

const monthLayout = "2006-01"
