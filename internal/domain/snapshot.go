package domain

import "time"

// BookSnapshot is a point-in-time copy of one symbol's resting orders, best
// first on each side.
type BookSnapshot struct {
	Symbol    string    `json:"symbol"`
	Buys      []Order   `json:"buys"`
	Sells     []Order   `json:"sells"`
	Timestamp time.Time `json:"timestamp"`
}
