// Package pricing computes stay lengths and totals in minor currency units.
package pricing

import (
	"errors"
	"math"
	"time"
)

const secondsPerDay = 24 * 60 * 60

var (
	ErrInvalidRange  = errors.New("check-out must be after check-in")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrPriceOverflow = errors.New("price is too large")
)

// Date strips the time of day, keeping the calendar date as seen in t's location.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights is the number of calendar days between from and to, counted in Unix seconds
// since a time.Duration saturates at about 292 years.
func Nights(from, to time.Time) (int64, error) {
	nights := (Date(to).Unix() - Date(from).Unix()) / secondsPerDay
	if nights <= 0 {
		return 0, ErrInvalidRange
	}

	return nights, nil
}

// Total returns nights × priceCents and the night count.
func Total(priceCents int64, from, to time.Time) (total, nights int64, err error) {
	if priceCents < 0 {
		return 0, 0, ErrNegativePrice
	}

	nights, err = Nights(from, to)
	if err != nil {
		return 0, 0, err
	}

	if priceCents > 0 && nights > math.MaxInt64/priceCents {
		return 0, 0, ErrPriceOverflow
	}

	return nights * priceCents, nights, nil
}

// ToMinorUnits converts a decimal amount to cents, rounding half away from zero.
func ToMinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrPriceOverflow
	}

	if amount < 0 {
		return 0, ErrNegativePrice
	}

	cents := math.Round(amount * 100)
	if cents >= math.MaxInt64 {
		return 0, ErrPriceOverflow
	}

	return int64(cents), nil
}

// FromMinorUnits converts cents back to a decimal amount for display.
func FromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}

// Contains reports whether [from, to) lies inside the availability window [start, end].
func Contains(start, end, from, to time.Time) bool {
	return !Date(from).Before(Date(start)) && !Date(to).After(Date(end))
}
