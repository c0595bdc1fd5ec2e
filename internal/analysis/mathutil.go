package analysis

import "errors"

var (
	// ErrInvalidThreshold is returned for non-positive or inverted LT1/LT2/FTP values
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInvalidScore is returned when a 1-10 wellness score is out of range
	ErrInvalidScore = errors.New("score out of range")

	// ErrNegativeValue is returned for negative durations, minutes or stress values
	ErrNegativeValue = errors.New("value must be non-negative")

	// ErrInvalidConfidence is returned when a confidence is outside its allowed range
	ErrInvalidConfidence = errors.New("confidence out of range")
)

// safeDiv returns num/den, or fallback when den is zero
func safeDiv(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return num / den
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance; fewer than two values yields 0
func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}
