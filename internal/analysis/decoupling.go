package analysis

// AerobicDecoupling calculates the power:HR drift between first and second half
// Returns percentage - positive means second half was less efficient
// < 5% on long rides indicates good aerobic base
func AerobicDecoupling(samples []Sample) float64 {
	if len(samples) < 120 { // Need at least 2 minutes of data
		return 0
	}

	mid := len(samples) / 2
	firstEF := EfficiencyFactor(samples[:mid])
	secondEF := EfficiencyFactor(samples[mid:])

	if firstEF == 0 || secondEF == 0 {
		return 0
	}

	// Formula: ((first / second) - 1) * 100
	return ((firstEF / secondEF) - 1) * 100
}

// CardiacDrift measures HR increase during steady-state riding.
// Only samples within 10% of avgPower count. Returns the HR difference (bpm)
// between the last and first quarter of those samples.
func CardiacDrift(samples []Sample, avgPower float64) float64 {
	if len(samples) < 240 || avgPower <= 0 { // Need at least 4 minutes
		return 0
	}

	var steady []Sample
	for _, s := range samples {
		if s.Power == nil || s.HeartRate == nil {
			continue
		}
		ratio := *s.Power / avgPower
		if ratio > 0.9 && ratio < 1.1 {
			steady = append(steady, s)
		}
	}

	if len(steady) < 120 { // Need at least 2 minutes of steady data
		return 0
	}

	q := len(steady) / 4
	firstHR := AverageHeartRate(steady[:q])
	lastHR := AverageHeartRate(steady[len(steady)-q:])

	if firstHR == 0 {
		return 0
	}
	return lastHR - firstHR
}

// SteadyStatePct calculates what percentage of the ride was at steady effort
// (power within 10% of average)
func SteadyStatePct(samples []Sample, avgPower float64) float64 {
	if len(samples) == 0 || avgPower <= 0 {
		return 0
	}

	var steadyCount, validCount int
	for _, s := range samples {
		if s.Power == nil {
			continue
		}
		validCount++

		ratio := *s.Power / avgPower
		if ratio > 0.9 && ratio < 1.1 {
			steadyCount++
		}
	}

	if validCount == 0 {
		return 0
	}
	return float64(steadyCount) / float64(validCount) * 100
}
