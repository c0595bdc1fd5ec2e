package analysis

import "math"

// Sample is one recorded data point. Power and heart rate are each optional.
type Sample struct {
	Offset    int      // seconds from start
	Power     *float64 // watts
	HeartRate *float64 // bpm
}

// Plausibility limits for paired power/HR samples
const (
	minValidHR = 80
	maxValidHR = 220
	npWindow   = 30 // seconds
)

// pairedValues returns the sample's power and HR when both are present and plausible
func pairedValues(s Sample) (power, hr float64, ok bool) {
	if s.Power == nil || s.HeartRate == nil {
		return 0, 0, false
	}
	power, hr = *s.Power, *s.HeartRate
	if power <= 0 || hr <= minValidHR || hr >= maxValidHR {
		return 0, 0, false
	}
	return power, hr, true
}

// EfficiencyFactor is average power over average heart rate (W/bpm).
// Higher is better: more power for the same cardiac cost.
// Typical trained values range from 1.2 to 2.2.
func EfficiencyFactor(samples []Sample) float64 {
	var totalPower, totalHR float64
	var count int

	for _, s := range samples {
		if p, hr, ok := pairedValues(s); ok {
			totalPower += p
			totalHR += hr
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return totalPower / totalHR
}

// AveragePower returns mean power over samples that carry power, zeros included
func AveragePower(samples []Sample) float64 {
	var total float64
	var count int
	for _, s := range samples {
		if s.Power != nil && *s.Power >= 0 {
			total += *s.Power
			count++
		}
	}
	return safeDiv(total, float64(count), 0)
}

// AverageHeartRate returns mean heart rate over samples with a positive HR
func AverageHeartRate(samples []Sample) float64 {
	var total float64
	var count int
	for _, s := range samples {
		if s.HeartRate != nil && *s.HeartRate > 0 {
			total += *s.HeartRate
			count++
		}
	}
	return safeDiv(total, float64(count), 0)
}

// NormalizedPower is the fourth root of the mean fourth power of 30-second
// rolling average power. Samples are taken as one per second. Rides shorter
// than the window fall back to average power.
func NormalizedPower(samples []Sample) float64 {
	powers := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Power != nil && *s.Power >= 0 {
			powers = append(powers, *s.Power)
		}
	}
	if len(powers) == 0 {
		return 0
	}
	if len(powers) < npWindow {
		return mean(powers)
	}

	var sum float64
	for i := 0; i < npWindow; i++ {
		sum += powers[i]
	}

	var fourth float64
	var count int
	for i := npWindow - 1; i < len(powers); i++ {
		if i >= npWindow {
			sum += powers[i] - powers[i-npWindow]
		}
		rolling := sum / npWindow
		fourth += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(fourth/float64(count), 0.25)
}

// PowerAtHR returns average power while heart rate is within tolerance of targetHR.
// Returns 0 with fewer than 30 matching samples.
func PowerAtHR(samples []Sample, targetHR, tolerance float64) float64 {
	var total float64
	var count int

	for _, s := range samples {
		p, hr, ok := pairedValues(s)
		if !ok {
			continue
		}
		if hr >= targetHR-tolerance && hr <= targetHR+tolerance {
			total += p
			count++
		}
	}

	if count < 30 {
		return 0
	}
	return total / float64(count)
}
