package analysis

// Gaps longer than this between samples are treated as pauses
const maxSampleGapSeconds = 10

// ActivityMetrics are the per-activity figures derived from recorded samples
type ActivityMetrics struct {
	DurationSeconds  float64
	AveragePower     float64
	NormalizedPower  float64
	AverageHeartRate float64
	IntensityFactor  float64
	TSS              float64
	ZoneMinutes      map[Zone]float64
	EfficiencyFactor float64
	Decoupling       float64
	CardiacDrift     float64
	SteadyStatePct   float64
	DataQuality      float64 // share of samples with heart rate, [0,1]
}

// Distribution returns the activity's time-in-zone as percentages
func (m ActivityMetrics) Distribution() Distribution {
	return DistributionFromMinutes(m.ZoneMinutes[Z1], m.ZoneMinutes[Z2], m.ZoneMinutes[Z3])
}

// sampleSeconds is the time a sample stands for: the gap to the next sample,
// or one second for the last sample and for pauses
func sampleSeconds(samples []Sample, i int) float64 {
	if i+1 < len(samples) {
		gap := samples[i+1].Offset - samples[i].Offset
		if gap > 0 && gap <= maxSampleGapSeconds {
			return float64(gap)
		}
	}
	return 1
}

// TimeInZones accumulates minutes spent in each zone, classifying each sample's power
func TimeInZones(samples []Sample, t Thresholds) map[Zone]float64 {
	minutes := map[Zone]float64{Z1: 0, Z2: 0, Z3: 0}
	for i, s := range samples {
		if s.Power == nil || *s.Power < 0 {
			continue
		}
		minutes[t.Classify(*s.Power)] += sampleSeconds(samples, i) / 60
	}
	return minutes
}

// TrainingStressScore is duration x NP x IF / (FTP x 3600) x 100.
// Returns 0 when any input is non-positive.
func TrainingStressScore(durationSeconds, normalizedPower, ftp float64) float64 {
	if durationSeconds <= 0 || normalizedPower <= 0 || ftp <= 0 {
		return 0
	}
	intensity := normalizedPower / ftp
	return durationSeconds * normalizedPower * intensity / (ftp * 3600) * 100
}

// ComputeActivityMetrics calculates all metrics for a single activity.
// Zone minutes need valid thresholds; TSS needs a positive FTP.
func ComputeActivityMetrics(samples []Sample, t Thresholds, ftp float64) ActivityMetrics {
	metrics := ActivityMetrics{ZoneMinutes: map[Zone]float64{Z1: 0, Z2: 0, Z3: 0}}

	if len(samples) == 0 {
		return metrics
	}

	for i := range samples {
		metrics.DurationSeconds += sampleSeconds(samples, i)
	}

	metrics.AveragePower = AveragePower(samples)
	metrics.NormalizedPower = NormalizedPower(samples)
	metrics.AverageHeartRate = AverageHeartRate(samples)

	if t.LT1 > 0 && t.LT2 > t.LT1 {
		metrics.ZoneMinutes = TimeInZones(samples, t)
	}

	if ftp > 0 {
		metrics.IntensityFactor = metrics.NormalizedPower / ftp
		metrics.TSS = TrainingStressScore(metrics.DurationSeconds, metrics.NormalizedPower, ftp)
	}

	metrics.EfficiencyFactor = EfficiencyFactor(samples)
	metrics.Decoupling = AerobicDecoupling(samples)
	metrics.CardiacDrift = CardiacDrift(samples, metrics.AveragePower)
	metrics.SteadyStatePct = SteadyStatePct(samples, metrics.AveragePower)

	// Data Quality Score: % of samples with HR data
	withHR := 0
	for _, s := range samples {
		if s.HeartRate != nil && *s.HeartRate > 0 {
			withHR++
		}
	}
	metrics.DataQuality = float64(withHR) / float64(len(samples))

	return metrics
}

// DataQualityDescription returns a human-readable data quality assessment
func DataQualityDescription(score float64) string {
	switch {
	case score >= 0.95:
		return "Excellent"
	case score >= 0.85:
		return "Good"
	case score >= 0.70:
		return "Fair"
	case score >= 0.50:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// DecouplingAssessment returns a human-readable decoupling assessment
func DecouplingAssessment(decoupling float64) string {
	switch {
	case decoupling < 3:
		return "Excellent aerobic base"
	case decoupling < 5:
		return "Good aerobic fitness"
	case decoupling < 8:
		return "Developing aerobic base"
	case decoupling < 12:
		return "Needs more easy volume"
	default:
		return "Aerobic system needs work"
	}
}
