package analysis

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(offset int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestCalculateTrainingLoad(t *testing.T) {
	target := day(60)

	tests := []struct {
		name    string
		history []DailyStress
		ctl     float64
		atl     float64
		delta   float64
	}{
		{
			name:    "single day today",
			history: []DailyStress{{Date: target, TSS: 100}},
			// 100 x exp(0) / 42 and / 7
			ctl:   100.0 / 42,
			atl:   100.0 / 7,
			delta: 1e-9,
		},
		{
			name:    "no history",
			history: nil,
			ctl:     0,
			atl:     0,
			delta:   1e-9,
		},
		{
			name:    "one day ago",
			history: []DailyStress{{Date: target.AddDate(0, 0, -1), TSS: 70}},
			ctl:     70 * math.Exp(-1.0/42) / 42,
			atl:     70 * math.Exp(-1.0/7) / 7,
			delta:   1e-9,
		},
		{
			name:    "seven days ago drops out of ATL",
			history: []DailyStress{{Date: target.AddDate(0, 0, -7), TSS: 100}},
			ctl:     100 * math.Exp(-7.0/42) / 42,
			atl:     0,
			delta:   1e-9,
		},
		{
			name:    "41 days ago is the last CTL day",
			history: []DailyStress{{Date: target.AddDate(0, 0, -41), TSS: 100}},
			ctl:     100 * math.Exp(-41.0/42) / 42,
			atl:     0,
			delta:   1e-9,
		},
		{
			name:    "42 days ago is outside CTL",
			history: []DailyStress{{Date: target.AddDate(0, 0, -42), TSS: 100}},
			ctl:     0,
			atl:     0,
			delta:   1e-9,
		},
		{
			name:    "future days are ignored",
			history: []DailyStress{{Date: target.AddDate(0, 0, 1), TSS: 100}},
			ctl:     0,
			atl:     0,
			delta:   1e-9,
		},
		{
			name: "later record for the same day replaces earlier one",
			history: []DailyStress{
				{Date: target, TSS: 50},
				{Date: target.Add(9 * time.Hour), TSS: 100},
			},
			ctl:   100.0 / 42,
			atl:   100.0 / 7,
			delta: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateTrainingLoad("athlete-1", target, tt.history)
			if err != nil {
				t.Fatalf("CalculateTrainingLoad error: %v", err)
			}
			if math.Abs(got.CTL-tt.ctl) > tt.delta {
				t.Errorf("CTL = %v, want %v", got.CTL, tt.ctl)
			}
			if math.Abs(got.ATL-tt.atl) > tt.delta {
				t.Errorf("ATL = %v, want %v", got.ATL, tt.atl)
			}
			if math.Abs(got.TSB-(got.CTL-got.ATL)) > 1e-12 {
				t.Errorf("TSB = %v, want CTL-ATL = %v", got.TSB, got.CTL-got.ATL)
			}
			if got.AthleteID != "athlete-1" || !got.Date.Equal(target) {
				t.Errorf("summary identity = %s %v", got.AthleteID, got.Date)
			}
		})
	}
}

func TestCalculateTrainingLoad_SingleDayCTL(t *testing.T) {
	got, _ := CalculateTrainingLoad("a", day(0), []DailyStress{{Date: day(0), TSS: 100}})
	if math.Abs(got.CTL-2.38) > 0.01 {
		t.Errorf("CTL = %v, want ~2.38", got.CTL)
	}
}

func TestCalculateTrainingLoad_DayValues(t *testing.T) {
	history := []DailyStress{
		{Date: day(0), TSS: 80, TrainingMinutes: 90},
		{Date: day(1), TSS: 40, TrainingMinutes: 45},
	}
	got, err := CalculateTrainingLoad("a", day(1), history)
	if err != nil {
		t.Fatalf("CalculateTrainingLoad error: %v", err)
	}
	if got.TSS != 40 || got.TrainingMinutes != 45 {
		t.Errorf("day values = %v TSS / %d min, want 40 / 45", got.TSS, got.TrainingMinutes)
	}
	if !got.HasTrainingData() {
		t.Error("HasTrainingData() = false, want true")
	}

	rest, _ := CalculateTrainingLoad("a", day(2), history)
	if rest.HasTrainingData() {
		t.Error("rest day should have no training data")
	}
	if rest.CTL <= 0 {
		t.Errorf("rest day CTL = %v, want positive carry-over", rest.CTL)
	}
}

func TestCalculateTrainingLoad_Negative(t *testing.T) {
	_, err := CalculateTrainingLoad("a", day(0), []DailyStress{{Date: day(0), TSS: -1}})
	if !errors.Is(err, ErrNegativeValue) {
		t.Errorf("error = %v, want ErrNegativeValue", err)
	}
}

func TestRecomputeTrainingLoads(t *testing.T) {
	history := make([]DailyStress, 0, 50)
	for i := 0; i < 50; i++ {
		history = append(history, DailyStress{Date: day(i), TSS: float64(40 + i%5*10)})
	}

	summaries, err := RecomputeTrainingLoads("a", day(10), day(49), history)
	if err != nil {
		t.Fatalf("RecomputeTrainingLoads error: %v", err)
	}
	if len(summaries) != 40 {
		t.Fatalf("got %d summaries, want 40", len(summaries))
	}

	// every day matches an independent single-day calculation
	for _, s := range summaries {
		single, _ := CalculateTrainingLoad("a", s.Date, history)
		if s != single {
			t.Fatalf("batch summary for %v = %+v, single = %+v", s.Date, s, single)
		}
	}

	if _, err := RecomputeTrainingLoads("a", day(5), day(4), history); err == nil {
		t.Error("end before start should fail")
	}
}

func TestHistoryWindowStart(t *testing.T) {
	got := HistoryWindowStart(day(50).Add(15 * time.Hour))
	if !got.Equal(day(9)) {
		t.Errorf("HistoryWindowStart = %v, want %v", got, day(9))
	}
}

func TestRecoveryStatus(t *testing.T) {
	tests := []struct {
		tsb      float64
		expected string
	}{
		{20, "optimal"},
		{15, "good"},
		{0.1, "good"},
		{0, "moderate"},
		{-14.9, "moderate"},
		{-15, "high_load"},
		{-40, "high_load"},
	}

	for _, tt := range tests {
		if got := RecoveryStatus(tt.tsb); got != tt.expected {
			t.Errorf("RecoveryStatus(%v) = %q, want %q", tt.tsb, got, tt.expected)
		}
	}
}

func TestFormDescription(t *testing.T) {
	tests := []struct {
		tsb      float64
		expected string
	}{
		{30, "Very fresh (possibly detrained)"},
		{25.1, "Very fresh (possibly detrained)"},
		{25, "Fresh and ready to race"},
		{15, "Fresh and ready to race"},
		{10.1, "Fresh and ready to race"},
		{10, "Neutral - good for training"},
		{5, "Neutral - good for training"},
		{0.1, "Neutral - good for training"},
		{0, "Slightly fatigued"},
		{-5, "Slightly fatigued"},
		{-9.9, "Slightly fatigued"},
		{-10, "Tired but building fitness"},
		{-15, "Tired but building fitness"},
		{-24.9, "Tired but building fitness"},
		{-25, "Very fatigued - rest needed"},
		{-50, "Very fatigued - rest needed"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormDescription(tt.tsb)
			if result != tt.expected {
				t.Errorf("FormDescription(%v) = %q, want %q", tt.tsb, result, tt.expected)
			}
		})
	}
}
