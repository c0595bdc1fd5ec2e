package analysis

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestEstimateFromFTP(t *testing.T) {
	e, err := EstimateFromFTP(200, "")
	if err != nil {
		t.Fatalf("EstimateFromFTP(200) error: %v", err)
	}
	if math.Abs(e.LT1-150) > 1e-9 {
		t.Errorf("LT1 = %v, want 150", e.LT1)
	}
	if math.Abs(e.LT2-180) > 1e-9 {
		t.Errorf("LT2 = %v, want 180", e.LT2)
	}
	if e.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", e.Confidence)
	}
	if e.Method != MethodEstimated {
		t.Errorf("Method = %v, want %v", e.Method, MethodEstimated)
	}

	for _, ftp := range []float64{0, -250} {
		if _, err := EstimateFromFTP(ftp, MethodEstimated); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("EstimateFromFTP(%v) error = %v, want ErrInvalidThreshold", ftp, err)
		}
	}
}

func TestEstimateFromTest(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name           string
		method         TestMethod
		wantMethod     ThresholdMethod
		wantConfidence float64
	}{
		{"lab test", TestLabLactate, MethodLabLactate, 0.95},
		{"ramp test", TestFieldRamp, MethodFieldProxy, 0.85},
		{"20 minute test", TestField20Min, MethodFieldProxy, 0.85},
		{"estimated", TestEstimated, MethodEstimated, 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewFTPTestResult(250, date, tt.method, DefaultTestConfidence(tt.method))
			if err != nil {
				t.Fatalf("NewFTPTestResult error: %v", err)
			}
			e, err := EstimateFromTest(result)
			if err != nil {
				t.Fatalf("EstimateFromTest error: %v", err)
			}
			if e.LT2 != 250 {
				t.Errorf("LT2 = %v, want 250", e.LT2)
			}
			if math.Abs(e.LT1-205) > 1e-9 {
				t.Errorf("LT1 = %v, want 205", e.LT1)
			}
			if e.Method != tt.wantMethod {
				t.Errorf("Method = %v, want %v", e.Method, tt.wantMethod)
			}
			if math.Abs(e.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("Confidence = %v, want %v", e.Confidence, tt.wantConfidence)
			}
			if !e.Date.Equal(date) {
				t.Errorf("Date = %v, want %v", e.Date, date)
			}
		})
	}
}

func TestNewFTPTestResult_Invalid(t *testing.T) {
	now := time.Now()
	if _, err := NewFTPTestResult(0, now, TestFieldRamp, 85); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("zero FTP error = %v, want ErrInvalidThreshold", err)
	}
	if _, err := NewFTPTestResult(250, now, TestFieldRamp, 101); !errors.Is(err, ErrInvalidConfidence) {
		t.Errorf("confidence 101 error = %v, want ErrInvalidConfidence", err)
	}
	if _, err := NewFTPTestResult(250, now, "", 85); err == nil {
		t.Error("missing method should fail")
	}
}

func TestCalculateZoneRanges(t *testing.T) {
	ftp := 260.0
	ranges, err := CalculateZoneRanges(ftp)
	if err != nil {
		t.Fatalf("CalculateZoneRanges error: %v", err)
	}
	if ranges[Z2].High != ftp {
		t.Errorf("Z2 upper = %v, want %v", ranges[Z2].High, ftp)
	}
	if math.Abs(ranges[Z1].High-0.82*ftp) > 1e-9 {
		t.Errorf("Z1 upper = %v, want %v", ranges[Z1].High, 0.82*ftp)
	}
	if ranges[Z2].Low != ranges[Z1].High {
		t.Errorf("Z2 lower %v should equal Z1 upper %v", ranges[Z2].Low, ranges[Z1].High)
	}
	if math.Abs(ranges[Z3].High-1.15*ftp) > 1e-9 {
		t.Errorf("Z3 upper = %v, want %v", ranges[Z3].High, 1.15*ftp)
	}

	// the generic estimator must not share the test-path ratios
	e, _ := EstimateFromFTP(ftp, "")
	if e.LT1 == ranges[Z1].High {
		t.Error("generic estimate LT1 should differ from FTP-test Z1 upper")
	}
}

func TestCalculateBandsFromFTP(t *testing.T) {
	bands, err := CalculateBandsFromFTP(200, "FIELD_PROXY", 85)
	if err != nil {
		t.Fatalf("CalculateBandsFromFTP error: %v", err)
	}
	if len(bands) != 3 {
		t.Fatalf("got %d bands, want 3", len(bands))
	}
	for i, z := range Zones {
		if bands[i].Zone != z {
			t.Errorf("bands[%d].Zone = %v, want %v", i, bands[i].Zone, z)
		}
		if bands[i].Confidence != 85 || bands[i].Method != "FIELD_PROXY" {
			t.Errorf("bands[%d] = %+v, want method FIELD_PROXY confidence 85", i, bands[i])
		}
	}

	if _, err := CalculateBandsFromFTP(200, "FIELD_PROXY", 120); !errors.Is(err, ErrInvalidConfidence) {
		t.Errorf("confidence 120 error = %v, want ErrInvalidConfidence", err)
	}
	if _, err := CalculateBandsFromFTP(200, "", 50); err == nil {
		t.Error("empty method should fail")
	}
}

func TestBandsForEstimate(t *testing.T) {
	e, _ := EstimateFromFTP(200, MethodEstimated)
	bands, err := BandsForEstimate(e)
	if err != nil {
		t.Fatalf("BandsForEstimate error: %v", err)
	}
	if bands[1].Target.High != e.LT2 {
		t.Errorf("Z2 upper = %v, want LT2 %v", bands[1].Target.High, e.LT2)
	}
	if bands[0].Confidence != 50 {
		t.Errorf("Confidence = %v, want 50", bands[0].Confidence)
	}
}
