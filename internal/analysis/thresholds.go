package analysis

import (
	"fmt"
	"sort"
	"time"
)

// ThresholdMethod records how a threshold pair was obtained
type ThresholdMethod string

const (
	MethodLabLactate ThresholdMethod = "LAB_LACTATE"
	MethodFieldProxy ThresholdMethod = "FIELD_PROXY"
	MethodEstimated  ThresholdMethod = "ESTIMATED"
)

// TestMethod is the protocol used for an FTP test
type TestMethod string

const (
	TestLabLactate TestMethod = "LAB_LACTATE"
	TestFieldRamp  TestMethod = "FIELD_RAMP"
	TestField20Min TestMethod = "FIELD_20MIN"
	TestEstimated  TestMethod = "ESTIMATED"
)

// Generic FTP-based estimate: LT1 ~75% FTP, LT2 ~90% FTP
const (
	estimateLT1Ratio   = 0.75
	estimateLT2Ratio   = 0.90
	estimateConfidence = 0.5
)

// FTP-test path: LT2 at FTP, LT1 at ~82% FTP
const testLT1Ratio = 0.82

// Z3 band ceiling for FTP-derived prescription bands
const bandZ3FTPMultiple = 1.15

// Estimate is a threshold pair together with its provenance.
// Confidence is in [0,1].
type Estimate struct {
	Thresholds
	Method     ThresholdMethod
	Confidence float64
	Date       time.Time
}

// EstimateFromFTP derives LT1/LT2 from FTP with the generic 0.75/0.90 ratios
func EstimateFromFTP(ftp float64, method ThresholdMethod) (Estimate, error) {
	if ftp <= 0 {
		return Estimate{}, fmt.Errorf("FTP must be positive, got %v: %w", ftp, ErrInvalidThreshold)
	}
	t, err := NewThresholds(ftp*estimateLT1Ratio, ftp*estimateLT2Ratio)
	if err != nil {
		return Estimate{}, err
	}
	if method == "" {
		method = MethodEstimated
	}
	return Estimate{Thresholds: t, Method: method, Confidence: estimateConfidence}, nil
}

// FTPTestResult is a completed FTP test. ConfidencePercent is in [0,100].
type FTPTestResult struct {
	FTP               float64
	Date              time.Time
	Method            TestMethod
	ConfidencePercent float64
}

// NewFTPTestResult validates and builds a test result
func NewFTPTestResult(ftp float64, date time.Time, method TestMethod, confidencePercent float64) (FTPTestResult, error) {
	if ftp <= 0 {
		return FTPTestResult{}, fmt.Errorf("FTP must be positive, got %v: %w", ftp, ErrInvalidThreshold)
	}
	if method == "" {
		return FTPTestResult{}, fmt.Errorf("test method is required")
	}
	if confidencePercent < 0 || confidencePercent > 100 {
		return FTPTestResult{}, fmt.Errorf("confidence %v not in [0,100]: %w", confidencePercent, ErrInvalidConfidence)
	}
	return FTPTestResult{FTP: ftp, Date: date, Method: method, ConfidencePercent: confidencePercent}, nil
}

// DefaultTestConfidence is the confidence percent attached to each test protocol
func DefaultTestConfidence(m TestMethod) float64 {
	switch m {
	case TestLabLactate:
		return 95
	case TestFieldRamp, TestField20Min:
		return 85
	default:
		return 70
	}
}

// thresholdMethodFor maps a test protocol to the threshold provenance
func thresholdMethodFor(m TestMethod) ThresholdMethod {
	switch m {
	case TestLabLactate:
		return MethodLabLactate
	case TestFieldRamp, TestField20Min:
		return MethodFieldProxy
	default:
		return MethodEstimated
	}
}

// EstimateFromTest derives thresholds from a completed FTP test: LT2 = FTP, LT1 = 0.82 x FTP
func EstimateFromTest(result FTPTestResult) (Estimate, error) {
	if result.ConfidencePercent < 0 || result.ConfidencePercent > 100 {
		return Estimate{}, fmt.Errorf("confidence %v not in [0,100]: %w", result.ConfidencePercent, ErrInvalidConfidence)
	}
	if result.FTP <= 0 {
		return Estimate{}, fmt.Errorf("FTP must be positive, got %v: %w", result.FTP, ErrInvalidThreshold)
	}
	t, err := NewThresholds(result.FTP*testLT1Ratio, result.FTP)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		Thresholds: t,
		Method:     thresholdMethodFor(result.Method),
		Confidence: result.ConfidencePercent / 100,
		Date:       result.Date,
	}, nil
}

// PowerRange is an inclusive watt range
type PowerRange struct {
	Low  float64
	High float64
}

// PrescriptionBand is a zone with its target power range.
// Confidence is a percentage in [0,100].
type PrescriptionBand struct {
	Zone       Zone
	Target     PowerRange
	Method     string
	Confidence float64
}

// CalculateZoneRanges returns FTP-test zone ranges:
// Z1 up to 0.82 x FTP, Z2 up to FTP, Z3 up to 1.15 x FTP
func CalculateZoneRanges(ftp float64) (map[Zone]PowerRange, error) {
	if ftp <= 0 {
		return nil, fmt.Errorf("FTP must be positive, got %v: %w", ftp, ErrInvalidThreshold)
	}
	lt1 := ftp * testLT1Ratio
	lt2 := ftp
	return map[Zone]PowerRange{
		Z1: {Low: 0, High: lt1},
		Z2: {Low: lt1, High: lt2},
		Z3: {Low: lt2, High: ftp * bandZ3FTPMultiple},
	}, nil
}

// CalculateBandsFromFTP builds one prescription band per zone, ordered Z1..Z3
func CalculateBandsFromFTP(ftp float64, method string, confidence float64) ([]PrescriptionBand, error) {
	if method == "" {
		return nil, fmt.Errorf("band method is required")
	}
	if confidence < 0 || confidence > 100 {
		return nil, fmt.Errorf("confidence %v not in [0,100]: %w", confidence, ErrInvalidConfidence)
	}
	ranges, err := CalculateZoneRanges(ftp)
	if err != nil {
		return nil, err
	}
	bands := make([]PrescriptionBand, 0, len(ranges))
	for zone, r := range ranges {
		bands = append(bands, PrescriptionBand{Zone: zone, Target: r, Method: method, Confidence: confidence})
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i].Zone < bands[j].Zone })
	return bands, nil
}

// BandsForEstimate recalculates prescription bands from a stored estimate, anchored on LT2
func BandsForEstimate(e Estimate) ([]PrescriptionBand, error) {
	return CalculateBandsFromFTP(e.LT2, string(e.Method), e.Confidence*100)
}
