package analysis

import "fmt"

// Zone is one of the three Seiler training zones
type Zone int

const (
	Z1 Zone = iota + 1 // below LT1
	Z2                 // between LT1 and LT2
	Z3                 // above LT2
)

// Zones lists all zones in ascending intensity order
var Zones = []Zone{Z1, Z2, Z3}

func (z Zone) String() string {
	switch z {
	case Z1:
		return "Z1"
	case Z2:
		return "Z2"
	case Z3:
		return "Z3"
	default:
		return fmt.Sprintf("Zone(%d)", int(z))
	}
}

// ParseZone converts "Z1"/"Z2"/"Z3" to a Zone
func ParseZone(s string) (Zone, error) {
	switch s {
	case "Z1", "z1":
		return Z1, nil
	case "Z2", "z2":
		return Z2, nil
	case "Z3", "z3":
		return Z3, nil
	}
	return 0, fmt.Errorf("unknown zone %q", s)
}

// ftpFromLT1Ratio back-estimates FTP from LT1 (LT1 sits at ~75% of FTP)
const ftpFromLT1Ratio = 0.75

// z3CeilingFTPMultiple caps Z3 at 150% of the estimated FTP
const z3CeilingFTPMultiple = 1.5

// Thresholds is an athlete's LT1/LT2 power pair in watts
type Thresholds struct {
	LT1 float64
	LT2 float64
}

// NewThresholds validates LT1 > 0 and LT2 > LT1
func NewThresholds(lt1, lt2 float64) (Thresholds, error) {
	if lt1 <= 0 {
		return Thresholds{}, fmt.Errorf("LT1 must be positive, got %v: %w", lt1, ErrInvalidThreshold)
	}
	if lt2 <= 0 {
		return Thresholds{}, fmt.Errorf("LT2 must be positive, got %v: %w", lt2, ErrInvalidThreshold)
	}
	if lt2 <= lt1 {
		return Thresholds{}, fmt.Errorf("LT2 (%v) must be greater than LT1 (%v): %w", lt2, lt1, ErrInvalidThreshold)
	}
	return Thresholds{LT1: lt1, LT2: lt2}, nil
}

// Classify assigns a power value to a zone.
// LT1 itself is Z1 and LT2 itself is Z2.
func Classify(power, lt1, lt2 float64) Zone {
	if power <= lt1 {
		return Z1
	}
	if power <= lt2 {
		return Z2
	}
	return Z3
}

// Classify assigns a power value to a zone using these thresholds
func (t Thresholds) Classify(power float64) Zone {
	return Classify(power, t.LT1, t.LT2)
}

// IntensityZones holds the zone boundaries derived from LT1/LT2
type IntensityZones struct {
	LT1     float64
	LT2     float64
	Z1Upper float64
	Z2Upper float64
	Z3Upper float64
}

// DeriveZones builds zone boundaries from LT1/LT2.
// The Z3 ceiling goes through an FTP estimate taken from LT1, not from LT2.
func DeriveZones(lt1, lt2 float64) (IntensityZones, error) {
	t, err := NewThresholds(lt1, lt2)
	if err != nil {
		return IntensityZones{}, err
	}
	ftpEstimate := t.LT1 / ftpFromLT1Ratio
	return IntensityZones{
		LT1:     t.LT1,
		LT2:     t.LT2,
		Z1Upper: t.LT1,
		Z2Upper: t.LT2,
		Z3Upper: ftpEstimate * z3CeilingFTPMultiple,
	}, nil
}

// Classify assigns a power value to a zone using the derived upper bounds
func (z IntensityZones) Classify(power float64) Zone {
	return Classify(power, z.Z1Upper, z.Z2Upper)
}

// IsBelowLT1 reports whether power is strictly below LT1 (the FATMAX region)
func (z IntensityZones) IsBelowLT1(power float64) bool {
	return power < z.LT1
}

// IsBetweenLT1AndLT2 reports whether LT1 <= power < LT2
func (z IntensityZones) IsBetweenLT1AndLT2(power float64) bool {
	return power >= z.LT1 && power < z.LT2
}

// IsAtOrAboveLT2 reports whether power >= LT2
func (z IntensityZones) IsAtOrAboveLT2(power float64) bool {
	return power >= z.LT2
}
