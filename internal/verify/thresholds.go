package verify

// Thresholds are the tunable constants of the engine. They are read-only
// after construction and safe for unsynchronized concurrent reads.
type Thresholds struct {
	// RealConfidence is the scorer confidence at or above which a signal is
	// labeled REAL.
	RealConfidence int

	// LikelyRealConfidence is the scorer confidence at or above which a
	// signal is labeled LIKELY_REAL and considered real.
	LikelyRealConfidence int

	// MaxEvidenceItems bounds how many retrieved items a scorer considers.
	MaxEvidenceItems int

	// MonthMismatchDays is the claimed-vs-actual gap beyond which a
	// wrong-month claim is reported.
	MonthMismatchDays int

	// YearMismatchDays is the claimed-vs-actual gap beyond which a
	// wrong-year claim is reported.
	YearMismatchDays int

	// OldImageDays is the claimed-vs-capture gap beyond which image reuse
	// is reported.
	OldImageDays int
}

// DefaultThresholds returns the reference tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RealConfidence:       70,
		LikelyRealConfidence: 50,
		MaxEvidenceItems:     20,
		MonthMismatchDays:    60,
		YearMismatchDays:     365,
		OldImageDays:         365,
	}
}

// scorer confidence ceiling; aggregate scores elsewhere cap at 100.
const maxSignalConfidence = 95

// insufficientEvidenceConfidence is returned when a scorer gets zero items.
const insufficientEvidenceConfidence = 20
