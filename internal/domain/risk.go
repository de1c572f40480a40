package domain

// RiskLevel is a qualitative risk rating.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Score maps a risk level to the factor used in success probability.
// Unknown levels score as medium.
func (r RiskLevel) Score() float64 {
	switch r {
	case RiskLow:
		return 0.9
	case RiskHigh:
		return 0.4
	default:
		return 0.7
	}
}

func (r RiskLevel) String() string {
	return string(r)
}

// ThresholdLevel rates value against two ascending cut points:
// above high is RiskHigh, above medium is RiskMedium, otherwise RiskLow.
func ThresholdLevel(value, medium, high float64) RiskLevel {
	switch {
	case value > high:
		return RiskHigh
	case value > medium:
		return RiskMedium
	default:
		return RiskLow
	}
}
