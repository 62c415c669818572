package enums

// RiskLevel bands a trip risk score for display and reporting.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// String implements fmt.Stringer.
func (r RiskLevel) String() string {
	return string(r)
}
