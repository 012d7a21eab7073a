package diag

// Severity defines the weight of a diagnostic, mirroring the standard's
// own MUST/SHOULD terminology.
type Severity uint8

const (
	// SevInfo is for advisory notes that never affect a verdict
	// (e.g. "analysis incomplete" degradation markers).
	SevInfo Severity = iota
	// SevShould marks advisory rule violations.
	SevShould
	// SevMust marks mandatory rule violations; any remaining MUST finding
	// fails its audit category.
	SevMust
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevShould:
		return "SHOULD"
	case SevMust:
		return "MUST"
	}
	return "UNKNOWN"
}

// ParseSeverity maps a config string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "info", "INFO":
		return SevInfo, true
	case "should", "SHOULD":
		return SevShould, true
	case "must", "MUST":
		return SevMust, true
	}
	return SevInfo, false
}
