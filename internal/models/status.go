package models

// Status is the unified health verdict for a device.
type Status string

const (
	StatusOnline   Status = "online"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusOffline  Status = "offline"

	// StatusUnknown is the pre-first-cycle state of a device. It is never
	// produced by classification, only compared against.
	StatusUnknown Status = "unknown"
)

// statusSeverity orders statuses from worst to best. Unknown statuses rank as
// healthy so they never mask a real problem during aggregation.
var statusSeverity = map[Status]int{
	StatusOffline:  0,
	StatusCritical: 1,
	StatusWarning:  2,
	StatusOnline:   3,
}

// Severity returns the rank of s under the total order
// offline < critical < warning < online.
func (s Status) Severity() int {
	if sev, ok := statusSeverity[s]; ok {
		return sev
	}
	return statusSeverity[StatusOnline]
}

// WorstOf returns the lower-ranked of a and b. Ties keep a, so iterating a
// slice with WorstOf preserves first occurrence in probe order.
func WorstOf(a, b Status) Status {
	if b.Severity() < a.Severity() {
		return b
	}
	return a
}
