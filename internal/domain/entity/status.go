package entity

// Status is the traffic-light escalation status derived from an invoice's
// reclamation level.
type Status string

const (
	StatusGreen  Status = "verde"
	StatusYellow Status = "amarillo"
	StatusRed    Status = "rojo"
)

// ClassifyStatus maps a reclamation level to a status. A nil level means the
// invoice has never been reclaimed and counts as level 0.
//
// Rule: nil or < 2 -> green, == 2 -> yellow, >= 3 -> red.
func ClassifyStatus(level *int) Status {
	if level == nil {
		return StatusGreen
	}
	switch {
	case *level >= 3:
		return StatusRed
	case *level == 2:
		return StatusYellow
	default:
		return StatusGreen
	}
}

// Severity orders statuses for worst-status comparisons: green < yellow < red.
func (s Status) Severity() int {
	switch s {
	case StatusRed:
		return 2
	case StatusYellow:
		return 1
	default:
		return 0
	}
}

// WorstStatus returns the more severe of two statuses.
func WorstStatus(a, b Status) Status {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}
