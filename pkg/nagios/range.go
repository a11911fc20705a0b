package nagios

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range is one parsed threshold range in the standard plugin notation:
//
//	10       alert if value is outside [0, 10]
//	10:      alert if value < 10
//	~:10     alert if value > 10
//	10:20    alert if value is outside [10, 20]
//	@10:20   alert if value is inside [10, 20]
//
// A "~" bound means unbounded on that side.
type Range struct {
	start  float64
	end    float64
	inside bool // "@" prefix: alert when inside instead of outside
}

// ParseRange parses a range spec. Malformed specs are a configuration
// error and must be rejected before any check runs.
func ParseRange(spec string) (*Range, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return nil, fmt.Errorf("empty range spec")
	}

	r := &Range{start: 0, end: math.Inf(1)}
	if strings.HasPrefix(raw, "@") {
		r.inside = true
		raw = raw[1:]
		if raw == "" {
			return nil, fmt.Errorf("empty range spec after @ in %q", spec)
		}
	}

	var startPart, endPart string
	if i := strings.Index(raw, ":"); i >= 0 {
		startPart, endPart = raw[:i], raw[i+1:]
	} else {
		// Bare number: implicit [0, N].
		startPart, endPart = "", raw
	}

	switch startPart {
	case "":
		r.start = 0
	case "~":
		r.start = math.Inf(-1)
	default:
		v, err := strconv.ParseFloat(startPart, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q in %q", startPart, spec)
		}
		r.start = v
	}

	switch endPart {
	case "", "~":
		r.end = math.Inf(1)
	default:
		v, err := strconv.ParseFloat(endPart, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q in %q", endPart, spec)
		}
		r.end = v
	}

	if r.start > r.end {
		return nil, fmt.Errorf("range start exceeds end in %q", spec)
	}
	return r, nil
}

// Alerts reports whether value trips this range.
func (r *Range) Alerts(value float64) bool {
	outside := value < r.start || value > r.end
	if r.inside {
		return !outside
	}
	return outside
}

// Threshold pairs the warning and critical ranges of one check.
type Threshold struct {
	Warning  *Range
	Critical *Range
}

// ParseThreshold validates both range specs up front.
func ParseThreshold(warning, critical string) (Threshold, error) {
	w, err := ParseRange(warning)
	if err != nil {
		return Threshold{}, fmt.Errorf("warning threshold: %w", err)
	}
	c, err := ParseRange(critical)
	if err != nil {
		return Threshold{}, fmt.Errorf("critical threshold: %w", err)
	}
	return Threshold{Warning: w, Critical: c}, nil
}

// Evaluate classifies value. Critical wins over warning when both trip.
func (t Threshold) Evaluate(value float64) Status {
	if t.Critical != nil && t.Critical.Alerts(value) {
		return StatusCritical
	}
	if t.Warning != nil && t.Warning.Alerts(value) {
		return StatusWarning
	}
	return StatusOK
}
