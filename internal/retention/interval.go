package retention

import (
	"fmt"
	"slices"
)

// Interval units, in milliseconds.
const (
	Hour int64 = 60 * 60 * 1000
	Day        = 24 * Hour
)

// Custom is the interval value that marks the custom retention choice as
// active. It is never a valid retention period on its own.
const Custom int64 = 1

// Bounds for the custom retention period, in hours.
const (
	RangeMin int64 = 1
	RangeMax int64 = 365 * 24
)

// Presets lists the selectable retention periods in ascending order.
var Presets = []int64{Day, 7 * Day, 30 * Day, 90 * Day}

// IsPreset reports whether interval is one of the Presets.
func IsPreset(interval int64) bool {
	return slices.Contains(Presets, interval)
}

// IsCustom reports whether the custom input applies to interval. Any value
// outside the preset set counts, not only the Custom sentinel.
func IsCustom(interval int64) bool {
	return !IsPreset(interval)
}

// ValidCustomInterval reports whether hours is an acceptable custom period.
func ValidCustomInterval(hours int64) bool {
	return hours >= RangeMin && hours <= RangeMax
}

// ApplyIntervalRule returns v with CustomInterval cleared when Interval is a
// preset. It must run after every change of Interval.
func ApplyIntervalRule(v Values) Values {
	if IsPreset(v.Interval) {
		v.CustomInterval = nil
	}
	return v
}

// Title returns the label shown for an interval choice.
func Title(interval int64) string {
	switch interval {
	case Custom:
		return "Custom"
	case Day:
		return "24 hours"
	default:
		return fmt.Sprintf("%d days", interval/Day)
	}
}
