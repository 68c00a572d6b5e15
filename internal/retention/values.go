package retention

import "strings"

// Values is the state of the statistics settings form.
type Values struct {
	Enabled bool
	// Interval is the retention period in milliseconds, or Custom.
	Interval int64
	// CustomInterval is the user-entered retention period in hours. nil
	// means no value has been entered.
	CustomInterval *int64
	// Ignored holds one domain per line.
	Ignored string
}

// withDefaults fills the unset fields of v.
func (v Values) withDefaults() Values {
	if v.Interval == 0 {
		v.Interval = Day
	}
	if v.CustomInterval != nil && *v.CustomInterval == 0 {
		v.CustomInterval = nil
	}
	return v
}

// clone returns a copy of v that shares no memory with it.
func (v Values) clone() Values {
	if v.CustomInterval != nil {
		h := *v.CustomInterval
		v.CustomInterval = &h
	}
	return v
}

// IsCustom reports whether the custom retention choice is active.
func (v Values) IsCustom() bool {
	return IsCustom(v.Interval)
}

// IntervalHours returns the effective retention period in hours. It returns
// 0 when a custom period is selected but not entered.
func (v Values) IntervalHours() int64 {
	if v.IsCustom() {
		if v.CustomInterval == nil {
			return 0
		}
		return *v.CustomInterval
	}
	return v.Interval / Hour
}

// IgnoredDomains splits the ignored list into normalized lines.
func (v Values) IgnoredDomains() []string {
	norm := TrimLinesAndRemoveEmpty(v.Ignored)
	if norm == "" {
		return []string{}
	}
	return strings.Split(norm, "\n")
}

// FromSettings builds form values from stored settings. An hour count that
// matches a preset selects that preset; anything else selects the custom
// choice with hours as its value.
func FromSettings(enabled bool, hours int64, ignored []string) Values {
	v := Values{
		Enabled: enabled,
		Ignored: strings.Join(ignored, "\n"),
	}
	if ms := hours * Hour; IsPreset(ms) {
		v.Interval = ms
	} else {
		v.Interval = Custom
		v.CustomInterval = &hours
	}
	return v
}

// TrimLinesAndRemoveEmpty trims every line of s and drops the blank ones.
// Line order is preserved.
func TrimLinesAndRemoveEmpty(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
