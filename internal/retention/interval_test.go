package retention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Ascending(t *testing.T) {
	for i := 1; i < len(Presets); i++ {
		assert.Less(t, Presets[i-1], Presets[i])
	}
	assert.False(t, IsPreset(Custom))
}

func TestIsCustom(t *testing.T) {
	assert.True(t, IsCustom(Custom))
	assert.True(t, IsCustom(3*Day))
	assert.False(t, IsCustom(Day))
	assert.False(t, IsCustom(90*Day))
}

func TestApplyIntervalRule_Idempotent(t *testing.T) {
	in := Values{Interval: 7 * Day, CustomInterval: ptr(12)}
	once := ApplyIntervalRule(in)
	twice := ApplyIntervalRule(once)

	assert.Nil(t, once.CustomInterval)
	assert.Equal(t, once, twice)

	custom := Values{Interval: Custom, CustomInterval: ptr(12)}
	assert.Equal(t, custom, ApplyIntervalRule(custom))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Custom", Title(Custom))
	assert.Equal(t, "24 hours", Title(Day))
	assert.Equal(t, "7 days", Title(7*Day))
	assert.Equal(t, "90 days", Title(90*Day))
}

func TestTrimLinesAndRemoveEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"example", "a.com\n\n  b.com  \n\n", "a.com\nb.com"},
		{"empty", "", ""},
		{"only blanks", "\n  \n\t\n", ""},
		{"crlf", "a.com\r\nb.com\r\n", "a.com\nb.com"},
		{"order kept", "z.com\na.com", "z.com\na.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimLinesAndRemoveEmpty(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, TrimLinesAndRemoveEmpty(got))
		})
	}
}

func TestFromSettings_PresetHours(t *testing.T) {
	v := FromSettings(true, 24*30, []string{"a.com", "b.com"})
	assert.True(t, v.Enabled)
	assert.Equal(t, 30*Day, v.Interval)
	assert.Nil(t, v.CustomInterval)
	assert.Equal(t, "a.com\nb.com", v.Ignored)
	assert.Equal(t, int64(720), v.IntervalHours())
}

func TestFromSettings_CustomHours(t *testing.T) {
	v := FromSettings(false, 36, nil)
	assert.Equal(t, Custom, v.Interval)
	require.NotNil(t, v.CustomInterval)
	assert.Equal(t, int64(36), *v.CustomInterval)
	assert.Equal(t, int64(36), v.IntervalHours())
	assert.Equal(t, []string{}, v.IgnoredDomains())
}

func TestIntervalHours_CustomWithoutValue(t *testing.T) {
	assert.Zero(t, Values{Interval: Custom}.IntervalHours())
}

func TestIgnoredDomains_Normalizes(t *testing.T) {
	v := Values{Ignored: " a.com\n\nb.com "}
	assert.Equal(t, []string{"a.com", "b.com"}, v.IgnoredDomains())
}
