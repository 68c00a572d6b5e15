// Package retention holds the statistics settings form: the rules tying the
// preset and custom retention choices together, ignored-list normalization
// and submit gating.
package retention

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSubmitDisabled is returned by Submit when CanSubmit is false.
	ErrSubmitDisabled = errors.New("submit is disabled")

	// ErrResetDisabled is returned by Reset when CanReset is false.
	ErrResetDisabled = errors.New("reset is disabled")

	// ErrUnknownPreset is returned by SelectPreset for values outside Presets.
	ErrUnknownPreset = errors.New("unknown retention preset")
)

// Props configures a Form.
type Props struct {
	InitialValues   Values
	Processing      bool
	ProcessingReset bool

	// OnSubmit receives a snapshot of the values. It persists them; the
	// form does not.
	OnSubmit func(ctx context.Context, v Values) error
	// OnReset clears the collected statistics.
	OnReset func(ctx context.Context) error
}

// Form mediates between user input and Values. A Form is not safe for
// concurrent use.
type Form struct {
	values Values

	processing      bool
	processingReset bool
	submitting      bool
	resetting       bool

	onSubmit func(ctx context.Context, v Values) error
	onReset  func(ctx context.Context) error
}

// NewForm returns a form initialized from p.InitialValues.
func NewForm(p Props) *Form {
	f := &Form{
		values:          p.InitialValues.clone().withDefaults(),
		processing:      p.Processing,
		processingReset: p.ProcessingReset,
		onSubmit:        p.OnSubmit,
		onReset:         p.OnReset,
	}
	f.intervalChanged()
	return f
}

// setInterval is the only path that writes values.Interval.
func (f *Form) setInterval(v int64) {
	f.values.Interval = v
	f.intervalChanged()
}

func (f *Form) intervalChanged() {
	f.values = ApplyIntervalRule(f.values)
}

// Values returns a snapshot of the current values.
func (f *Form) Values() Values {
	return f.values.clone()
}

// IsCustom reports whether the custom retention input is active.
func (f *Form) IsCustom() bool {
	return IsCustom(f.values.Interval)
}

// SetEnabled toggles statistics collection.
func (f *Form) SetEnabled(enabled bool) {
	f.values.Enabled = enabled
}

// SelectPreset chooses one of the preset retention periods.
func (f *Form) SelectPreset(interval int64) error {
	if !IsPreset(interval) {
		return fmt.Errorf("%w: %d", ErrUnknownPreset, interval)
	}
	f.setInterval(interval)
	return nil
}

// SelectCustom chooses the custom retention period.
func (f *Form) SelectCustom() {
	f.setInterval(Custom)
}

// SetCustomInterval parses text as a base-10 hour count. Text that does not
// parse leaves the custom period absent, which keeps submit disabled. The
// call is ignored while a preset is selected.
func (f *Form) SetCustomInterval(text string) {
	if !f.IsCustom() {
		return
	}
	h, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		f.values.CustomInterval = nil
		return
	}
	f.values.CustomInterval = &h
}

// SetIgnored stores raw text as typed.
func (f *Form) SetIgnored(raw string) {
	f.values.Ignored = raw
}

// BlurIgnored normalizes raw and commits it when the field loses focus.
func (f *Form) BlurIgnored(raw string) {
	f.values.Ignored = TrimLinesAndRemoveEmpty(raw)
}

// SetProcessing mirrors the caller's save-in-progress flag.
func (f *Form) SetProcessing(processing bool) {
	f.processing = processing
}

// SetProcessingReset mirrors the caller's reset-in-progress flag.
func (f *Form) SetProcessingReset(processing bool) {
	f.processingReset = processing
}

// CanSubmit reports whether the values may be submitted.
func (f *Form) CanSubmit() bool {
	if f.submitting || f.processing {
		return false
	}
	if f.IsCustom() {
		ci := f.values.CustomInterval
		return ci != nil && ValidCustomInterval(*ci)
	}
	return true
}

// Submit hands a snapshot of the values to OnSubmit.
func (f *Form) Submit(ctx context.Context) error {
	if !f.CanSubmit() {
		return ErrSubmitDisabled
	}
	if f.onSubmit == nil {
		return nil
	}

	f.submitting = true
	defer func() { f.submitting = false }()

	return f.onSubmit(ctx, ApplyIntervalRule(f.Values()))
}

// CanReset reports whether a statistics reset may be requested.
func (f *Form) CanReset() bool {
	return !f.processingReset && !f.resetting
}

// Reset calls OnReset.
func (f *Form) Reset(ctx context.Context) error {
	if !f.CanReset() {
		return ErrResetDisabled
	}
	if f.onReset == nil {
		return nil
	}

	f.resetting = true
	defer func() { f.resetting = false }()

	return f.onReset(ctx)
}
