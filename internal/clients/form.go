// Package clients holds the per-client upstream DNS form: the upstream list,
// with the same blur normalization as the ignored domains, and the upstream
// cache switch and size.
package clients

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/runnerr0/statkeep/internal/retention"
)

// ErrSubmitDisabled is returned by Submit when CanSubmit is false.
var ErrSubmitDisabled = errors.New("submit is disabled")

// Props configures a Form.
type Props struct {
	InitialValues Values
	Processing    bool

	OnSubmit func(ctx context.Context, v Values) error
}

// Form mediates between user input and Values. A Form is not safe for
// concurrent use.
type Form struct {
	values     Values
	processing bool
	submitting bool

	onSubmit func(ctx context.Context, v Values) error
}

// NewForm returns a form initialized from p.InitialValues.
func NewForm(p Props) *Form {
	return &Form{
		values:     p.InitialValues.clone(),
		processing: p.Processing,
		onSubmit:   p.OnSubmit,
	}
}

// Values returns a snapshot of the current values.
func (f *Form) Values() Values {
	return f.values.clone()
}

// SetUpstreams stores raw text as typed.
func (f *Form) SetUpstreams(raw string) {
	f.values.Upstreams = raw
}

// BlurUpstreams normalizes raw and commits it when the field loses focus.
func (f *Form) BlurUpstreams(raw string) {
	f.values.Upstreams = retention.TrimLinesAndRemoveEmpty(raw)
}

// SetCacheEnabled toggles the per-client upstream cache.
func (f *Form) SetCacheEnabled(enabled bool) {
	f.values.CacheEnabled = enabled
}

// SetCacheSize parses text as a base-10 byte count. Text that does not parse
// or falls outside [CacheSizeMin, CacheSizeMax] leaves the size absent.
func (f *Form) SetCacheSize(text string) {
	n, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil || n > CacheSizeMax {
		f.values.CacheSize = nil
		return
	}
	size := uint32(n)
	f.values.CacheSize = &size
}

// SetProcessing mirrors the caller's save-in-progress flag.
func (f *Form) SetProcessing(processing bool) {
	f.processing = processing
}

// CanSubmit reports whether the values may be submitted. An enabled cache
// needs a size.
func (f *Form) CanSubmit() bool {
	if f.submitting || f.processing {
		return false
	}
	return !f.values.CacheEnabled || f.values.CacheSize != nil
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

	return f.onSubmit(ctx, f.Values())
}
