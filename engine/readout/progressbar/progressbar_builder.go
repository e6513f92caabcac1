package progressbar

// Option is a functional option for configuring a Bar.
type Option func(b *Bar)

// WithMax sets the full-scale value in megapixels. Non-positive values keep the default.
//
// Parameters:
//   - megapixels: the maximum
//
// Returns:
//   - Option: option function to apply
func WithMax(megapixels float64) Option {
	return func(b *Bar) {
		b.max = megapixels
	}
}

// WithThresholds replaces the default marker set.
//
// Parameters:
//   - thresholds: the marker definitions
//
// Returns:
//   - Option: option function to apply
func WithThresholds(thresholds ...Threshold) Option {
	return func(b *Bar) {
		b.thresholds = thresholds
	}
}
