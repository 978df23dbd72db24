package options

import (
	"fmt"
)

// Options holds the batching configuration of a single pass over a split.
type Options struct {
	// BatchSize is the number of samples per batch. Default: 1.
	BatchSize int
	// DropLast discards a final batch holding fewer than BatchSize samples. Default: false.
	DropLast bool
	// PadValue fills sequence positions past a sample's length. Default: 0.
	PadValue int64
	// MaxSequenceLength truncates sequences longer than this many tokens before padding.
	// Zero disables truncation. Default: 0.
	MaxSequenceLength int
	// Verbose logs a summary when a pass over a split completes.
	Verbose bool
}

func Defaults() *Options {
	return &Options{
		BatchSize: 1,
	}
}

// WithOption is the interface for all option functions.
type WithOption func(o *Options) error

// Apply returns the defaults with opts applied in order.
func Apply(opts ...WithOption) (*Options, error) {
	o := Defaults()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithBatchSize sets the number of samples grouped into each batch.
func WithBatchSize(batchSize int) WithOption {
	return func(o *Options) error {
		if batchSize <= 0 {
			return fmt.Errorf("batch size must be greater than 0, got %d", batchSize)
		}
		o.BatchSize = batchSize
		return nil
	}
}

// WithDropLast drops the last incomplete batch of a split.
func WithDropLast() WithOption {
	return func(o *Options) error {
		o.DropLast = true
		return nil
	}
}

// WithPadValue sets the value used to right-pad sequences. It is independent of
// the out-of-vocabulary index returned by the word lookup.
func WithPadValue(value int64) WithOption {
	return func(o *Options) error {
		o.PadValue = value
		return nil
	}
}

// WithMaxSequenceLength caps every sequence field at maxLength tokens (e.g. 512).
func WithMaxSequenceLength(maxLength int) WithOption {
	return func(o *Options) error {
		if maxLength < 0 {
			return fmt.Errorf("max sequence length must not be negative, got %d", maxLength)
		}
		o.MaxSequenceLength = maxLength
		return nil
	}
}

func WithVerbose() WithOption {
	return func(o *Options) error {
		o.Verbose = true
		return nil
	}
}
