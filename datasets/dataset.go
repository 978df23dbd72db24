// Package datasets streams the sentiment, reading comprehension and NLI corpora as padded batches
// of integer sequences.
package datasets

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/phuslu/log"

	"github.com/knights-analytics/corpora/options"
)

// Dataset binds a corpus schema to its three split files and the lookups used to encode them.
// A Dataset holds no state between passes; each call to Open, Batches or Samples reads its
// split file from the start. Streams of the same Dataset must not be used concurrently.
type Dataset struct {
	schema *Schema
	paths  [3]string
	words  LookupFunc
	tags   LookupFunc
	logger *log.Logger
}

// DatasetOption configures a Dataset at construction time.
type DatasetOption func(d *Dataset)

// WithLogger sets the logger used for header diagnostics and epoch summaries.
// The default is log.DefaultLogger.
func WithLogger(logger *log.Logger) DatasetOption {
	return func(d *Dataset) {
		d.logger = logger
	}
}

// NewSentimentDataset creates a dataset over `label<TAB>sentence` TSV files.
// Batches hold (sentence, label).
func NewSentimentDataset(trainPath, devPath, testPath string, words LookupFunc, opts ...DatasetOption) (*Dataset, error) {
	return newDataset(SentimentSchema, [3]string{trainPath, devPath, testPath}, words, nil, opts)
}

// NewReadingComprehensionDataset creates a dataset over SQuAD-style JSON files.
// Batches hold (document, question, answer_start, answer_end), with answer_end inclusive.
func NewReadingComprehensionDataset(trainPath, devPath, testPath string, words LookupFunc, opts ...DatasetOption) (*Dataset, error) {
	return newDataset(ReadingComprehensionSchema, [3]string{trainPath, devPath, testPath}, words, nil, opts)
}

// NewNLIDataset creates a dataset over XNLI TSV files. Batches hold (premise, hypothesis, label),
// with label produced by tags; NLITagLookup covers the labels used by XNLI.
func NewNLIDataset(trainPath, devPath, testPath string, words, tags LookupFunc, opts ...DatasetOption) (*Dataset, error) {
	return newDataset(NLISchema, [3]string{trainPath, devPath, testPath}, words, tags, opts)
}

func newDataset(schema *Schema, paths [3]string, words, tags LookupFunc, opts []DatasetOption) (*Dataset, error) {
	d := &Dataset{
		schema: schema,
		paths:  paths,
		words:  words,
		tags:   tags,
		logger: &log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dataset) Validate() error {
	if d.paths[Train] == "" {
		return fmt.Errorf("training path is required")
	}
	if d.words == nil {
		return fmt.Errorf("word lookup is required")
	}
	if d.schema.needsTags && d.tags == nil {
		return fmt.Errorf("tag lookup is required for the %s corpus", d.schema.Name)
	}
	if d.logger == nil {
		return fmt.Errorf("logger must not be nil")
	}
	return nil
}

func (d *Dataset) Schema() *Schema {
	return d.schema
}

// Path returns the file bound to split, or an empty string if none was given.
func (d *Dataset) Path(split Split) string {
	if split < Train || split > Test {
		return ""
	}
	return d.paths[split]
}

func (d *Dataset) openReader(split Split) (recordReader, string, error) {
	path := d.Path(split)
	if path == "" {
		return nil, "", fmt.Errorf("no file configured for the %s split", split)
	}
	reader, err := d.schema.open(path, split, d.logger)
	if err != nil {
		return nil, path, fmt.Errorf("opening %s split %s: %w", split, path, err)
	}
	return reader, path, nil
}

// Open starts a pass over split. The caller must Close the stream.
func (d *Dataset) Open(split Split, opts ...options.WithOption) (*BatchStream, error) {
	batchOptions, err := options.Apply(opts...)
	if err != nil {
		return nil, err
	}
	reader, path, err := d.openReader(split)
	if err != nil {
		return nil, err
	}
	return &BatchStream{
		dataset: d,
		split:   split,
		path:    path,
		options: batchOptions,
		reader:  reader,
		acc:     newAccumulator(d.schema),
	}, nil
}

// Batches returns a single-use sequence of the batches of split. The split file is opened
// when iteration starts and closed when it ends, including when the loop exits early.
// An error is yielded once, with a nil batch, and ends the sequence.
func (d *Dataset) Batches(split Split, opts ...options.WithOption) iter.Seq2[*Batch, error] {
	return func(yield func(*Batch, error) bool) {
		stream, err := d.Open(split, opts...)
		if err != nil {
			yield(nil, err)
			return
		}
		for {
			batch, yieldErr := stream.Yield()
			if yieldErr == io.EOF {
				if closeErr := stream.Close(); closeErr != nil {
					yield(nil, closeErr)
				}
				return
			}
			if yieldErr != nil {
				if closeErr := stream.Close(); closeErr != nil {
					yieldErr = errors.Join(yieldErr, closeErr)
				}
				yield(nil, yieldErr)
				return
			}
			if !yield(batch, nil) {
				_ = stream.Close()
				return
			}
		}
	}
}

func (d *Dataset) TrainSet(opts ...options.WithOption) iter.Seq2[*Batch, error] {
	return d.Batches(Train, opts...)
}

func (d *Dataset) DevSet(opts ...options.WithOption) iter.Seq2[*Batch, error] {
	return d.Batches(Dev, opts...)
}

func (d *Dataset) TestSet(opts ...options.WithOption) iter.Seq2[*Batch, error] {
	return d.Batches(Test, opts...)
}

// Samples returns the raw samples of split in file order, before encoding.
func (d *Dataset) Samples(split Split) iter.Seq2[RawSample, error] {
	return func(yield func(RawSample, error) bool) {
		reader, _, err := d.openReader(split)
		if err != nil {
			yield(RawSample{}, err)
			return
		}
		defer func() {
			_ = reader.Close()
		}()
		for {
			sample, readErr := reader.Read()
			if readErr == io.EOF {
				return
			}
			if readErr != nil {
				yield(RawSample{}, readErr)
				return
			}
			if !yield(sample, nil) {
				return
			}
		}
	}
}
