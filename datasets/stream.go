package datasets

import (
	"errors"
	"io"

	"github.com/knights-analytics/corpora/options"
)

var errStreamClosed = errors.New("batch stream is closed")

// BatchStream is a single pass over one split. Yield returns batches in file
// order and io.EOF after the last one. A stream cannot be restarted; open a new
// one from the Dataset for another pass.
type BatchStream struct {
	dataset   *Dataset
	split     Split
	path      string
	options   *options.Options
	reader    recordReader
	acc       *accumulator
	batchN    int
	samplesN  int
	exhausted bool
	err       error
}

// Yield returns the next batch. Any error ends the stream and is returned again by later calls.
func (s *BatchStream) Yield() (*Batch, error) {
	if s.err != nil {
		return nil, s.err
	}
	for !s.exhausted {
		raw, readErr := s.reader.Read()
		if readErr == io.EOF {
			s.exhausted = true
			break
		}
		if readErr != nil {
			return nil, s.fail(readErr)
		}
		encoded, encodeErr := s.dataset.schema.encode(raw, s.dataset.words, s.dataset.tags)
		if encodeErr != nil {
			return nil, s.fail(s.locate(encodeErr))
		}
		s.acc.add(truncate(encoded, s.options.MaxSequenceLength))
		s.samplesN++
		if s.acc.count >= s.options.BatchSize {
			return s.emit(), nil
		}
	}

	if s.acc.count > 0 && !s.options.DropLast {
		return s.emit(), nil
	}
	dropped := s.acc.count
	s.acc = newAccumulator(s.dataset.schema)
	if s.options.Verbose {
		s.dataset.logger.Info().
			Str("split", s.split.String()).
			Int("dropped", dropped).
			Msgf("completed epoch in %d batches of %d examples", s.batchN, s.options.BatchSize)
	}
	s.err = io.EOF
	return nil, io.EOF
}

// Batches is the number of batches yielded so far.
func (s *BatchStream) Batches() int {
	return s.batchN
}

// Samples is the number of samples read so far, including any held for the next batch.
func (s *BatchStream) Samples() int {
	return s.samplesN
}

// Close releases the split file. It is safe to call more than once.
func (s *BatchStream) Close() error {
	if s.err == nil {
		s.err = errStreamClosed
	}
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	return err
}

func (s *BatchStream) emit() *Batch {
	s.batchN++
	return s.acc.flush(s.dataset.schema, s.options.PadValue)
}

func (s *BatchStream) fail(err error) error {
	s.err = err
	return err
}

// locate turns label conversion failures into a ParseError at the current line.
// Other errors, including those of the caller's lookups, are returned unchanged.
func (s *BatchStream) locate(err error) error {
	var le *labelError
	if errors.As(err, &le) {
		return &ParseError{Path: s.path, Line: s.reader.Line(), Msg: le.Error(), Err: le.err}
	}
	return err
}
