package datasets

import (
	"fmt"
	"strconv"

	"github.com/phuslu/log"
)

// RawSample is one record as read from a corpus file, before encoding.
type RawSample struct {
	Texts  []string // sequence fields, in schema order
	Labels []string // categorical labels, in schema order
	Spans  []int    // integer targets carried through unchanged
}

// EncodedSample is a RawSample with its text mapped to indices and its labels to integers.
type EncodedSample struct {
	Sequences [][]int64
	Scalars   []int64
}

// recordReader streams raw samples from one split file. Read returns io.EOF once
// the file is exhausted.
type recordReader interface {
	Read() (RawSample, error)
	Line() int
	Close() error
}

type openFunc func(path string, split Split, logger *log.Logger) (recordReader, error)

type encodeFunc func(raw RawSample, words, tags LookupFunc) (EncodedSample, error)

// Schema describes the fields of one corpus and how to read and encode them.
// Batches hold every sequence field in Sequences order followed by every
// scalar field in Scalars order.
type Schema struct {
	Name      string
	Sequences []string
	Scalars   []string
	needsTags bool
	open      openFunc
	encode    encodeFunc
}

// SentimentSchema reads `label<TAB>sentence` TSV files (ChnSentiCorp).
var SentimentSchema = &Schema{
	Name:      "sentiment",
	Sequences: []string{"sentence"},
	Scalars:   []string{"label"},
	open:      openSentiment,
	encode:    encodeSentiment,
}

// ReadingComprehensionSchema reads SQuAD-style JSON files (CMRC2018).
var ReadingComprehensionSchema = &Schema{
	Name:      "cmrc",
	Sequences: []string{"document", "question"},
	Scalars:   []string{"answer_start", "answer_end"},
	open:      openSquad,
	encode:    encodeReadingComprehension,
}

// NLISchema reads XNLI TSV files. Train files use premise/hypo/label columns,
// dev and test files use sentence1/sentence2/gold_label and are filtered to Chinese rows.
var NLISchema = &Schema{
	Name:      "nli",
	Sequences: []string{"premise", "hypothesis"},
	Scalars:   []string{"label"},
	needsTags: true,
	open:      openNLI,
	encode:    encodeNLI,
}

func (s *Schema) String() string {
	return s.Name
}

func (s *Schema) sequenceIndex(name string) int {
	for i, field := range s.Sequences {
		if field == name {
			return i
		}
	}
	return -1
}

func (s *Schema) scalarIndex(name string) int {
	for i, field := range s.Scalars {
		if field == name {
			return i
		}
	}
	return -1
}

// labelError marks a label that could not be converted. The stream turns it into a
// ParseError pointing at the offending line.
type labelError struct {
	value string
	err   error
}

func (e *labelError) Error() string {
	return fmt.Sprintf("invalid label %q: %v", e.value, e.err)
}

func encodeSentiment(raw RawSample, words, _ LookupFunc) (EncodedSample, error) {
	sentence, err := encodeText(words, raw.Texts[0])
	if err != nil {
		return EncodedSample{}, err
	}
	label, err := strconv.Atoi(raw.Labels[0])
	if err != nil {
		return EncodedSample{}, &labelError{value: raw.Labels[0], err: err}
	}
	return EncodedSample{
		Sequences: [][]int64{sentence},
		Scalars:   []int64{int64(label)},
	}, nil
}

func encodeNLI(raw RawSample, words, tags LookupFunc) (EncodedSample, error) {
	premise, err := encodeText(words, raw.Texts[0])
	if err != nil {
		return EncodedSample{}, err
	}
	hypothesis, err := encodeText(words, raw.Texts[1])
	if err != nil {
		return EncodedSample{}, err
	}
	label, err := tags(raw.Labels[0])
	if err != nil {
		return EncodedSample{}, err
	}
	return EncodedSample{
		Sequences: [][]int64{premise, hypothesis},
		Scalars:   []int64{int64(label)},
	}, nil
}

func encodeReadingComprehension(raw RawSample, words, _ LookupFunc) (EncodedSample, error) {
	document, err := encodeText(words, raw.Texts[0])
	if err != nil {
		return EncodedSample{}, err
	}
	question, err := encodeText(words, raw.Texts[1])
	if err != nil {
		return EncodedSample{}, err
	}
	return EncodedSample{
		Sequences: [][]int64{document, question},
		Scalars:   []int64{int64(raw.Spans[0]), int64(raw.Spans[1])},
	}, nil
}

