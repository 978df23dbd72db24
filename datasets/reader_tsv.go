package datasets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phuslu/log"

	"github.com/knights-analytics/corpora/util/fileutil"
)

// rowFunc turns the columns of one data row into a sample. keep is false for rows
// that are filtered out.
type rowFunc func(columns []string) (sample RawSample, keep bool, err error)

// bindFunc inspects the header and returns the row parser for the file.
type bindFunc func(header []string, split Split) (rowFunc, error)

type tsvReader struct {
	path       string
	sourceFile io.ReadCloser
	reader     *bufio.Reader
	row        rowFunc
	line       int
	eof        bool
}

func openTSV(path string, split Split, logger *log.Logger, bind bindFunc) (recordReader, error) {
	sourceReadCloser, err := fileutil.OpenFile(path)
	if err != nil {
		return nil, err
	}
	r := &tsvReader{
		path:       path,
		sourceFile: sourceReadCloser,
		reader:     bufio.NewReader(sourceReadCloser),
	}

	headerBytes, readErr := fileutil.ReadLine(r.reader)
	if readErr == io.EOF && len(headerBytes) == 0 {
		logger.Info().Str("file", path).Msg("empty file, no header found")
		r.eof = true
		return r, nil
	}
	if readErr != nil && readErr != io.EOF {
		return nil, errors.Join(readErr, r.Close())
	}
	r.line = 1
	header := strings.Split(strings.TrimSpace(string(headerBytes)), "\t")
	logger.Info().Str("file", path).Strs("columns", header).Msg("detected header")

	row, err := bind(header, split)
	if err != nil {
		return nil, errors.Join(&ParseError{Path: path, Line: 1, Msg: "unexpected header", Err: err}, r.Close())
	}
	r.row = row
	return r, nil
}

func (r *tsvReader) Read() (RawSample, error) {
	for !r.eof {
		lineBytes, err := fileutil.ReadLine(r.reader)
		if err == io.EOF {
			r.eof = true
			break
		}
		if err != nil {
			return RawSample{}, err
		}
		r.line++
		text := strings.TrimSpace(string(lineBytes))
		if text == "" {
			continue
		}
		sample, keep, err := r.row(strings.Split(text, "\t"))
		if err != nil {
			return RawSample{}, &ParseError{Path: r.path, Line: r.line, Msg: "malformed row", Err: err}
		}
		if keep {
			return sample, nil
		}
	}
	return RawSample{}, io.EOF
}

func (r *tsvReader) Line() int {
	return r.line
}

func (r *tsvReader) Close() error {
	if r.sourceFile == nil {
		return nil
	}
	err := fileutil.CloseFile(r.sourceFile)
	r.sourceFile = nil
	return err
}

func openSentiment(path string, split Split, logger *log.Logger) (recordReader, error) {
	return openTSV(path, split, logger, bindSentiment)
}

// bindSentiment reads label and sentence from fixed positions; the header only
// documents them.
func bindSentiment(_ []string, _ Split) (rowFunc, error) {
	return func(columns []string) (RawSample, bool, error) {
		if len(columns) != 2 {
			return RawSample{}, false, fmt.Errorf("expected 2 columns (label, sentence), got %d", len(columns))
		}
		return RawSample{Texts: []string{columns[1]}, Labels: []string{columns[0]}}, true, nil
	}, nil
}

func openNLI(path string, split Split, logger *log.Logger) (recordReader, error) {
	return openTSV(path, split, logger, bindNLI)
}

// nliLanguage is the only language kept from the multilingual dev and test files.
const nliLanguage = "zh"

func bindNLI(header []string, split Split) (rowFunc, error) {
	if split == Train {
		columns, err := findColumns(header, "premise", "hypo", "label")
		if err != nil {
			return nil, err
		}
		premise, hypo, label := columns[0], columns[1], columns[2]
		width := max(premise, hypo, label) + 1
		return func(row []string) (RawSample, bool, error) {
			if len(row) < width {
				return RawSample{}, false, fmt.Errorf("expected at least %d columns, got %d", width, len(row))
			}
			return nliSample(row[premise], row[hypo], row[label]), true, nil
		}, nil
	}

	columns, err := findColumns(header, "language", "sentence1", "sentence2", "gold_label")
	if err != nil {
		return nil, err
	}
	language, sentence1, sentence2, label := columns[0], columns[1], columns[2], columns[3]
	width := max(language, sentence1, sentence2, label) + 1
	return func(row []string) (RawSample, bool, error) {
		if len(row) <= language {
			return RawSample{}, false, fmt.Errorf("expected at least %d columns, got %d", width, len(row))
		}
		if row[language] != nliLanguage {
			return RawSample{}, false, nil
		}
		if len(row) < width {
			return RawSample{}, false, fmt.Errorf("expected at least %d columns, got %d", width, len(row))
		}
		return nliSample(row[sentence1], row[sentence2], row[label]), true, nil
	}, nil
}

func nliSample(premise, hypothesis, label string) RawSample {
	return RawSample{
		Texts:  []string{stripSpaces(premise), stripSpaces(hypothesis)},
		Labels: []string{label},
	}
}

// stripSpaces removes every whitespace character, including those between words.
func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// findColumns returns the index of the first header column matching each name.
func findColumns(header []string, names ...string) ([]int, error) {
	indices := make([]int, len(names))
	var missing []string
	for i, name := range names {
		indices[i] = -1
		for j, column := range header {
			if column == name {
				indices[i] = j
				break
			}
		}
		if indices[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %s in header %v", strings.Join(missing, ", "), header)
	}
	return indices, nil
}
