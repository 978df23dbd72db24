package datasets

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/knights-analytics/corpora/util/fileutil"
)

// LookupFunc maps a character, token or tag to an integer index. Errors it returns
// abort the current pass and reach the caller unchanged.
type LookupFunc func(key string) (int, error)

// MapLookup returns a lookup over vocab that maps unknown keys to oov. By convention
// oov is 0, the same value used for padding unless options.WithPadValue changes it.
func MapLookup(vocab map[string]int, oov int) LookupFunc {
	return func(key string) (int, error) {
		if id, ok := vocab[key]; ok {
			return id, nil
		}
		return oov, nil
	}
}

// StrictMapLookup returns a lookup over m that fails with an UnknownKeyError for unknown keys.
func StrictMapLookup(m map[string]int) LookupFunc {
	return func(key string) (int, error) {
		if id, ok := m[key]; ok {
			return id, nil
		}
		return 0, &UnknownKeyError{Key: key}
	}
}

// TotalLookup adapts a function that cannot fail.
func TotalLookup(f func(string) int) LookupFunc {
	return func(key string) (int, error) {
		return f(key), nil
	}
}

// NLITags maps XNLI labels to classes. The corpora disagree on the spelling of the
// contradiction label, so both spellings share a class.
var NLITags = map[string]int{
	"neutral":       0,
	"entailment":    1,
	"contradiction": 2,
	"contradictory": 2,
}

// NLITagLookup returns a strict lookup over NLITags.
func NLITagLookup() LookupFunc {
	return StrictMapLookup(NLITags)
}

// LoadVocabulary reads a vocabulary with one token per line, such as a BERT vocab.txt.
// A token's index is its 0-based line number. Repeated tokens keep their first index.
func LoadVocabulary(path string) (vocab map[string]int, err error) {
	sourceReadCloser, err := fileutil.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, fileutil.CloseFile(sourceReadCloser))
	}()

	vocab = map[string]int{}
	reader := bufio.NewReader(sourceReadCloser)
	for index := 0; ; index++ {
		lineBytes, readErr := fileutil.ReadLine(reader)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
		token := strings.TrimRight(string(lineBytes), "\r")
		if token == "" {
			continue
		}
		if _, ok := vocab[token]; !ok {
			vocab[token] = index
		}
	}
	return vocab, nil
}
