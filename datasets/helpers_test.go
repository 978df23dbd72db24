package datasets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/require"

	"github.com/knights-analytics/corpora/options"
)

const testDataDir = "../testData"

// codePoints encodes every character as its Unicode code point, so no real
// character collides with the padding value 0.
var codePoints = TotalLookup(func(s string) int {
	r, _ := utf8.DecodeRuneInString(s)
	return int(r)
})

func enc(s string) []int64 {
	ids, err := encodeText(codePoints, s)
	if err != nil {
		panic(err)
	}
	return ids
}

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Test failed with error %s", err.Error())
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	check(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietLogger() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: &bytes.Buffer{}}}
}

func bufferLogger(buf *bytes.Buffer) *log.Logger {
	return &log.Logger{Level: log.InfoLevel, Writer: &log.IOWriter{Writer: buf}}
}

func sentimentTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewSentimentDataset(
		filepath.Join(testDataDir, "sentiment", "train.tsv"),
		filepath.Join(testDataDir, "sentiment", "dev.tsv"),
		filepath.Join(testDataDir, "sentiment", "test.tsv"),
		codePoints, WithLogger(quietLogger()))
	check(t, err)
	return ds
}

func nliTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewNLIDataset(
		filepath.Join(testDataDir, "xnli", "train.tsv"),
		filepath.Join(testDataDir, "xnli", "dev.tsv"),
		filepath.Join(testDataDir, "xnli", "test.tsv"),
		codePoints, NLITagLookup(), WithLogger(quietLogger()))
	check(t, err)
	return ds
}

func cmrcTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewReadingComprehensionDataset(
		filepath.Join(testDataDir, "cmrc", "train.json"),
		filepath.Join(testDataDir, "cmrc", "dev.json"),
		filepath.Join(testDataDir, "cmrc", "test.json"),
		codePoints, WithLogger(quietLogger()))
	check(t, err)
	return ds
}

// collect drains a pass and fails the test on error.
func collect(t *testing.T, ds *Dataset, split Split, opts ...options.WithOption) []*Batch {
	t.Helper()
	var batches []*Batch
	for batch, err := range ds.Batches(split, opts...) {
		require.NoError(t, err)
		batches = append(batches, batch)
	}
	return batches
}

func countSamples(t *testing.T, ds *Dataset, split Split) int {
	t.Helper()
	n := 0
	for _, err := range ds.Samples(split) {
		require.NoError(t, err)
		n++
	}
	return n
}
