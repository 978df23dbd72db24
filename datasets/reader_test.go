package datasets

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, reader recordReader) ([]RawSample, error) {
	t.Helper()
	defer func() {
		check(t, reader.Close())
	}()
	var samples []RawSample
	for {
		sample, err := reader.Read()
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return samples, err
		}
		samples = append(samples, sample)
	}
}

func TestSentimentReader(t *testing.T) {
	path := writeFile(t, "train.tsv", "label\ttext_a\r\n1\t很好 \r\n\n0\t差\n")
	reader, err := openSentiment(path, Train, quietLogger())
	check(t, err)
	samples, err := readAll(t, reader)
	check(t, err)
	assert.Equal(t, []RawSample{
		{Texts: []string{"很好"}, Labels: []string{"1"}},
		{Texts: []string{"差"}, Labels: []string{"0"}},
	}, samples)
}

func TestSentimentReaderColumnCount(t *testing.T) {
	path := writeFile(t, "train.tsv", "label\ttext_a\n1\tgood\n0\tbad\textra\n")
	reader, err := openSentiment(path, Train, quietLogger())
	check(t, err)
	samples, err := readAll(t, reader)
	assert.Len(t, samples, 1)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
	assert.Equal(t, path, parseErr.Path)
}

func TestNLIReaderStripsWhitespace(t *testing.T) {
	path := writeFile(t, "train.tsv", "premise\thypo\tlabel\n你 好 ，  世界\t再　见\tneutral\n")
	reader, err := openNLI(path, Train, quietLogger())
	check(t, err)
	samples, err := readAll(t, reader)
	check(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, []string{"你好，世界", "再见"}, samples[0].Texts)
	assert.Equal(t, []string{"neutral"}, samples[0].Labels)
}

func TestNLIReaderColumnsByName(t *testing.T) {
	path := writeFile(t, "dev.tsv", "sentence2\tgold_label\tlanguage\tsentence1\nB\tentailment\tzh\tA\nD\tneutral\tvi\tC\n")
	reader, err := openNLI(path, Dev, quietLogger())
	check(t, err)
	samples, err := readAll(t, reader)
	check(t, err)
	assert.Equal(t, []RawSample{{Texts: []string{"A", "B"}, Labels: []string{"entailment"}}}, samples)
}

func TestNLIReaderMissingColumns(t *testing.T) {
	// a train-style header cannot be read as a dev split
	path := writeFile(t, "dev.tsv", "premise\thypo\tlabel\na\tb\tneutral\n")
	_, err := openNLI(path, Dev, quietLogger())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
	assert.Contains(t, err.Error(), "sentence1")
}

func TestNLIReaderShortRow(t *testing.T) {
	path := writeFile(t, "train.tsv", "premise\thypo\tlabel\nonly premise\n")
	reader, err := openNLI(path, Train, quietLogger())
	check(t, err)
	_, err = readAll(t, reader)
	assert.ErrorIs(t, err, ErrParse)
}

func TestSquadReaderFirstAnswer(t *testing.T) {
	path := writeFile(t, "dev.json", `{"data":[{"paragraphs":[{"context":"abcdef","qas":[
		{"question":"q1","answers":[{"text":"cd","answer_start":2},{"text":"bcd","answer_start":1}]},
		{"question":"q2","answers":[]},
		{"question":"q3","answers":[{"text":"","answer_start":4}]}
	]}]}]}`)
	reader, err := openSquad(path, Dev, quietLogger())
	check(t, err)
	samples, err := readAll(t, reader)
	check(t, err)
	assert.Equal(t, []RawSample{
		{Texts: []string{"abcdef", "q1"}, Spans: []int{2, 3}},
		{Texts: []string{"abcdef", "q3"}, Spans: []int{4, 3}},
	}, samples)
}

func TestSquadReaderCountsCharacters(t *testing.T) {
	path := writeFile(t, "train.json", `{"data":[{"paragraphs":[{"context":"北京是中国的首都。","qas":[{"question":"哪里？","answers":[{"text":"中国的首都","answer_start":3}]}]}]}]}`)
	reader, err := openSquad(path, Train, quietLogger())
	check(t, err)
	samples, err := readAll(t, reader)
	check(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, []int{3, 7}, samples[0].Spans)
}

func TestSquadReaderMissingKeys(t *testing.T) {
	cases := map[string]string{
		"data":         `{"version":"1"}`,
		"paragraphs":   `{"data":[{"title":"x"}]}`,
		"context":      `{"data":[{"paragraphs":[{"qas":[]}]}]}`,
		"qas":          `{"data":[{"paragraphs":[{"context":"c"}]}]}`,
		"question":     `{"data":[{"paragraphs":[{"context":"c","qas":[{"answers":[]}]}]}]}`,
		"answers":      `{"data":[{"paragraphs":[{"context":"c","qas":[{"question":"q"}]}]}]}`,
		"text":         `{"data":[{"paragraphs":[{"context":"c","qas":[{"question":"q","answers":[{"answer_start":0}]}]}]}]}`,
		"answer_start": `{"data":[{"paragraphs":[{"context":"c","qas":[{"question":"q","answers":[{"text":"c"}]}]}]}]}`,
	}
	for key, content := range cases {
		t.Run(key, func(t *testing.T) {
			path := writeFile(t, "bad.json", content)
			reader, err := openSquad(path, Train, quietLogger())
			if err == nil {
				_, err = readAll(t, reader)
			}
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, parseErr.Msg, `"`+key+`"`)
		})
	}
}

func TestSquadReaderInvalidJSON(t *testing.T) {
	path := writeFile(t, "bad.json", `{"data": [`)
	_, err := openSquad(path, Train, quietLogger())
	assert.ErrorIs(t, err, ErrParse)
}
