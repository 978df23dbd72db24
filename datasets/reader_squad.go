package datasets

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/phuslu/log"

	"github.com/knights-analytics/corpora/util/fileutil"
)

// Pointer fields distinguish a missing key from a zero value.
type squadFile struct {
	Data *[]squadArticle `json:"data"`
}

type squadArticle struct {
	Paragraphs *[]squadParagraph `json:"paragraphs"`
}

type squadParagraph struct {
	Context *string          `json:"context"`
	Qas     *[]squadQuestion `json:"qas"`
}

type squadQuestion struct {
	Question *string        `json:"question"`
	Answers  *[]squadAnswer `json:"answers"`
}

type squadAnswer struct {
	Text        *string `json:"text"`
	AnswerStart *int    `json:"answer_start"`
}

// squadReader walks a decoded SQuAD-style file question by question.
type squadReader struct {
	path      string
	articles  []squadArticle
	article   int
	paragraph int
	question  int
}

func openSquad(path string, _ Split, logger *log.Logger) (recordReader, error) {
	sourceReadCloser, err := fileutil.OpenFile(path)
	if err != nil {
		return nil, err
	}
	var file squadFile
	decodeErr := jsoniter.NewDecoder(sourceReadCloser).Decode(&file)
	if closeErr := fileutil.CloseFile(sourceReadCloser); closeErr != nil {
		return nil, errors.Join(decodeErr, closeErr)
	}
	if decodeErr != nil {
		return nil, &ParseError{Path: path, Msg: "invalid JSON", Err: decodeErr}
	}
	if file.Data == nil {
		return nil, &ParseError{Path: path, Msg: `missing key "data"`}
	}
	logger.Debug().Str("file", path).Int("articles", len(*file.Data)).Msg("loaded reading comprehension file")
	return &squadReader{path: path, articles: *file.Data}, nil
}

func (r *squadReader) Read() (RawSample, error) {
	for r.article < len(r.articles) {
		article := r.articles[r.article]
		if article.Paragraphs == nil {
			return RawSample{}, r.missing("paragraphs", 1)
		}
		if r.paragraph >= len(*article.Paragraphs) {
			r.article++
			r.paragraph, r.question = 0, 0
			continue
		}
		paragraph := (*article.Paragraphs)[r.paragraph]
		if paragraph.Context == nil {
			return RawSample{}, r.missing("context", 2)
		}
		if paragraph.Qas == nil {
			return RawSample{}, r.missing("qas", 2)
		}
		if r.question >= len(*paragraph.Qas) {
			r.paragraph++
			r.question = 0
			continue
		}
		qa := (*paragraph.Qas)[r.question]
		if qa.Question == nil {
			return RawSample{}, r.missing("question", 3)
		}
		if qa.Answers == nil {
			return RawSample{}, r.missing("answers", 3)
		}
		if len(*qa.Answers) == 0 {
			r.question++
			continue
		}
		// Evaluation files list several gold answers per question; only the first is used.
		answer := (*qa.Answers)[0]
		if answer.Text == nil {
			return RawSample{}, r.missing("text", 4)
		}
		if answer.AnswerStart == nil {
			return RawSample{}, r.missing("answer_start", 4)
		}
		r.question++
		start := *answer.AnswerStart
		end := start + utf8.RuneCountInString(*answer.Text) - 1
		return RawSample{
			Texts: []string{*paragraph.Context, *qa.Question},
			Spans: []int{start, end},
		}, nil
	}
	return RawSample{}, io.EOF
}

// missing reports key absent from the object at the given nesting depth:
// 1 article, 2 paragraph, 3 question, 4 first answer.
func (r *squadReader) missing(key string, depth int) error {
	location := fmt.Sprintf("data[%d]", r.article)
	if depth >= 2 {
		location += fmt.Sprintf(".paragraphs[%d]", r.paragraph)
	}
	if depth >= 3 {
		location += fmt.Sprintf(".qas[%d]", r.question)
	}
	if depth >= 4 {
		location += ".answers[0]"
	}
	return &ParseError{Path: r.path, Msg: fmt.Sprintf("missing key %q at %s", key, location)}
}

func (r *squadReader) Line() int {
	return 0
}

// Close is a no-op: the file is decoded and closed when the reader is opened.
func (r *squadReader) Close() error {
	return nil
}
