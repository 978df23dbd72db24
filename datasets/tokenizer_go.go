package datasets

import (
	"bytes"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/knights-analytics/corpora/util/fileutil"
)

// TokenizerLookup looks tokens up in the vocabulary of a HuggingFace tokenizer,
// mapping tokens it does not know to oov.
func TokenizerLookup(tk *tokenizer.Tokenizer, oov int) LookupFunc {
	return func(token string) (int, error) {
		if id, ok := tk.TokenToId(token); ok {
			return id, nil
		}
		return oov, nil
	}
}

// LoadTokenizerLookup builds a TokenizerLookup from a tokenizer.json file.
func LoadTokenizerLookup(path string, oov int) (LookupFunc, error) {
	tokenizerBytes, err := fileutil.ReadFileBytes(path)
	if err != nil {
		return nil, err
	}
	tk, err := pretrained.FromReader(bytes.NewReader(tokenizerBytes))
	if err != nil {
		return nil, err
	}
	return TokenizerLookup(tk, oov), nil
}
