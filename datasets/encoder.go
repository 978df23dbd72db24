package datasets

import "unicode/utf8"

// encodeText maps every character of text to its index, in order.
// Errors from lookup are returned as they are.
func encodeText(lookup LookupFunc, text string) ([]int64, error) {
	ids := make([]int64, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		id, err := lookup(string(r))
		if err != nil {
			return nil, err
		}
		ids = append(ids, int64(id))
	}
	return ids, nil
}

// truncate caps every sequence of sample at maxLength. Zero means no cap.
func truncate(sample EncodedSample, maxLength int) EncodedSample {
	if maxLength <= 0 {
		return sample
	}
	for i, seq := range sample.Sequences {
		if len(seq) > maxLength {
			sample.Sequences[i] = seq[:maxLength]
		}
	}
	return sample
}
