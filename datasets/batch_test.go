package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestPadSequences(t *testing.T) {
	padded, lengths := padSequences([][]int64{{1, 2}, {}, {3, 4, 5}}, 0)
	assert.Equal(t, [][]int64{{1, 2, 0}, {0, 0, 0}, {3, 4, 5}}, padded)
	assert.Equal(t, []int{2, 0, 3}, lengths)

	padded, _ = padSequences([][]int64{{7}, {8, 9}}, -2)
	assert.Equal(t, [][]int64{{7, -2}, {8, 9}}, padded)

	// rows must not share capacity with each other
	padded, _ = padSequences([][]int64{{1}, {2}}, 0)
	padded[0] = append(padded[0], 99)
	assert.Equal(t, []int64{2}, padded[1])
}

func TestAccumulatorFlush(t *testing.T) {
	acc := newAccumulator(ReadingComprehensionSchema)
	acc.add(EncodedSample{Sequences: [][]int64{{1, 2, 3}, {4}}, Scalars: []int64{0, 1}})
	acc.add(EncodedSample{Sequences: [][]int64{{5}, {6, 7}}, Scalars: []int64{2, 2}})

	batch := acc.flush(ReadingComprehensionSchema, 0)
	assert.Equal(t, 2, batch.Size)
	assert.Equal(t, [][]int64{{1, 2, 3}, {5, 0, 0}}, batch.Sequence("document"))
	assert.Equal(t, [][]int64{{4, 0}, {6, 7}}, batch.Sequence("question"))
	assert.Equal(t, []int64{0, 2}, batch.Scalar("answer_start"))
	assert.Equal(t, []int64{1, 2}, batch.Scalar("answer_end"))
	assert.Nil(t, batch.Sequence("premise"))
	assert.Nil(t, batch.Scalar("label"))

	assert.Equal(t, 0, acc.count)
	acc.add(EncodedSample{Sequences: [][]int64{{8}, {9}}, Scalars: []int64{3, 3}})
	next := acc.flush(ReadingComprehensionSchema, 0)
	assert.Equal(t, 1, next.Size)
	assert.Equal(t, [][]int64{{8}}, next.Sequence("document"))
	// the first batch is not affected by later samples
	assert.Equal(t, []int64{0, 2}, batch.Scalar("answer_start"))
}

func TestBatchTensors(t *testing.T) {
	acc := newAccumulator(NLISchema)
	acc.add(EncodedSample{Sequences: [][]int64{{1, 2, 3}, {4}}, Scalars: []int64{2}})
	acc.add(EncodedSample{Sequences: [][]int64{{5}, {6, 7}}, Scalars: []int64{0}})
	batch := acc.flush(NLISchema, 0)

	tensors, err := batch.Tensors()
	check(t, err)
	require.Len(t, tensors, 3)
	assert.Equal(t, tensor.Shape{2, 3}, tensors[0].Shape())
	assert.Equal(t, []int64{1, 2, 3, 5, 0, 0}, tensors[0].Data())
	assert.Equal(t, tensor.Shape{2, 2}, tensors[1].Shape())
	assert.Equal(t, []int64{4, 0, 6, 7}, tensors[1].Data())
	assert.Equal(t, tensor.Shape{2}, tensors[2].Shape())
	assert.Equal(t, []int64{2, 0}, tensors[2].Data())
}

func TestBatchTensorsEmptyField(t *testing.T) {
	acc := newAccumulator(SentimentSchema)
	acc.add(EncodedSample{Sequences: [][]int64{{}}, Scalars: []int64{1}})
	_, err := acc.flush(SentimentSchema, 0).Tensors()
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	sample := EncodedSample{Sequences: [][]int64{{1, 2, 3, 4}, {5}}}
	assert.Equal(t, [][]int64{{1, 2, 3, 4}, {5}}, truncate(sample, 0).Sequences)
	assert.Equal(t, [][]int64{{1, 2}, {5}}, truncate(sample, 2).Sequences)
}
