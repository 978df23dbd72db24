package datasets

import (
	"fmt"
	"slices"

	"gorgonia.org/tensor"
)

// Batch is a group of encoded samples. Sequence fields are right-padded to the
// longest sample of the batch for that field; scalar fields hold one value per sample.
type Batch struct {
	Schema    *Schema
	Size      int
	Sequences [][][]int64 // [field][sample][position]
	Lengths   [][]int     // [field][sample], length before padding
	Scalars   [][]int64   // [field][sample]
}

// Sequence returns the padded rows of the named sequence field, or nil if the
// schema has no such field.
func (b *Batch) Sequence(name string) [][]int64 {
	i := b.Schema.sequenceIndex(name)
	if i < 0 {
		return nil
	}
	return b.Sequences[i]
}

// Scalar returns the values of the named scalar field, or nil if the schema has no such field.
func (b *Batch) Scalar(name string) []int64 {
	i := b.Schema.scalarIndex(name)
	if i < 0 {
		return nil
	}
	return b.Scalars[i]
}

// Width is the padded length of sequence field i.
func (b *Batch) Width(field int) int {
	if b.Size == 0 {
		return 0
	}
	return len(b.Sequences[field][0])
}

// Unpadded returns row of sequence field without its padding.
func (b *Batch) Unpadded(field, row int) []int64 {
	return b.Sequences[field][row][:b.Lengths[field][row]]
}

// Tensors converts the batch to dense int64 tensors in field order: one
// (Size, Width) tensor per sequence field followed by one (Size) tensor per scalar field.
func (b *Batch) Tensors() ([]*tensor.Dense, error) {
	out := make([]*tensor.Dense, 0, len(b.Sequences)+len(b.Scalars))
	for i, rows := range b.Sequences {
		width := b.Width(i)
		if width == 0 {
			return nil, fmt.Errorf("sequence field %s is empty for every sample of the batch", b.Schema.Sequences[i])
		}
		backingSlice := make([]int64, 0, b.Size*width)
		for _, row := range rows {
			backingSlice = append(backingSlice, row...)
		}
		out = append(out, tensor.New(
			tensor.Of(tensor.Int64),
			tensor.WithShape(b.Size, width),
			tensor.WithBacking(backingSlice),
		))
	}
	for _, values := range b.Scalars {
		out = append(out, tensor.New(
			tensor.Of(tensor.Int64),
			tensor.WithShape(b.Size),
			tensor.WithBacking(slices.Clone(values)),
		))
	}
	return out, nil
}

// accumulator collects encoded samples field by field until a batch is complete.
type accumulator struct {
	sequences [][][]int64
	scalars   [][]int64
	count     int
}

func newAccumulator(schema *Schema) *accumulator {
	return &accumulator{
		sequences: make([][][]int64, len(schema.Sequences)),
		scalars:   make([][]int64, len(schema.Scalars)),
	}
}

func (a *accumulator) add(sample EncodedSample) {
	for i, seq := range sample.Sequences {
		a.sequences[i] = append(a.sequences[i], seq)
	}
	for i, value := range sample.Scalars {
		a.scalars[i] = append(a.scalars[i], value)
	}
	a.count++
}

// flush builds a batch from the accumulated samples and empties the accumulator.
func (a *accumulator) flush(schema *Schema, padValue int64) *Batch {
	batch := &Batch{
		Schema:    schema,
		Size:      a.count,
		Sequences: make([][][]int64, len(a.sequences)),
		Lengths:   make([][]int, len(a.sequences)),
		Scalars:   make([][]int64, len(a.scalars)),
	}
	for i, seqs := range a.sequences {
		batch.Sequences[i], batch.Lengths[i] = padSequences(seqs, padValue)
		a.sequences[i] = nil
	}
	for i, values := range a.scalars {
		batch.Scalars[i] = values
		a.scalars[i] = nil
	}
	a.count = 0
	return batch
}

// padSequences right-pads seqs with padValue to the length of the longest one.
// Rows share a single backing array.
func padSequences(seqs [][]int64, padValue int64) ([][]int64, []int) {
	width := 0
	lengths := make([]int, len(seqs))
	for i, seq := range seqs {
		lengths[i] = len(seq)
		width = max(width, len(seq))
	}
	backing := make([]int64, len(seqs)*width)
	padded := make([][]int64, len(seqs))
	for i, seq := range seqs {
		row := backing[i*width : (i+1)*width : (i+1)*width]
		n := copy(row, seq)
		if padValue != 0 {
			for j := n; j < width; j++ {
				row[j] = padValue
			}
		}
		padded[i] = row
	}
	return padded, lengths
}
