package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"

	"github.com/knights-analytics/corpora/datasets"
	"github.com/knights-analytics/corpora/options"
	"github.com/knights-analytics/corpora/util/fileutil"
)

var corpusName string
var trainPath string
var devPath string
var testPath string
var vocabPath string
var tokenizerPath string
var oovIndex int
var batchSize int
var dropLast bool
var maxLength int
var splitName string
var outputPath string

var datasetFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "corpus",
		Usage:       "Corpus type: sentiment, nli or cmrc",
		Aliases:     []string{"c"},
		Destination: &corpusName,
		Required:    true,
	},
	&cli.StringFlag{
		Name:        "train",
		Usage:       "Path to the train split",
		Destination: &trainPath,
		Required:    true,
	},
	&cli.StringFlag{
		Name:        "dev",
		Usage:       "Path to the dev split",
		Destination: &devPath,
	},
	&cli.StringFlag{
		Name:        "test",
		Usage:       "Path to the test split",
		Destination: &testPath,
	},
	&cli.StringFlag{
		Name:        "vocab",
		Usage:       "Path to a vocabulary file with one token per line",
		Aliases:     []string{"v"},
		Destination: &vocabPath,
	},
	&cli.StringFlag{
		Name:        "tokenizer",
		Usage:       "Path to a tokenizer.json whose vocabulary is used for lookups",
		Destination: &tokenizerPath,
	},
	&cli.IntFlag{
		Name:        "oov",
		Usage:       "Index of characters missing from the vocabulary",
		Destination: &oovIndex,
		Value:       0,
	},
	&cli.IntFlag{
		Name:        "batchSize",
		Usage:       "Number of samples in a batch",
		Aliases:     []string{"b"},
		Destination: &batchSize,
		Value:       10,
	},
	&cli.BoolFlag{
		Name:        "dropLast",
		Usage:       "Drop the last incomplete batch of each split",
		Destination: &dropLast,
	},
	&cli.IntFlag{
		Name:        "maxLength",
		Usage:       "Truncate sequences to this many characters, 0 for no limit",
		Destination: &maxLength,
	},
	&cli.StringFlag{
		Name:        "output",
		Usage:       "Path to output. If omitted, the output will be sent to stdout.",
		Aliases:     []string{"o"},
		Destination: &outputPath,
	},
}

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Count samples and batches in every split of a corpus",
	Description: `Stats makes one pass over each configured split and reports the number of samples read,
				the number of batches and samples produced with the given batch settings, and the widest batch per sequence field.`,
	Flags: datasetFlags,
	Action: func(ctx *cli.Context) (err error) {
		ds, err := newDataset()
		if err != nil {
			return err
		}
		writer, closeWriter, err := openOutput()
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, closeWriter())
		}()

		pretty := outputPath == "" && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
		for _, split := range []datasets.Split{datasets.Train, datasets.Dev, datasets.Test} {
			if ds.Path(split) == "" {
				continue
			}
			stats, statsErr := splitStatistics(ds, split)
			if statsErr != nil {
				return statsErr
			}
			if writeErr := writeJSON(writer, stats, pretty); writeErr != nil {
				return writeErr
			}
		}
		return nil
	},
}

var batchesCommand = &cli.Command{
	Name:  "batches",
	Usage: "Write the batches of one split as json lines",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:        "split",
			Usage:       "Split to read: train, dev or test",
			Aliases:     []string{"s"},
			Destination: &splitName,
			Value:       "train",
		},
	}, datasetFlags...),
	Action: func(ctx *cli.Context) (err error) {
		split, err := datasets.ParseSplit(splitName)
		if err != nil {
			return err
		}
		ds, err := newDataset()
		if err != nil {
			return err
		}
		writer, closeWriter, err := openOutput()
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, closeWriter())
		}()

		index := 0
		for batch, batchErr := range ds.Batches(split, batchOptions()...) {
			if batchErr != nil {
				return batchErr
			}
			if writeErr := writeJSON(writer, newBatchOutput(split, index, batch), false); writeErr != nil {
				return writeErr
			}
			index++
		}
		return nil
	},
}

func main() {
	app := &cli.App{
		Name:     "corpora",
		Usage:    "Inspect batched NLP corpora from the command line",
		Commands: []*cli.Command{statsCommand, batchesCommand},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("corpora failed")
	}
}

func newDataset() (*datasets.Dataset, error) {
	words, err := wordLookup()
	if err != nil {
		return nil, err
	}
	switch corpusName {
	case "sentiment":
		return datasets.NewSentimentDataset(trainPath, devPath, testPath, words)
	case "nli":
		return datasets.NewNLIDataset(trainPath, devPath, testPath, words, datasets.NLITagLookup())
	case "cmrc":
		return datasets.NewReadingComprehensionDataset(trainPath, devPath, testPath, words)
	default:
		return nil, fmt.Errorf("corpus %s not implemented", corpusName)
	}
}

// wordLookup loads the vocabulary given on the command line. Without one, every
// character maps to the OOV index.
func wordLookup() (datasets.LookupFunc, error) {
	switch {
	case vocabPath != "" && tokenizerPath != "":
		return nil, fmt.Errorf("only one of --vocab and --tokenizer can be set")
	case vocabPath != "":
		vocab, err := datasets.LoadVocabulary(vocabPath)
		if err != nil {
			return nil, err
		}
		return datasets.MapLookup(vocab, oovIndex), nil
	case tokenizerPath != "":
		return datasets.LoadTokenizerLookup(tokenizerPath, oovIndex)
	default:
		return datasets.MapLookup(nil, oovIndex), nil
	}
}

func batchOptions() []options.WithOption {
	opts := []options.WithOption{
		options.WithBatchSize(batchSize),
		options.WithMaxSequenceLength(maxLength),
	}
	if dropLast {
		opts = append(opts, options.WithDropLast())
	}
	return opts
}

func openOutput() (io.Writer, func() error, error) {
	if outputPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	writer, err := fileutil.NewFileWriter(outputPath, "")
	if err != nil {
		return nil, nil, err
	}
	return writer, writer.Close, nil
}

type splitStats struct {
	Corpus         string         `json:"corpus"`
	Split          string         `json:"split"`
	Samples        int            `json:"samples"`
	Batches        int            `json:"batches"`
	BatchedSamples int            `json:"batchedSamples"`
	MaxWidths      map[string]int `json:"maxWidths"`
}

func splitStatistics(ds *datasets.Dataset, split datasets.Split) (stats splitStats, err error) {
	stream, err := ds.Open(split, batchOptions()...)
	if err != nil {
		return stats, err
	}
	defer func() {
		err = errors.Join(err, stream.Close())
	}()

	stats = splitStats{
		Corpus:    ds.Schema().Name,
		Split:     split.String(),
		MaxWidths: map[string]int{},
	}
	for _, field := range ds.Schema().Sequences {
		stats.MaxWidths[field] = 0
	}
	for {
		batch, yieldErr := stream.Yield()
		if yieldErr == io.EOF {
			break
		}
		if yieldErr != nil {
			return stats, yieldErr
		}
		stats.BatchedSamples += batch.Size
		for i, field := range ds.Schema().Sequences {
			stats.MaxWidths[field] = max(stats.MaxWidths[field], batch.Width(i))
		}
	}
	stats.Samples = stream.Samples()
	stats.Batches = stream.Batches()
	return stats, nil
}

type batchOutput struct {
	Split     string               `json:"split"`
	Index     int                  `json:"index"`
	Size      int                  `json:"size"`
	Sequences map[string][][]int64 `json:"sequences"`
	Lengths   map[string][]int     `json:"lengths"`
	Scalars   map[string][]int64   `json:"scalars"`
}

func newBatchOutput(split datasets.Split, index int, batch *datasets.Batch) batchOutput {
	out := batchOutput{
		Split:     split.String(),
		Index:     index,
		Size:      batch.Size,
		Sequences: map[string][][]int64{},
		Lengths:   map[string][]int{},
		Scalars:   map[string][]int64{},
	}
	for i, field := range batch.Schema.Sequences {
		out.Sequences[field] = batch.Sequences[i]
		out.Lengths[field] = batch.Lengths[i]
	}
	for i, field := range batch.Schema.Scalars {
		out.Scalars[field] = batch.Scalars[i]
	}
	return out
}

func writeJSON(writer io.Writer, value any, pretty bool) error {
	var outputBytes []byte
	var err error
	if pretty {
		outputBytes, err = jsoniter.MarshalIndent(value, "", "  ")
	} else {
		outputBytes, err = jsoniter.Marshal(value)
	}
	if err != nil {
		return err
	}
	if _, err = writer.Write(outputBytes); err != nil {
		return err
	}
	_, err = writer.Write([]byte("\n"))
	return err
}
