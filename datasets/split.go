package datasets

import "fmt"

// Split is one of the train, dev and test partitions of a corpus.
type Split int

const (
	Train Split = iota
	Dev
	Test
)

func (s Split) String() string {
	switch s {
	case Train:
		return "train"
	case Dev:
		return "dev"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("split(%d)", int(s))
	}
}

// ParseSplit converts "train", "dev" or "test" to a Split.
func ParseSplit(name string) (Split, error) {
	switch name {
	case "train":
		return Train, nil
	case "dev":
		return Dev, nil
	case "test":
		return Test, nil
	}
	return 0, fmt.Errorf("unknown split %q, expected one of train, dev, test", name)
}
