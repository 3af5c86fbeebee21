package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// DefaultTextColumn is the header of the document column in the hate-speech
// corpus.
const DefaultTextColumn = "text"

// LoadOptions controls how a CSV file is mapped onto a Dataset.
type LoadOptions struct {
	// TextColumn names the document column. Empty means DefaultTextColumn.
	TextColumn string
	// LabelColumns selects label columns in order. Empty means every column
	// other than TextColumn, in file order.
	LabelColumns []string
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Normalize, when set, is applied to every document as it is read.
	Normalize func(string) string
}

// LoadCSV reads a dataset from the CSV file at path. Every failure is reported
// as a DataLoadError carrying the path.
func LoadCSV(path string, opts LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataLoadError(path, "cannot open file", err)
	}
	defer f.Close()

	ds, err := readCSV(f, opts)
	if err != nil {
		var loadErr *errors.DataLoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, err
		}
		return nil, errors.NewDataLoadError(path, "invalid dataset", err)
	}
	return ds, nil
}

// ReadCSV reads a dataset from r. The first record must be a header.
func ReadCSV(r io.Reader, opts LoadOptions) (*Dataset, error) {
	return readCSV(r, opts)
}

func readCSV(r io.Reader, opts LoadOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewDataLoadError("", "missing header", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.NewDataLoadError("", "malformed header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	textCol := opts.TextColumn
	if textCol == "" {
		textCol = DefaultTextColumn
	}
	textIdx, labelIdx, labelNames, err := resolveColumns(header, textCol, opts.LabelColumns)
	if err != nil {
		return nil, err
	}

	var (
		texts  []string
		values []float64
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewDataLoadError("", "malformed record", err)
		}
		text := record[textIdx]
		if opts.Normalize != nil {
			text = opts.Normalize(text)
		}
		texts = append(texts, text)
		for k, idx := range labelIdx {
			v, err := parseLabel(record[idx])
			if err != nil {
				return nil, errors.NewDataLoadError("",
					"invalid label value", errors.Wrapf(err, "line %d, column %q", line, labelNames[k]))
			}
			values = append(values, v)
		}
	}

	if len(texts) == 0 {
		return nil, errors.NewDataLoadError("", "no records", errors.ErrEmptyData)
	}
	if len(labelNames) == 0 {
		return nil, errors.NewDataLoadError("", "no label columns", nil)
	}

	labels := mat.NewDense(len(texts), len(labelNames), values)
	ds, err := New(texts, labels, labelNames)
	if err != nil {
		return nil, errors.NewDataLoadError("", "invalid dataset", err)
	}
	return ds, nil
}

func resolveColumns(header []string, textCol string, labelCols []string) (int, []int, []string, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return 0, nil, nil, errors.NewDataLoadError("", "duplicate column "+strconv.Quote(name), nil)
		}
		index[name] = i
	}

	textIdx, ok := index[textCol]
	if !ok {
		return 0, nil, nil, errors.NewDataLoadError("", "missing text column "+strconv.Quote(textCol), nil)
	}

	var names []string
	if len(labelCols) == 0 {
		for _, name := range header {
			if name != textCol {
				names = append(names, name)
			}
		}
	} else {
		names = append(names, labelCols...)
	}

	idx := make([]int, len(names))
	for k, name := range names {
		i, ok := index[name]
		if !ok {
			return 0, nil, nil, errors.NewDataLoadError("", "missing label column "+strconv.Quote(name), nil)
		}
		if i == textIdx {
			return 0, nil, nil, errors.NewDataLoadError("", "text column used as label", nil)
		}
		idx[k] = i
	}
	return textIdx, idx, names, nil
}

// parseLabel accepts 0/1, their float spellings and booleans. An empty cell is
// a negative.
func parseLabel(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Newf("cannot parse %q as a binary label", s)
	}
	if v != 0 && v != 1 {
		return 0, errors.Newf("label value %v is not 0 or 1", v)
	}
	return v, nil
}
