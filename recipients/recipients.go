// Package recipients loads the recipient CSV and applies the declarative
// filter rules from the message definition.
package recipients

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jtuomist/massmail/types"
)

// Load reads the recipient CSV at path. The first non-empty line is the
// header and must contain the Firstname, Lastname and email columns
// (case-sensitive); anything else yields a FormatError. Data rows are not
// validated here: rows with empty or missing fields are kept as records and
// left to the filter engine.
func Load(path string) ([]types.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.FormatError{Path: path, Err: err}
	}
	defer f.Close()
	recs, err := load(f)
	if err != nil {
		return nil, &types.FormatError{Path: path, Err: err}
	}
	return recs, nil
}

func load(r io.Reader) ([]types.Recipient, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("no header row")
	}
	if err != nil {
		return nil, err
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}
	for _, required := range types.RequiredColumns {
		found := false
		for _, name := range columns {
			if name == required {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("required column %q missing from header", required)
		}
	}

	var recs []types.Recipient
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		values := make(map[string]string, len(columns))
		for i, v := range record {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			values[columns[i]] = v
		}
		recs = append(recs, types.NewRecipient(columns, values))
	}
	return recs, nil
}
