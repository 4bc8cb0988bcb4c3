package profile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/zarlcorp/zprofile/internal/country"
)

// ExportName returns the CSV file name for a batch of country c.
func ExportName(c country.Code) string {
	return "profiles_" + strings.ToLower(string(c)) + ".csv"
}

// WriteCSV writes a header row of field labels followed by one row per
// profile, in batch order.
func WriteCSV(w io.Writer, b Batch) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(b.Fields))
	for i, f := range b.Fields {
		header[i] = string(f)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range b.Profiles {
		row := make([]string, len(b.Fields))
		for i, f := range b.Fields {
			row[i], _ = p.Get(f)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
