package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/hotmap/internal/contract"
)

// emit renders one report to stdout, or to outputFile when it is set.
// File output is announced on stderr so stdout stays machine-readable.
func emit(outputFile, what string, render func(io.Writer) error) error {
	out, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if out == os.Stdout {
		return render(out)
	}
	if err := render(out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", outputFile, err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %s to %s\n", what, outputFile)
	return nil
}

// encodeJSON writes v as indented JSON followed by a newline.
func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSV writes a header line then every row.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// numberFormat renders the numeric columns of a report.
type numberFormat struct {
	precision int
}

func (f numberFormat) ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', f.precision, 64)
}

func (numberFormat) count(n int) string {
	return strconv.Itoa(n)
}
