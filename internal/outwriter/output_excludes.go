package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/hotmap/core/match"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/olekukonko/tablewriter"
)

// PrintExcludes lists the effective exclusion patterns and where each came from.
func PrintExcludes(patterns []string, cfg *contract.Config) error {
	return emit(cfg.OutputFile, "exclusions", func(w io.Writer) error {
		return writeExcludesTable(w, patterns)
	})
}

func writeExcludesTable(w io.Writer, patterns []string) error {
	defaults := make(map[string]struct{})
	for _, p := range match.DefaultExclusions() {
		defaults[p] = struct{}{}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Pattern", "Source"})

	data := make([][]string, 0, len(patterns))
	for i, p := range patterns {
		source := "custom"
		if _, ok := defaults[p]; ok {
			source = "default"
		}
		data = append(data, []string{strconv.Itoa(i + 1), p, source})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Total: %d exclusion patterns\n", len(patterns)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "💡 Add patterns with --exclude, or drop the built-in list with --no-default-excludes")
	return err
}
