package common

import (
	"fmt"
	"io"

	"github.com/NilFoundation/diamond/diamond/internal/merger"
	"github.com/fatih/color"
)

var (
	conflictColor = color.New(color.FgRed, color.Bold)
	warningColor  = color.New(color.FgYellow)
	successColor  = color.New(color.FgGreen)
	pathColor     = color.New(color.FgCyan)
)

// PrintReport summarizes a merge. In quiet mode only the written paths are printed.
func PrintReport(w io.Writer, res *merger.Result, written []string, quiet bool) {
	if quiet {
		for _, path := range written {
			_, _ = fmt.Fprintln(w, path)
		}
		return
	}

	for _, c := range res.Conflicts {
		_, _ = conflictColor.Fprintf(w, "conflict: %s\n", c)
	}
	for _, warning := range res.Warnings {
		if warning.Kind == merger.WarningConflict {
			continue
		}
		_, _ = warningColor.Fprintf(w, "warning: %s\n", warning)
	}

	_, _ = successColor.Fprintf(w, "Merged %d entries from %d facets into %s\n",
		len(res.Artifact.Members), len(res.Facets), res.Artifact.ContractName)
	for _, path := range written {
		_, _ = fmt.Fprintf(w, "  %s\n", pathColor.Sprint(path))
	}
}
