package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/seoentity/seoentity"
)

// printAnalysis writes a human-readable summary of a.
func printAnalysis(w io.Writer, a *seoentity.Analysis) {
	fmt.Fprintf(w, "Analysis %s\n", a.ID)
	fmt.Fprintf(w, "Source:   %s\n", a.Title())
	if a.Category != nil {
		fmt.Fprintf(w, "Category: %s (%d%%)\n", a.Category.Breadcrumb(), a.Category.Confidence)
	}
	fmt.Fprintf(w, "Entities: %d\n\n", len(a.Entities))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tRELEVANCE\tCOUNT\tLINK\tSCHEMA")
	for _, e := range a.Entities {
		link := e.Link
		if e.LinkStatus == seoentity.LinkGuessed {
			link += " (guessed)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%d\t%s\t%s\n",
			e.Name, e.Type, e.Relevance, e.OccurrenceCount, link, strings.Join(e.SchemaTypes, ", "))
	}
	_ = tw.Flush()
}
