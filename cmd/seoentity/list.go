package main

import (
	"fmt"

	"github.com/seoentity/seoentity"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	analyses, err := deps.Analyses.FindAnalyses(deps.Ctx, seoentity.AnalysisFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}

	if len(analyses) == 0 {
		fmt.Fprintln(deps.Stdout, "No analyses found. Use 'seoentity analyze' to create one.")
		return nil
	}

	for _, a := range analyses {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d entities  %s\n",
			a.ID, a.CreatedAt.Format("2006-01-02 15:04"), len(a.Entities), a.Title())
	}

	return nil
}
