package main

import (
	"fmt"

	"github.com/seoentity/seoentity"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	a, err := deps.Analyses.FindAnalysisByID(deps.Ctx, c.ID)
	if err != nil {
		if seoentity.ErrorCode(err) == seoentity.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: analysis %q not found. Use 'seoentity list' to see stored analyses.\n", c.ID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}

	if c.Highlighted {
		fmt.Fprintln(deps.Stdout, a.Highlighted)
		return nil
	}

	printAnalysis(deps.Stdout, a)
	return nil
}
