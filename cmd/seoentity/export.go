package main

import (
	"fmt"

	"github.com/seoentity/seoentity"
	"github.com/seoentity/seoentity/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	format, err := fs.ParseFormat(c.Format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}

	a, err := deps.Analyses.FindAnalysisByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}

	if c.Output == "" {
		return fs.Encode(deps.Stdout, format, a.Entities)
	}

	if err := fs.WriteFile(c.Output, format, a.Entities); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d entities to %s\n", len(a.Entities), c.Output)
	return nil
}
