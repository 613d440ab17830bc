package main

import (
	"fmt"

	"github.com/seoentity/seoentity"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return seoentity.Errorf(seoentity.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Analyses.DeleteAnalysis(deps.Ctx, c.ID); err != nil {
		if seoentity.ErrorCode(err) == seoentity.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: analysis %q not found. Use 'seoentity list' to see stored analyses.\n", c.ID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted analysis %s\n", c.ID)
	return nil
}
