package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seoentity/seoentity"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	input, err := c.input()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}

	_, a, err := deps.Runner.Run(deps.Ctx, seoentity.Session{}, input)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seoentity.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	printAnalysis(deps.Stdout, a)
	return nil
}

// input converts the selected flag into pipeline input.
func (c *AnalyzeCmd) input() (seoentity.Input, error) {
	switch {
	case c.URL != "":
		return seoentity.Input{Mode: seoentity.ModeURL, Value: c.URL}, nil
	case c.HTMLFile != "":
		b, err := os.ReadFile(c.HTMLFile)
		if err != nil {
			return seoentity.Input{}, seoentity.Errorf(seoentity.EINVALID, "read %s: %s", c.HTMLFile, err)
		}
		return seoentity.Input{Mode: seoentity.ModeHTML, Value: string(b)}, nil
	case c.TextFile != "":
		b, err := os.ReadFile(c.TextFile)
		if err != nil {
			return seoentity.Input{}, seoentity.Errorf(seoentity.EINVALID, "read %s: %s", c.TextFile, err)
		}
		return seoentity.Input{Mode: seoentity.ModeText, Value: string(b)}, nil
	}
	return seoentity.Input{Mode: seoentity.ModeText, Value: c.Text}, nil
}
