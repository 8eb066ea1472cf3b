package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/de-tools/report-atlas/pkg/services/query"
	"github.com/spf13/cobra"
)

type queryCmd struct {
	env     *Env
	samples bool
}

func NewQueryCmd(env *Env) *cobra.Command {
	qc := &queryCmd{env: env}
	cmd := &cobra.Command{
		Use:   "query <file|-> <path>",
		Short: "Evaluate a JSONPath or jq style selector against a saved document",
		Args: func(cmd *cobra.Command, args []string) error {
			if qc.samples {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: qc.run,
	}

	cmd.Flags().BoolVar(&qc.samples, "samples", false, "Print sample selectors and exit")

	return cmd
}

func (qc *queryCmd) run(_ *cobra.Command, args []string) error {
	if qc.samples {
		return qc.env.JSON.Value(query.SampleSelectors)
	}

	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	matches, err := query.Evaluate(doc, args[1])
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := qc.env.JSON.Raw(m); err != nil {
			return err
		}
	}
	return nil
}

func readDocument(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, nil
}
