package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/fadilmartias/form-evaluator/internal/formconfig"
	"github.com/fadilmartias/form-evaluator/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scoreOptions struct {
	catalog     string
	formID      string
	submission  string
	mode        string
	judge       string
	concurrency int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formeval",
		Short:         "Score form submissions against catalogue ground truth",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newScoreCmd(), newFormsCmd())
	return root
}

func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one submission and print the comparison result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.catalog, "catalog", "config/forms.json", "catalogue file (.json, .yaml)")
	cmd.Flags().StringVar(&opts.formID, "form", "", "form id to score against")
	cmd.Flags().StringVar(&opts.submission, "submission", "", "submission file (.json, .yaml)")
	cmd.Flags().StringVar(&opts.mode, "mode", string(evaluator.ModeRequiredOptional), "required-optional or fixed-dynamic")
	cmd.Flags().StringVar(&opts.judge, "judge", service.ProviderNone, "semantic judge: none, openai, openrouter, gemini")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "judge calls in flight")
	_ = cmd.MarkFlagRequired("form")
	_ = cmd.MarkFlagRequired("submission")
	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	ctx := cmd.Context()
	mode, err := evaluator.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	forms, err := formconfig.LoadFile(opts.catalog)
	if err != nil {
		return err
	}
	def, ok := forms[opts.formID]
	if !ok {
		return fmt.Errorf("%w: %s", formconfig.ErrFormNotFound, opts.formID)
	}
	expected, err := def.Expected()
	if err != nil {
		return err
	}
	submission, err := readSubmission(opts.submission)
	if err != nil {
		return err
	}
	judge, err := service.NewJudge(ctx, opts.judge)
	if err != nil {
		return err
	}

	scorer := evaluator.NewScorer(
		evaluator.WithClassifier(evaluator.ClassifierFor(mode)),
		evaluator.WithJudge(judge),
		evaluator.WithConcurrency(opts.concurrency),
	)
	result, err := scorer.Score(ctx, submission, expected, def.Schema())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readSubmission(path string) (evaluator.Values, error) {
	format, err := formconfig.FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	switch format {
	case formconfig.FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", path, err)
	}
	return evaluator.ValuesFromMap(raw)
}

func newFormsCmd() *cobra.Command {
	var catalog string
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the forms of a catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			forms, err := formconfig.LoadFile(catalog)
			if err != nil {
				return err
			}
			list, err := formconfig.NewStaticCatalog(forms).List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tPAGES\tFIELDS\tTITLE")
			for _, def := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", def.ID, def.Type, len(def.Pages), def.FieldCount(), def.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&catalog, "catalog", "config/forms.json", "catalogue file (.json, .yaml)")
	return cmd
}
