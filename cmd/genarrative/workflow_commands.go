package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"genarrative/internal/capability"
	"genarrative/internal/extraction"
	"genarrative/internal/generation"
	"genarrative/internal/workflow"
)

func newWorkflowCommand(ctx *commandContext) *cobra.Command {
	workflowCmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run and inspect extract-then-generate pipelines",
	}
	workflowCmd.AddCommand(newWorkflowRunCommand(ctx))
	workflowCmd.AddCommand(newWorkflowStatusCommand(ctx))
	return workflowCmd
}

func newWorkflowRunCommand(ctx *commandContext) *cobra.Command {
	var modalitiesFlag string
	var kindFlag string
	var widthFlag, heightFlag, durationFlag, wordsFlag int

	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Extract a source and generate artifacts for each modality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modalities, err := parseModalities(modalitiesFlag)
			if err != nil {
				return err
			}
			var declared extraction.ContentKind
			if kindFlag != "" {
				parsed, err := extraction.ParseContentKind(kindFlag)
				if err != nil {
					return err
				}
				declared = parsed
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			return ctx.withDataLock(func() error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				docs, index, closeStores, err := ctx.openStores()
				if err != nil {
					return err
				}
				defer closeStores()

				extractor, err := ctx.extractor()
				if err != nil {
					return err
				}
				generator, err := ctx.generator(docs, index)
				if err != nil {
					return err
				}
				journal, err := ctx.openJournal()
				if err != nil {
					return err
				}
				defer journal.Close()

				runner := workflow.NewRunner(cfg, extractor, generator, docs, index, journal, logger)
				result, err := runner.Run(cmd.Context(), workflow.Request{
					Source:       args[0],
					Content:      content,
					DeclaredKind: declared,
					Modalities:   modalities,
					Overrides: generation.Overrides{
						Width:           widthFlag,
						Height:          heightFlag,
						DurationSeconds: durationFlag,
						WordCount:       wordsFlag,
					},
				})
				if err != nil {
					return err
				}

				if useJSON(cmd, ctx) {
					return writeJSON(cmd, result)
				}
				renderRunResult(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&modalitiesFlag, "modalities", "text", "Comma-separated modalities to generate")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Declared content kind; sniffed when omitted")
	cmd.Flags().IntVar(&widthFlag, "width", 0, "Image width override")
	cmd.Flags().IntVar(&heightFlag, "height", 0, "Image height override")
	cmd.Flags().IntVar(&durationFlag, "duration", 0, "Music duration override in seconds")
	cmd.Flags().IntVar(&wordsFlag, "words", 0, "Target word count override (text only)")
	return cmd
}

func parseModalities(flag string) ([]capability.Modality, error) {
	parts := strings.Split(flag, ",")
	modalities := make([]capability.Modality, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		modality, err := capability.ParseModality(part)
		if err != nil {
			return nil, err
		}
		modalities = append(modalities, modality)
	}
	return modalities, nil
}

func renderRunResult(cmd *cobra.Command, result *workflow.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %s\n", result.RunID, result.State)
	if result.SceneID != "" {
		fmt.Fprintf(out, "Scene: %s\n", result.SceneID)
	}
	if result.Error != "" {
		fmt.Fprintf(out, "Error: %s (%s)\n", result.Error, result.ErrorKind)
	}
	if len(result.Outcomes) == 0 {
		return
	}

	rows := make([][]string, 0, len(result.Outcomes))
	for _, modality := range capability.AllModalities() {
		outcome, ok := result.Outcomes[string(modality)]
		if !ok {
			continue
		}
		detail := outcome.Artifact
		if outcome.Status != workflow.OutcomeCompleted {
			detail = outcome.ErrorKind
		}
		rows = append(rows, []string{
			outcome.Modality,
			outcome.Status,
			fmt.Sprintf("%d", outcome.Attempts),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Modality", "Status", "Attempts", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func newWorkflowStatusCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show journaled runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer journal.Close()

			if len(args) == 1 {
				run, err := journal.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				outcomes, err := journal.Outcomes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, struct {
					Run      *workflow.RunRecord        `json:"run"`
					Outcomes []workflow.ModalityOutcome `json:"outcomes"`
				}{run, outcomes})
			}

			runs, err := journal.ListRuns(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if useJSON(cmd, ctx) {
				return writeJSON(cmd, runs)
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					string(run.State),
					run.SceneID,
					run.Source,
					run.UpdatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "State", "Scene", "Source", "Updated"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of runs to list")
	return cmd
}
