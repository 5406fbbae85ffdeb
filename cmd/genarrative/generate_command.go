package main

import (
	"github.com/spf13/cobra"

	"genarrative/internal/capability"
	"genarrative/internal/generation"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var modalityFlag string
	var storyFlag string
	var negativeFlag string
	var widthFlag, heightFlag, durationFlag, wordsFlag int

	cmd := &cobra.Command{
		Use:   "generate <scene-id|media-id>",
		Short: "Generate a media artifact for a scene, or regenerate from an existing media unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modality, err := capability.ParseModality(modalityFlag)
			if err != nil {
				return err
			}

			docs, index, closeStores, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer closeStores()

			dispatcher, err := ctx.generator(docs, index)
			if err != nil {
				return err
			}

			media, err := dispatcher.Generate(cmd.Context(), args[0], modality, generation.Overrides{
				StoryID:         storyFlag,
				NegativePrompt:  negativeFlag,
				Width:           widthFlag,
				Height:          heightFlag,
				DurationSeconds: durationFlag,
				WordCount:       wordsFlag,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, media)
		},
	}

	cmd.Flags().StringVar(&modalityFlag, "modality", "", "Output modality: text, image, music, or speech")
	cmd.Flags().StringVar(&storyFlag, "story", "", "Story ID supplying the story policy layer when the scene is linked into several stories")
	cmd.Flags().StringVar(&negativeFlag, "negative", "", "Negative prompt (image only)")
	cmd.Flags().IntVar(&widthFlag, "width", 0, "Image width override")
	cmd.Flags().IntVar(&heightFlag, "height", 0, "Image height override")
	cmd.Flags().IntVar(&durationFlag, "duration", 0, "Music duration override in seconds")
	cmd.Flags().IntVar(&wordsFlag, "words", 0, "Target word count override (text only)")
	_ = cmd.MarkFlagRequired("modality")
	return cmd
}
