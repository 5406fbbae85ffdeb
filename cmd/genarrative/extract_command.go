package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genarrative/internal/extraction"
	"genarrative/internal/sis"
	"genarrative/internal/sisindex"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var asMedia bool
	var register bool

	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Extract a scene or media document from raw content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			var declared extraction.ContentKind
			if kindFlag != "" {
				parsed, err := extraction.ParseContentKind(kindFlag)
				if err != nil {
					return err
				}
				declared = parsed
			}

			dispatcher, err := ctx.extractor()
			if err != nil {
				return err
			}

			var doc sis.Document
			var scene *sis.SceneSIS
			if asMedia {
				media, err := dispatcher.ExtractMedia(cmd.Context(), content, declared, path)
				if err != nil {
					return err
				}
				doc = media
			} else {
				scene, err = dispatcher.ExtractScene(cmd.Context(), content, declared)
				if err != nil {
					return err
				}
				doc = scene
			}

			if register {
				docs, index, closeStores, err := ctx.openStores()
				if err != nil {
					return err
				}
				defer closeStores()
				if err := docs.Save(doc); err != nil {
					return err
				}
				if err := index.Register(cmd.Context(), sisindex.RecordFor(doc)); err != nil {
					return err
				}
				if scene != nil {
					// The input asset becomes the scene's first media
					// unit so the scene stays traceable to its source.
					source, err := dispatcher.SourceMedia(scene, content, declared, path)
					if err != nil {
						return err
					}
					if err := docs.Save(source); err != nil {
						return err
					}
					if err := index.Register(cmd.Context(), sisindex.RecordFor(source)); err != nil {
						return err
					}
					if err := index.LinkMedia(cmd.Context(), scene.SceneID, source.MediaID, 1); err != nil {
						return err
					}
				}
			}

			return writeJSON(cmd, doc)
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "Declared content kind (text, image, audio); sniffed when omitted")
	cmd.Flags().BoolVar(&asMedia, "media", false, "Produce a media document instead of a scene")
	cmd.Flags().BoolVar(&register, "register", false, "Persist the document and register it in the index")
	return cmd
}
