package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"genarrative/internal/sisindex"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect and maintain the document link index",
	}
	indexCmd.AddCommand(newIndexLinksCommand(ctx))
	indexCmd.AddCommand(newIndexVerifyCommand(ctx))
	indexCmd.AddCommand(newIndexUnlinkCommand(ctx))
	indexCmd.AddCommand(newIndexRebuildCommand(ctx))
	return indexCmd
}

func newIndexLinksCommand(ctx *commandContext) *cobra.Command {
	var storyFlag, sceneFlag, mediaFlag string

	cmd := &cobra.Command{
		Use:   "links",
		Short: "List links touching a story, scene, or media document",
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, flag := range []string{storyFlag, sceneFlag, mediaFlag} {
				if flag != "" {
					set++
				}
			}
			if set != 1 {
				return errors.New("exactly one of --story, --scene, or --media is required")
			}

			_, index, closeStores, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer closeStores()

			switch {
			case storyFlag != "":
				links, err := index.ScenesForStory(cmd.Context(), storyFlag)
				if err != nil {
					return err
				}
				return renderSceneLinks(cmd, ctx, links)
			case mediaFlag != "":
				links, err := index.ScenesForMedia(cmd.Context(), mediaFlag)
				if err != nil {
					return err
				}
				return renderMediaLinks(cmd, ctx, links)
			default:
				stories, err := index.StoriesForScene(cmd.Context(), sceneFlag)
				if err != nil {
					return err
				}
				media, err := index.MediaForScene(cmd.Context(), sceneFlag)
				if err != nil {
					return err
				}
				if useJSON(cmd, ctx) {
					return writeJSON(cmd, struct {
						Stories []sisindex.SceneLink `json:"stories"`
						Media   []sisindex.MediaLink `json:"media"`
					}{stories, media})
				}
				if err := renderSceneLinks(cmd, ctx, stories); err != nil {
					return err
				}
				return renderMediaLinks(cmd, ctx, media)
			}
		},
	}

	cmd.Flags().StringVar(&storyFlag, "story", "", "List scenes linked into this story")
	cmd.Flags().StringVar(&sceneFlag, "scene", "", "List stories and media linked to this scene")
	cmd.Flags().StringVar(&mediaFlag, "media", "", "List scenes this media document realizes")
	return cmd
}

func renderSceneLinks(cmd *cobra.Command, ctx *commandContext, links []sisindex.SceneLink) error {
	if useJSON(cmd, ctx) {
		return writeJSON(cmd, links)
	}
	if len(links) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No story links.")
		return nil
	}
	rows := make([][]string, 0, len(links))
	for _, link := range links {
		rows = append(rows, []string{
			fmt.Sprintf("%d", link.Position),
			link.Role,
			link.StoryID,
			link.SceneID,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Pos", "Role", "Story", "Scene"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func renderMediaLinks(cmd *cobra.Command, ctx *commandContext, links []sisindex.MediaLink) error {
	if useJSON(cmd, ctx) {
		return writeJSON(cmd, links)
	}
	if len(links) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No media links.")
		return nil
	}
	rows := make([][]string, 0, len(links))
	for _, link := range links {
		rows = append(rows, []string{
			fmt.Sprintf("%d", link.Position),
			link.SceneID,
			link.MediaID,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Pos", "Scene", "Media"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	))
	return nil
}

func newIndexVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Audit the index for dangling references",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, index, closeStores, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer closeStores()

			problems, err := index.Verify(cmd.Context(), docs.Exists)
			if err != nil {
				return err
			}
			if useJSON(cmd, ctx) {
				if err := writeJSON(cmd, problems); err != nil {
					return err
				}
			} else if len(problems) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Index is consistent.")
			} else {
				rows := make([][]string, 0, len(problems))
				for _, problem := range problems {
					rows = append(rows, []string{problem.Kind, problem.Subject, problem.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Kind", "Subject", "Detail"},
					rows,
					nil,
				))
			}
			if len(problems) > 0 {
				return fmt.Errorf("found %d integrity problem(s)", len(problems))
			}
			return nil
		},
	}
}

func newIndexUnlinkCommand(ctx *commandContext) *cobra.Command {
	var storyFlag, sceneFlag, mediaFlag string

	cmd := &cobra.Command{
		Use:   "unlink",
		Short: "Remove a story-scene or scene-media link",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, index, closeStores, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer closeStores()

			switch {
			case storyFlag != "" && sceneFlag != "" && mediaFlag == "":
				if err := index.UnlinkScene(cmd.Context(), storyFlag, sceneFlag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s from %s\n", sceneFlag, storyFlag)
				return nil
			case sceneFlag != "" && mediaFlag != "" && storyFlag == "":
				if err := index.UnlinkMedia(cmd.Context(), sceneFlag, mediaFlag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s from %s\n", mediaFlag, sceneFlag)
				return nil
			default:
				return errors.New("pass --story with --scene, or --scene with --media")
			}
		},
	}

	cmd.Flags().StringVar(&storyFlag, "story", "", "Story side of a story-scene link")
	cmd.Flags().StringVar(&sceneFlag, "scene", "", "Scene side of the link")
	cmd.Flags().StringVar(&mediaFlag, "media", "", "Media side of a scene-media link")
	return cmd
}

// newIndexRebuildCommand recreates the index database from the document
// store. Registrations are recovered from the documents themselves;
// story-scene and scene-media links live only in the index and cannot
// be reconstructed, so they must be re-established afterwards.
func newIndexRebuildCommand(ctx *commandContext) *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recreate the index database from stored documents",
		Long: "Recreate the index database from stored documents.\n\n" +
			"Document registrations are recovered from the document store. " +
			"Links are not stored in the documents and are lost; relink " +
			"scenes and media after rebuilding.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !forceFlag {
				return errors.New("rebuild discards all links; pass --force to proceed")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withDataLock(func() error {
				dbPath := filepath.Join(cfg.Paths.DataDir, "index.db")
				for _, suffix := range []string{"", "-wal", "-shm"} {
					if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
						return fmt.Errorf("remove %s: %w", dbPath+suffix, err)
					}
				}

				docs, index, closeStores, err := ctx.openStores()
				if err != nil {
					return err
				}
				defer closeStores()

				ids, err := docs.ListIDs()
				if err != nil {
					return err
				}
				registered := 0
				for _, id := range ids {
					doc, err := docs.Load(id)
					if err != nil {
						return fmt.Errorf("load %s: %w", id, err)
					}
					if err := index.Register(cmd.Context(), sisindex.RecordFor(doc)); err != nil {
						return fmt.Errorf("register %s: %w", id, err)
					}
					registered++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt index with %d document(s) at %s\n", registered, index.Path())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&forceFlag, "force", false, "Confirm discarding existing links")
	return cmd
}
