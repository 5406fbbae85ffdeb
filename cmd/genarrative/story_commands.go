package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"genarrative/internal/sis"
	"genarrative/internal/sisindex"
	"genarrative/internal/story"
)

func newInferStoryCommand(ctx *commandContext) *cobra.Command {
	var storyTypeFlag string
	var roleFlags []string
	var register bool

	cmd := &cobra.Command{
		Use:   "infer-story <scene-id>...",
		Short: "Build a story document from existing scenes",
		Long: `Assigns each scene a structural role and produces a story whose
blueprints mirror the scenes in order. Without --story-type the
narrative structure is inferred from the scenes' aggregate signal;
an ambiguous signal is an error, never a silent default.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, index, closeStores, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer closeStores()

			scenes := make([]*sis.SceneSIS, 0, len(args))
			for _, id := range args {
				doc, err := docs.Load(id)
				if err != nil {
					return fmt.Errorf("load %s: %w", id, err)
				}
				scene, ok := doc.(*sis.SceneSIS)
				if !ok {
					return fmt.Errorf("%s is a %s document, not a scene", id, doc.Kind())
				}
				scenes = append(scenes, scene)
			}

			hints, err := parseRoleHints(roleFlags)
			if err != nil {
				return err
			}

			svc, err := ctx.storyService()
			if err != nil {
				return err
			}
			doc, assignments, err := svc.InferStory(cmd.Context(), scenes, story.InferOptions{
				StoryType: sis.StoryType(storyTypeFlag),
				RoleHints: hints,
			})
			if err != nil {
				return err
			}

			if register {
				if err := docs.Save(doc); err != nil {
					return err
				}
				if err := index.Register(cmd.Context(), sisindex.RecordFor(doc)); err != nil {
					return err
				}
				for _, a := range assignments {
					if err := index.LinkScene(cmd.Context(), doc.StoryID, a.SceneID, a.Role, a.Position); err != nil {
						return err
					}
				}
			}

			return writeJSON(cmd, struct {
				Story       *sis.StorySIS      `json:"story"`
				Assignments []story.Assignment `json:"assignments"`
			}{doc, assignments})
		},
	}

	cmd.Flags().StringVar(&storyTypeFlag, "story-type", "", "Narrative structure (three_act, kishotenketsu, circular, attempts, catalog); inferred when omitted")
	cmd.Flags().StringArrayVar(&roleFlags, "role", nil, "Role hint as <scene-id>=<role>; repeatable")
	cmd.Flags().BoolVar(&register, "register", false, "Persist the story and link the scenes in the index")
	return cmd
}

func parseRoleHints(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	hints := make(map[string]string, len(flags))
	for _, flag := range flags {
		parts := strings.SplitN(flag, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid --role %q, expected <scene-id>=<role>", flag)
		}
		hints[parts[0]] = parts[1]
	}
	return hints, nil
}

func newExpandBlueprintCommand(ctx *commandContext) *cobra.Command {
	var indexFlag int
	var register bool

	cmd := &cobra.Command{
		Use:   "expand-blueprint <story-id>",
		Short: "Expand one story blueprint into a full scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if indexFlag < 0 {
				return errors.New("--index must be zero or positive")
			}

			docs, index, closeStores, err := ctx.openStores()
			if err != nil {
				return err
			}
			defer closeStores()

			doc, err := docs.Load(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			storyDoc, ok := doc.(*sis.StorySIS)
			if !ok {
				return fmt.Errorf("%s is a %s document, not a story", args[0], doc.Kind())
			}

			svc, err := ctx.storyService()
			if err != nil {
				return err
			}
			expansion, err := svc.ExpandBlueprint(cmd.Context(), storyDoc, indexFlag)
			if err != nil {
				return err
			}

			if register {
				scene := expansion.Scene
				if err := docs.Save(scene); err != nil {
					return err
				}
				if err := index.Register(cmd.Context(), sisindex.RecordFor(scene)); err != nil {
					return err
				}
				role := storyDoc.SceneBlueprints[indexFlag].SceneType
				if err := index.LinkScene(cmd.Context(), storyDoc.StoryID, scene.SceneID, role, indexFlag+1); err != nil {
					return err
				}
			}

			return writeJSON(cmd, expansion)
		},
	}

	cmd.Flags().IntVar(&indexFlag, "index", 0, "Blueprint index to expand (zero-based)")
	cmd.Flags().BoolVar(&register, "register", false, "Persist the scene and link it to the story in the index")
	return cmd
}
