package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/tagging"
	"github.com/jmourtada/strata/internal/usecase"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags and query tag selection",
	}
	cmd.AddCommand(
		newTagAddCmd(),
		newTagListCmd(),
		newTagSelectedCmd(),
	)
	return cmd
}

func newTagAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag under a use case",
		Long: `Create a tag attached to a use case in the activation tree.

Example:
  strata tag add legacy-io --parent use-case-1234 --request "obj.type = 'file'"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, _ := cmd.Flags().GetString("parent")
			request, _ := cmd.Flags().GetString("request")
			description, _ := cmd.Flags().GetString("description")
			active, _ := cmd.Flags().GetBool("active")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if parentID == "" {
				return fmt.Errorf("--parent is required")
			}

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			reg := tagging.NewRegistry(env.store, env.cfg, env.log.Op)
			tag, err := reg.AddTag(cmd.Context(), args[0], active, request, description, parentID)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(tag)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tag %q (%s) under %s\n", tag.Name, tag.ID, parentID)
			return nil
		},
	}
	cmd.Flags().String("parent", "", "ID of the use case to attach the tag to (required)")
	cmd.Flags().String("request", "", "Selection rule evaluated by the store backend")
	cmd.Flags().String("description", "", "Human-readable description")
	cmd.Flags().Bool("active", false, "Create the tag already active")
	return cmd
}

func newTagListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <use-case-id>",
		Short: "List the tags attached to a use case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activeOnly, _ := cmd.Flags().GetBool("active")
			jsonOut, _ := cmd.Flags().GetBool("json")

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			reg := tagging.NewRegistry(env.store, env.cfg, env.log.Op)
			var tags []models.Tag
			if activeOnly {
				tags, err = reg.ActiveTags(cmd.Context(), args[0])
			} else {
				tags, err = reg.TagsForUseCase(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(tags)
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags.")
				return nil
			}
			for _, t := range tags {
				marker := " "
				if t.Active {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %s\n", marker, t.ID, t.Name, t.Request)
			}
			return nil
		},
	}
	cmd.Flags().Bool("active", false, "Show only active tags")
	return cmd
}

func newTagSelectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selected <configuration>",
		Short: "Show the tags selected by a configuration's activation state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			resolver := usecase.NewResolver(env.store, env.cfg, env.log.Op)
			tags, err := resolver.SelectedTags(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(tags)
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags selected.")
				return nil
			}
			for _, t := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", t.ID, t.Name, t.Request)
			}
			return nil
		},
	}
}
