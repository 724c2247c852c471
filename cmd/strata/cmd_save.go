package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/snapshot"
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Capture and manage level snapshots",
	}
	cmd.AddCommand(
		newSaveCreateCmd(),
		newSaveListCmd(),
		newSaveRemoveCmd(),
	)
	return cmd
}

func newSaveCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Snapshot an application's generated levels into a named save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := cmd.Flags().GetString("app")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if application == "" {
				return fmt.Errorf("--app is required")
			}

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			mgr := snapshot.NewManager(env.store, env.cfg, env.log.Op, env.log.Audit)
			save, captured, err := mgr.SaveLevels(cmd.Context(), application, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"save":     save,
					"captured": captured,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Save %q (%s) captured %d objects for %s\n", save.Name, save.ID, captured, application)
			return nil
		},
	}
	cmd.Flags().String("app", "", "Application whose generated levels are captured (required)")
	return cmd
}

func newSaveListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List save records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := cmd.Flags().GetString("app")
			jsonOut, _ := cmd.Flags().GetBool("json")

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			catalog := snapshot.NewCatalog(env.store, env.cfg, env.log.Op, env.log.Audit)
			var saves []models.Save
			if application != "" {
				saves, err = catalog.SavesByApplication(cmd.Context(), application)
			} else {
				saves, err = catalog.AllSaves(cmd.Context())
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(saves)
			}
			if len(saves) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saves.")
				return nil
			}
			for _, sv := range saves {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  %-12s  %s\n", sv.ID, sv.Name, sv.Application, sv.Timestamp)
			}
			return nil
		},
	}
	cmd.Flags().String("app", "", "Restrict the listing to one application")
	return cmd
}

func newSaveRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [name]",
		Short: "Remove a save by name or ID, or every save with --all",
		Long: `Remove save records along with the operations each save owns.

A name that matches more than one save is rejected; remove by ID
instead (see 'strata save list').`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			all, _ := cmd.Flags().GetBool("all")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if !all && id == "" && len(args) == 0 {
				return fmt.Errorf("provide a save name, --id, or --all")
			}

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			catalog := snapshot.NewCatalog(env.store, env.cfg, env.log.Op, env.log.Audit)

			var removed int
			switch {
			case all:
				removed, err = catalog.RemoveAllSaves(cmd.Context())
			case id != "":
				var ok bool
				ok, err = catalog.RemoveSaveByID(cmd.Context(), id)
				if ok {
					removed = 1
				}
			default:
				var ok bool
				ok, err = catalog.RemoveSave(cmd.Context(), args[0])
				if ok {
					removed = 1
				}
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{"removed": removed})
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching save.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d save(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().String("id", "", "ID of the save to remove")
	cmd.Flags().Bool("all", false, "Remove every save")
	return cmd
}
