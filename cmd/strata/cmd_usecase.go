package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmourtada/strata/internal/usecase"
)

func newUseCaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usecase",
		Short: "Manage the use-case activation tree",
	}
	cmd.AddCommand(
		newUseCaseAddCmd(),
		newUseCaseActivateCmd(),
		newUseCaseChildrenCmd(),
	)
	return cmd
}

func newUseCaseAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a use case, as a configuration root or under a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, _ := cmd.Flags().GetString("parent")
			active, _ := cmd.Flags().GetBool("active")
			jsonOut, _ := cmd.Flags().GetBool("json")

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			reg := usecase.NewRegistry(env.store, env.cfg, env.log.Op)
			uc, err := reg.AddUseCase(cmd.Context(), args[0], active, parentID)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(uc)
			}
			if parentID == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Created configuration root %q (%s)\n", uc.Name, uc.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Created use case %q (%s) under %s\n", uc.Name, uc.ID, parentID)
			}
			return nil
		},
	}
	cmd.Flags().String("parent", "", "ID of the parent use case (omit to create a configuration root)")
	cmd.Flags().Bool("active", false, "Create the use case already active")
	return cmd
}

func newUseCaseActivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate <id>",
		Short: "Set a use case's active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			off, _ := cmd.Flags().GetBool("off")
			jsonOut, _ := cmd.Flags().GetBool("json")

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			reg := usecase.NewRegistry(env.store, env.cfg, env.log.Op)
			uc, err := reg.SetActivation(cmd.Context(), args[0], !off)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(uc)
			}
			state := "active"
			if off {
				state = "inactive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Use case %q is now %s\n", uc.Name, state)
			return nil
		},
	}
	cmd.Flags().Bool("off", false, "Deactivate instead of activate")
	return cmd
}

func newUseCaseChildrenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "children <id>",
		Short: "List the direct children of a use case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			env, closeEnv, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()

			reg := usecase.NewRegistry(env.store, env.cfg, env.log.Op)
			children, err := reg.Children(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(children)
			}
			if len(children) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No children.")
				return nil
			}
			for _, c := range children {
				marker := " "
				if c.Active {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", marker, c.ID, c.Name)
			}
			return nil
		},
	}
}
