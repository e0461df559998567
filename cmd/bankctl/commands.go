package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/application/services"
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/infrastructure/config"
	"github.com/1CEs/xams-sub001/infrastructure/di"
)

var (
	profilePath string
	ownerFlag   string
	parentFlag  string
	examFlags   []string
	pickExam    string

	profile   Profile
	container *di.ClientContainer
	session   *services.Session

	rootCmd = &cobra.Command{
		Use:           "bankctl",
		Short:         "Browse and edit exam banks",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd.Context())
		},
	}

	lsCmd = &cobra.Command{
		Use:   "ls",
		Short: "List the banks at the cursor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), session.View(), nil)
		},
	}

	cdCmd = &cobra.Command{
		Use:   "cd <bank|..|/>",
		Short: "Open a listed bank, go up one level, or return to the root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			view := session.View()
			var err error
			switch args[0] {
			case "/":
				view, err = session.ResetToRoot(ctx)
			case "..":
				if index, ok := parentIndex(view); ok {
					view, err = session.JumpTo(ctx, index)
				}
			default:
				view, err = session.Descend(ctx, resolve(view, args[0]))
			}
			return render(cmd.OutOrStdout(), view, err)
		},
	}

	upCmd = &cobra.Command{
		Use:     "up <index>",
		Aliases: []string{"back"},
		Short:   "Jump to a breadcrumb; -1 is the root",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("breadcrumb index must be a number: %w", err)
			}
			view, err := session.JumpTo(cmd.Context(), index)
			return render(cmd.OutOrStdout(), view, err)
		},
	}

	mkdirCmd = &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a bank in the open bank, or under --parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bank := ports.NewBank{Name: args[0], ExamIDs: examFlags}
			var (
				view    services.View
				created *entities.Bank
				err     error
			)
			if parentFlag != "" {
				view, created, err = session.CreateUnder(cmd.Context(), valueobjects.BankID(parentFlag), bank)
			} else {
				view, created, err = session.Create(cmd.Context(), bank)
			}
			if created != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", created.Name, created.ID)
			}
			return render(cmd.OutOrStdout(), view, err)
		},
	}

	renameCmd = &cobra.Command{
		Use:     "rename <bank> <name>",
		Aliases: []string{"mv"},
		Short:   "Rename a bank anywhere in the forest",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := session.Rename(cmd.Context(), resolve(session.View(), args[0]), args[1])
			return render(cmd.OutOrStdout(), view, err)
		},
	}

	rmCmd = &cobra.Command{
		Use:   "rm <bank>",
		Short: "Delete a bank and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := session.Delete(cmd.Context(), resolve(session.View(), args[0]))
			return render(cmd.OutOrStdout(), view, err)
		},
	}

	treeCmd = &cobra.Command{
		Use:   "tree [bank]",
		Short: "Print a bank's subtree, or the whole forest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, bank := range session.Forest() {
					printTree(out, bank, 0)
				}
				return nil
			}
			bank, err := session.Subtree(cmd.Context(), resolve(session.View(), args[0]))
			if err != nil {
				return err
			}
			printTree(out, bank, 0)
			return nil
		},
	}

	pickCmd = &cobra.Command{
		Use:   "pick [bank...]",
		Short: "Walk the picker through banks and print the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			scope := ports.ForestScope{OwnerID: profile.Owner, ExamID: pickExam}
			picker := services.NewSelector(container.Store, nil, scope, container.Logger, container.Metrics)

			view, err := picker.Open(ctx)
			if err != nil {
				return err
			}
			for _, arg := range args {
				if view, err = picker.Enter(ctx, resolve(view, arg)); err != nil {
					return render(cmd.OutOrStdout(), view, err)
				}
			}
			selected, ok := picker.Selected()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing selected")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "selected %s (%s)\n", selected.Name, selected.ID)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", filepath.Join(defaultDir(), "bankctl.yaml"), "profile file")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "owner whose banks are listed (overrides the profile)")

	mkdirCmd.Flags().StringVar(&parentFlag, "parent", "", "create under this bank instead of the open one")
	mkdirCmd.Flags().StringSliceVar(&examFlags, "exam", nil, "exam ids to attach")
	pickCmd.Flags().StringVar(&pickExam, "exam", "", "only list banks referencing this exam")

	rootCmd.AddCommand(lsCmd, cdCmd, upCmd, mkdirCmd, renameCmd, rmCmd, treeCmd, pickCmd)
}

func setup(ctx context.Context) error {
	var err error
	if profile, err = loadProfile(profilePath); err != nil {
		return err
	}
	if ownerFlag != "" {
		profile.Owner = ownerFlag
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg.BanksAPIURL = profile.APIURL
	if profile.Timeout > 0 {
		cfg.RemoteTimeout = profile.Timeout
	}
	cfg.EnableMetrics = false

	if container, err = di.InitializeClientContainer(cfg); err != nil {
		return err
	}

	cursor, err := loadSnapshot(profile.State)
	if err != nil {
		container.Logger.Warn("Discarding unreadable cursor state", zap.Error(err))
		cursor = nil
	}
	session = services.NewSession(container.Store, cursor, ports.ForestScope{OwnerID: profile.Owner}, container.Logger, container.Metrics)
	_, err = session.Load(ctx)
	return err
}

// teardown persists the cursor. It runs after failed commands too, since a
// rejected delete can still reset the cursor.
func teardown() error {
	if session == nil {
		return nil
	}
	_ = container.Logger.Sync()
	return saveSnapshot(profile.State, session.Snapshot())
}

// parentIndex is the breadcrumb one level up; ok is false at the root
func parentIndex(view services.View) (int, bool) {
	if len(view.Trail) == 0 {
		return 0, false
	}
	return len(view.Trail) - 2, true
}

// resolve accepts a bank id or the name of a bank listed at the cursor
func resolve(view services.View, arg string) valueobjects.BankID {
	for _, bank := range view.Banks {
		if bank.Name == arg {
			return bank.ID
		}
	}
	return valueobjects.BankID(arg)
}

func render(w io.Writer, view services.View, err error) error {
	fmt.Fprintln(w, breadcrumbs(view))
	for _, bank := range view.Banks {
		fmt.Fprintf(w, "  %-24s %s  (%d exams, %d sub-banks)\n", bank.Name, bank.ID, len(bank.ExamIDs), len(bank.SubBanks))
	}
	if len(view.ExamIDs) > 0 {
		fmt.Fprintf(w, "  exams: %s\n", strings.Join(view.ExamIDs, ", "))
	}
	return err
}

func breadcrumbs(view services.View) string {
	parts := []string{"/"}
	for _, crumb := range view.Trail {
		parts = append(parts, crumb.Name)
	}
	return strings.Join(parts, " > ")
}

func printTree(w io.Writer, bank entities.Bank, depth int) {
	fmt.Fprintf(w, "%s%s (%s)\n", strings.Repeat("  ", depth), bank.Name, bank.ID)
	for _, sub := range bank.SubBanks {
		printTree(w, sub, depth+1)
	}
}
