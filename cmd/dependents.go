package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagDepName      string
	flagDepBirthYear int
)

var dependentsCmd = &cobra.Command{
	Use:     "dependents",
	Aliases: []string{"deps"},
	Short:   "Manage dependents eligible for matched savings",
	RunE:    runDependentsList,
}

var dependentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dependents",
	RunE:  runDependentsList,
}

var dependentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a dependent",
	RunE:  runDependentsAdd,
}

var dependentsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a dependent",
	Args:  cobra.ExactArgs(1),
	RunE:  runDependentsRm,
}

func init() {
	dependentsAddCmd.Flags().StringVar(&flagDepName, "name", "", "Name")
	dependentsAddCmd.Flags().IntVar(&flagDepBirthYear, "birth-year", 0, "Birth year (omit if unknown)")
	_ = dependentsAddCmd.MarkFlagRequired("name")
	dependentsCmd.AddCommand(dependentsListCmd, dependentsAddCmd, dependentsRmCmd)
	rootCmd.AddCommand(dependentsCmd)
}

func runDependentsList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	deps, err := e.store.ListDependents(ctxOf(cmd), e.user)
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		fmt.Println("\n  No dependents recorded.")
		fmt.Println()
		return nil
	}

	year := currentYear()
	maxAge := e.cfg.MaxDependentAge()
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		born := cli.RenderMuted("unknown")
		if d.BirthYear > 0 {
			born = strconv.Itoa(d.BirthYear)
		}
		eligible := cli.RenderMuted("no")
		if d.Eligible(year, maxAge) {
			eligible = cli.RenderPositive("yes")
		}
		rows = append(rows, []string{shortID(d.ID), d.Name, born, eligible})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Dependents (%d eligible in %d)", model.EligibleCount(deps, year, maxAge), year),
		Headers: []string{"ID", "Name", "Born", "Eligible"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runDependentsAdd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	d := model.Dependent{UserID: e.user, Name: flagDepName, BirthYear: flagDepBirthYear}
	if err := e.store.SaveDependent(ctxOf(cmd), &d); err != nil {
		return err
	}
	fmt.Printf("  Added %s %s\n", cli.RenderMuted(shortID(d.ID)), d.Name)
	return nil
}

func runDependentsRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	id := args[0]
	deps, err := e.store.ListDependents(ctx, e.user)
	if err != nil {
		return err
	}
	for _, d := range deps {
		if len(id) >= 4 && len(d.ID) >= len(id) && d.ID[:len(id)] == id {
			id = d.ID
			break
		}
	}
	if err := e.store.DeleteDependent(ctx, e.user, id); err != nil {
		return err
	}
	fmt.Printf("  Removed %s\n", cli.RenderMuted(shortID(id)))
	return nil
}
