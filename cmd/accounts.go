package cmd

import (
	"fmt"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagAcctName        string
	flagAcctCategory    string
	flagAcctInstitution string
	flagAcctBalance     string
	flagAcctJSON        bool
)

var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"account", "acct"},
	Short:   "Manage manually tracked accounts",
	RunE:    runAccountsList,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runAccountsList,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an account",
	RunE:  runAccountsAdd,
}

var accountsSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update an account's name, category, institution or balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsSet,
}

var accountsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete an account",
	Args:    cobra.ExactArgs(1),
	RunE:    runAccountsRm,
}

func init() {
	accountsListCmd.Flags().BoolVar(&flagAcctJSON, "json", false, "Print JSON")
	for _, c := range []*cobra.Command{accountsAddCmd, accountsSetCmd} {
		c.Flags().StringVar(&flagAcctName, "name", "", "Account name")
		c.Flags().StringVar(&flagAcctCategory, "category", "", "resp, tfsa, rrsp or taxable")
		c.Flags().StringVar(&flagAcctInstitution, "institution", "", "Institution holding the account")
		c.Flags().StringVar(&flagAcctBalance, "balance", "", "Current balance")
	}
	_ = accountsAddCmd.MarkFlagRequired("name")
	_ = accountsAddCmd.MarkFlagRequired("category")

	accountsCmd.AddCommand(accountsListCmd, accountsAddCmd, accountsSetCmd, accountsRmCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	accounts, err := e.store.ListAccounts(ctxOf(cmd), e.user)
	if err != nil {
		return err
	}
	if flagAcctJSON {
		if accounts == nil {
			accounts = []model.Account{}
		}
		return printJSON(accounts)
	}
	if len(accounts) == 0 {
		fmt.Println("\n  No accounts yet. Add one with `roomwise accounts add --name ... --category tfsa --balance ...`")
		fmt.Println()
		return nil
	}

	cur := e.currency()
	summary := model.Summarize(accounts)
	rows := make([][]string, 0, len(accounts)+2)
	for _, a := range accounts {
		rows = append(rows, []string{
			shortID(a.ID),
			a.Name,
			a.Category.Label(),
			a.Institution,
			cli.FormatMoney(a.Balance, cur),
			a.UpdatedAt.Local().Format("2006-01-02"),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"", "TOTAL", "", "", cli.FormatMoney(summary.TotalBalance, cur), ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Accounts (%s)", e.user),
		Headers: []string{"ID", "Name", "Category", "Institution", "Balance", "Updated"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runAccountsAdd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	a := model.Account{UserID: e.user, Name: flagAcctName, Institution: flagAcctInstitution}
	if a.Category, err = parseCategory(flagAcctCategory); err != nil {
		return err
	}
	if flagAcctBalance != "" {
		if a.Balance, err = parseAmount("balance", flagAcctBalance); err != nil {
			return err
		}
	}
	if err := e.store.SaveAccount(ctxOf(cmd), &a); err != nil {
		return err
	}
	logger.Debug().Str("id", a.ID).Str("category", string(a.Category)).Msg("account added")
	fmt.Printf("  Added %s %s (%s) %s\n", cli.RenderMuted(shortID(a.ID)), a.Name, a.Category.Label(),
		cli.FormatMoney(a.Balance, e.currency()))
	return nil
}

func runAccountsSet(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	a, err := findAccount(cmd, e, args[0])
	if err != nil {
		return err
	}
	prev := a.Balance
	flags := cmd.Flags()
	if flags.Changed("name") {
		a.Name = flagAcctName
	}
	if flags.Changed("category") {
		if a.Category, err = parseCategory(flagAcctCategory); err != nil {
			return err
		}
	}
	if flags.Changed("institution") {
		a.Institution = flagAcctInstitution
	}
	if flags.Changed("balance") {
		if a.Balance, err = parseAmount("balance", flagAcctBalance); err != nil {
			return err
		}
	}
	if err := e.store.SaveAccount(ctx, &a); err != nil {
		return err
	}
	fmt.Printf("  Updated %s %s  %s (%s)\n", cli.RenderMuted(shortID(a.ID)), a.Name,
		cli.FormatMoney(a.Balance, e.currency()), cli.FormatDelta(a.Balance, prev, e.currency()))
	return nil
}

func runAccountsRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := findAccount(cmd, e, args[0])
	if err != nil {
		return err
	}
	if err := e.store.DeleteAccount(ctxOf(cmd), e.user, a.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s %s\n", cli.RenderMuted(shortID(a.ID)), a.Name)
	return nil
}

// findAccount resolves a full id or a unique id prefix as printed by list.
func findAccount(cmd *cobra.Command, e *env, ref string) (model.Account, error) {
	ctx := ctxOf(cmd)
	if a, err := e.store.GetAccount(ctx, e.user, ref); err == nil {
		return a, nil
	}
	accounts, err := e.store.ListAccounts(ctx, e.user)
	if err != nil {
		return model.Account{}, err
	}
	var matches []model.Account
	for _, a := range accounts {
		if len(ref) >= 4 && len(a.ID) >= len(ref) && a.ID[:len(ref)] == ref {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Account{}, fmt.Errorf("no account matches %q", ref)
	}
	return model.Account{}, fmt.Errorf("%q matches %d accounts, use more of the id", ref, len(matches))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
