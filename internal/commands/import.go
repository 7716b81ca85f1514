package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/rentcheck/internal/activity"
	"github.com/cleared-dev/rentcheck/internal/config"
	"github.com/cleared-dev/rentcheck/internal/importer"
	"github.com/cleared-dev/rentcheck/internal/model"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var accountName string
	var noMatch bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Ingest bank exports from the import directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			return runImport(cmd, p, accountName, noMatch)
		},
	}

	cmd.Flags().StringVar(&accountName, "account", "", "bank account the exports belong to (default: the only configured account)")
	cmd.Flags().BoolVar(&noMatch, "no-match", false, "skip auto-match after import")

	return cmd
}

func resolveAccount(cfg *config.Config, name string) (config.BankAccount, error) {
	if name == "" {
		if len(cfg.BankAccounts) != 1 {
			return config.BankAccount{}, fmt.Errorf("%d bank accounts configured, pick one with --account", len(cfg.BankAccounts))
		}
		return cfg.BankAccounts[0], nil
	}
	acct, ok := cfg.Account(name)
	if !ok {
		return config.BankAccount{}, fmt.Errorf("bank account %q is not configured in %s", name, config.FileName)
	}
	return acct, nil
}

func runImport(cmd *cobra.Command, p *project, accountName string, noMatch bool) error {
	out := cmd.OutOrStdout()

	acct, err := resolveAccount(p.cfg, accountName)
	if err != nil {
		return err
	}

	files, err := importer.Scan(p.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No files to import")
		return nil
	}

	registry := importer.DefaultRegistry()
	var txns []model.Transaction
	for _, f := range files {
		parsed, err := registry.ParseFile(f.Path, acct.Format, acct.Name)
		if err != nil {
			return err
		}
		p.log.Debug().Str("file", f.Name).Int("transactions", len(parsed)).Msg("parsed export")
		txns = append(txns, parsed...)
	}

	res, err := p.svc.ImportTransactions(txns)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := importer.MarkProcessed(p.root, f.Name); err != nil {
			return err
		}
		p.record(activity.ActionImport, "", "", fmt.Sprintf("%s into %s", f.Name, acct.Name))
	}
	p.recordRetracted(res.Retracted, "transaction corrected")

	fmt.Fprintf(out, "Imported %d file(s): %d new, %d updated, %d unchanged\n",
		len(files), res.Added, res.Updated, res.Unchanged)
	if n := len(res.Retracted); n > 0 {
		fmt.Fprintf(out, "%d payment(s) no longer match and were unassigned\n", n)
	}

	if !noMatch && p.cfg.Matching.AutoMatchOnImport {
		if _, err := p.runMatch(cmd); err != nil {
			return err
		}
	}

	p.finish(fmt.Sprintf("import: %d new transaction(s) into %s", res.Added, acct.Name))
	return nil
}
