package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cleared-dev/rentcheck/internal/activity"
	"github.com/cleared-dev/rentcheck/internal/matching"
	"github.com/cleared-dev/rentcheck/internal/model"
	"github.com/cleared-dev/rentcheck/internal/store"
)

func newTenantCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants and their match rules",
	}
	cmd.AddCommand(
		newTenantAddCommand(opts),
		newTenantEditCommand(opts),
		newTenantRmCommand(opts),
		newTenantListCommand(opts),
	)
	return cmd
}

// tenantFlags holds the flags shared by tenant add and edit. Only flags the
// user set are applied, so edit changes just what was given.
type tenantFlags struct {
	id        string
	name      string
	property  string
	account   string
	mode      string
	rent      string
	tolerance string
	terms     []string
	amounts   []string
}

func (f *tenantFlags) register(fs *pflag.FlagSet, withID bool) {
	if withID {
		fs.StringVar(&f.id, "id", "", "tenant id (default: generated)")
	}
	fs.StringVar(&f.name, "name", "", "tenant name")
	fs.StringVar(&f.property, "property", "", "property or unit")
	fs.StringVar(&f.account, "account", "", "only match deposits into this bank account")
	fs.StringVar(&f.mode, "mode", "", "match mode: searchTerms or exactAmounts")
	fs.StringVar(&f.rent, "rent", "", "expected rent (searchTerms)")
	fs.StringVar(&f.tolerance, "tolerance", "", "allowed deviation from the expected rent (searchTerms)")
	fs.StringArrayVar(&f.terms, "term", nil, "text to look for in the deposit description, repeatable (searchTerms)")
	fs.StringSliceVar(&f.amounts, "amount", nil, "exact deposit amount, repeatable (exactAmounts)")
}

var (
	searchTermsFlags  = []string{"rent", "tolerance", "term"}
	exactAmountsFlags = []string{"amount"}
)

// apply writes the changed flags onto t.
func (f *tenantFlags) apply(fs *pflag.FlagSet, t *model.Tenant) error {
	if fs.Changed("name") {
		t.Name = f.name
	}
	if fs.Changed("property") {
		t.Property = f.property
	}
	if fs.Changed("account") {
		t.AccountID = f.account
	}

	mode := t.Mode()
	switch {
	case fs.Changed("mode"):
		mode = model.MatchMode(f.mode)
	case mode == "" && anyChanged(fs, exactAmountsFlags):
		mode = model.MatchExactAmounts
	case mode == "":
		mode = model.MatchSearchTerms
	}

	switch mode {
	case model.MatchSearchTerms:
		if name, ok := firstChanged(fs, exactAmountsFlags); ok {
			return fmt.Errorf("--%s does not apply to %s mode", name, mode)
		}
		r, _ := t.Rule.(model.SearchTermsRule)
		if fs.Changed("rent") {
			rent, err := parseAmount("rent", f.rent)
			if err != nil {
				return err
			}
			r.ExpectedRent = decimal.NewNullDecimal(rent)
		}
		if fs.Changed("tolerance") {
			tol, err := parseAmount("tolerance", f.tolerance)
			if err != nil {
				return err
			}
			r.Tolerance = tol
		}
		if fs.Changed("term") {
			r.Terms = f.terms
		}
		t.Rule = r
	case model.MatchExactAmounts:
		if name, ok := firstChanged(fs, searchTermsFlags); ok {
			return fmt.Errorf("--%s does not apply to %s mode", name, mode)
		}
		r, _ := t.Rule.(model.ExactAmountsRule)
		if fs.Changed("amount") {
			r.Amounts = nil
			for _, s := range f.amounts {
				amt, err := parseAmount("amount", s)
				if err != nil {
					return err
				}
				r.Amounts = append(r.Amounts, amt)
			}
		}
		t.Rule = r
	default:
		return fmt.Errorf("unknown match mode %q (want %s or %s)", f.mode, model.MatchSearchTerms, model.MatchExactAmounts)
	}
	return nil
}

func anyChanged(fs *pflag.FlagSet, names []string) bool {
	_, ok := firstChanged(fs, names)
	return ok
}

func firstChanged(fs *pflag.FlagSet, names []string) (string, bool) {
	for _, n := range names {
		if fs.Changed(n) {
			return n, true
		}
	}
	return "", false
}

func parseAmount(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return d, nil
}

func newTenantAddCommand(opts *rootOptions) *cobra.Command {
	flags := &tenantFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}

			tenant := model.Tenant{ID: flags.id}
			if err := flags.apply(cmd.Flags(), &tenant); err != nil {
				return err
			}
			if _, err := p.svc.Tenant(tenant.ID); err == nil {
				return fmt.Errorf("tenant %s already exists, use tenant edit", tenant.ID)
			}
			return saveTenant(cmd, p, tenant, "add")
		},
	}
	flags.register(cmd.Flags(), true)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTenantEditCommand(opts *rootOptions) *cobra.Command {
	flags := &tenantFlags{}

	cmd := &cobra.Command{
		Use:   "edit TENANT_ID",
		Short: "Change a tenant's details or match rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}

			tenant, err := p.svc.Tenant(args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(cmd.Flags(), &tenant); err != nil {
				return err
			}
			return saveTenant(cmd, p, tenant, "edit")
		},
	}
	flags.register(cmd.Flags(), false)
	return cmd
}

func saveTenant(cmd *cobra.Command, p *project, tenant model.Tenant, verb string) error {
	out := cmd.OutOrStdout()

	res, err := p.svc.SaveTenant(tenant)
	if err != nil {
		return err
	}
	p.record(activity.ActionTenantSave, res.Tenant.ID, "", string(res.Tenant.Mode()))
	p.recordRetracted(res.Retracted, "rule changed")

	if res.Created {
		fmt.Fprintf(out, "Added tenant %s (%s)\n", res.Tenant.Name, res.Tenant.ID)
	} else {
		fmt.Fprintf(out, "Updated tenant %s (%s)\n", res.Tenant.Name, res.Tenant.ID)
		fmt.Fprintf(out, "%d payment(s) no longer match and were unassigned\n", len(res.Retracted))
	}
	if err := matching.CheckRule(res.Tenant); err != nil {
		fmt.Fprintf(out, "Warning: %v, this tenant will not match any deposits\n", err)
	}

	if p.cfg.Matching.AutoMatchOnTenantSave {
		if _, err := p.runMatch(cmd); err != nil {
			return err
		}
	}

	p.finish(fmt.Sprintf("tenant %s: %s", verb, res.Tenant.Name))
	return nil
}

func newTenantRmCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm TENANT_ID",
		Short: "Delete a tenant with its assignments and rejections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			tenant, err := p.svc.Tenant(args[0])
			if err != nil {
				return err
			}
			if err := p.svc.DeleteTenant(tenant.ID); err != nil {
				return err
			}
			p.record(activity.ActionTenantDelete, tenant.ID, "", tenant.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tenant %s (%s)\n", tenant.Name, tenant.ID)
			p.finish(fmt.Sprintf("tenant rm: %s", tenant.Name))
			return nil
		},
	}
}

func newTenantListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants in match priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, opts)
			if err != nil {
				return err
			}
			tenants, err := p.svc.Tenants()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROPERTY\tACCOUNT\tMODE\tRULE")
			for _, t := range tenants {
				account := t.AccountID
				if account == "" {
					account = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Property, account, t.Mode(), describeRule(t.Rule))
			}
			return w.Flush()
		},
	}
}

func describeRule(r model.Rule) string {
	switch r := r.(type) {
	case model.SearchTermsRule:
		rent := "?"
		if r.ExpectedRent.Valid {
			rent = r.ExpectedRent.Decimal.StringFixed(2)
		}
		return fmt.Sprintf("%s +/- %s when %s", rent, r.Tolerance.StringFixed(2), strings.Join(r.Terms, store.ListSep))
	case model.ExactAmountsRule:
		amounts := make([]string, len(r.Amounts))
		for i, a := range r.Amounts {
			amounts[i] = a.StringFixed(2)
		}
		return strings.Join(amounts, store.ListSep)
	default:
		return "-"
	}
}
