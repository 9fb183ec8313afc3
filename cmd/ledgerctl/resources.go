package main

import (
	"context"
	"fmt"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/client"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// fields holds the raw values of the record flags shared by add and edit.
type fields struct {
	kind        string
	amount      string
	value       string
	category    string
	description string
	date        string
}

// str returns the flag value when it was set on the command line.
func str(flags *pflag.FlagSet, name, v string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &v
}

func money(flags *pflag.FlagSet, name, v string) (*decimal.Decimal, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, v, err)
	}
	return &d, nil
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", arg, err)
	}
	return id, nil
}

func (f *fields) transaction(flags *pflag.FlagSet) (models.TransactionInput, error) {
	amount, err := money(flags, "amount", f.amount)
	if err != nil {
		return models.TransactionInput{}, err
	}
	return models.TransactionInput{
		Type:        str(flags, "type", f.kind),
		Amount:      amount,
		Category:    str(flags, "category", f.category),
		Description: str(flags, "description", f.description),
		Date:        str(flags, "date", f.date),
	}, nil
}

func transactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List and change transactions",
	}

	addFlags := func(c *cobra.Command, f *fields) {
		c.Flags().StringVar(&f.kind, "type", "", "income or expense")
		c.Flags().StringVar(&f.amount, "amount", "", "amount, e.g. 12.40")
		c.Flags().StringVar(&f.category, "category", "", "category")
		c.Flags().StringVar(&f.description, "description", "", "description")
		c.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD or RFC 3339")
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			txns := a.client.ListTransactions(cmd.Context())
			renderTable(cmd.OutOrStdout(), []string{"ID", "Date", "Type", "Amount", "Category", "Description"}, transactionRows(txns))
			return nil
		},
	}

	var addFields fields
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			in, err := addFields.transaction(cmd.Flags())
			if err != nil {
				return err
			}
			if in.Date == nil {
				today := time.Now().Format(dateLayout)
				in.Date = &today
			}
			created := a.client.CreateTransaction(cmd.Context(), in)
			if created == nil {
				return fmt.Errorf("failed to add transaction")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction added: %s\n", created.ID)
			return nil
		},
	}
	addFlags(add, &addFields)
	_ = add.MarkFlagRequired("type")
	_ = add.MarkFlagRequired("amount")

	var editFields fields
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := editFields.transaction(cmd.Flags())
			if err != nil {
				return err
			}
			if a.client.UpdateTransaction(cmd.Context(), id, in) == nil {
				return fmt.Errorf("failed to update transaction %s", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction updated: %s\n", id)
			return nil
		},
	}
	addFlags(edit, &editFields)

	cmd.AddCommand(list, add, edit, deleteCmd(a, "transaction", (*client.Client).DeleteTransaction))
	return cmd
}

func deleteCmd(a *app, singular string, del func(*client.Client, context.Context, uuid.UUID) bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !del(a.client, cmd.Context(), id) {
				return fmt.Errorf("failed to delete %s %s", singular, id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", singular, id)
			return nil
		},
	}
}

func assetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List and change assets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Value", "Description", "Added"}, assetRows(a.client.ListAssets(cmd.Context())))
			return nil
		},
	}

	input := func(flags *pflag.FlagSet, f *fields) (models.AssetInput, error) {
		value, err := money(flags, "value", f.value)
		if err != nil {
			return models.AssetInput{}, err
		}
		return models.AssetInput{Value: value, Description: str(flags, "description", f.description)}, nil
	}
	addFlags := func(c *cobra.Command, f *fields) {
		c.Flags().StringVar(&f.value, "value", "", "current value")
		c.Flags().StringVar(&f.description, "description", "", "description")
	}

	var addFields fields
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			in, err := input(cmd.Flags(), &addFields)
			if err != nil {
				return err
			}
			created := a.client.CreateAsset(cmd.Context(), in)
			if created == nil {
				return fmt.Errorf("failed to add asset")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Asset added: %s\n", created.ID)
			return nil
		},
	}
	addFlags(add, &addFields)
	_ = add.MarkFlagRequired("value")

	var editFields fields
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := input(cmd.Flags(), &editFields)
			if err != nil {
				return err
			}
			if a.client.UpdateAsset(cmd.Context(), id, in) == nil {
				return fmt.Errorf("failed to update asset %s", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Asset updated: %s\n", id)
			return nil
		},
	}
	addFlags(edit, &editFields)

	cmd.AddCommand(list, add, edit, deleteCmd(a, "asset", (*client.Client).DeleteAsset))
	return cmd
}

func liabilitiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liabilities",
		Short: "List and change liabilities",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your liabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "Amount", "Description", "Added"}, liabilityRows(a.client.ListLiabilities(cmd.Context())))
			return nil
		},
	}

	input := func(flags *pflag.FlagSet, f *fields) (models.LiabilityInput, error) {
		amount, err := money(flags, "amount", f.amount)
		if err != nil {
			return models.LiabilityInput{}, err
		}
		return models.LiabilityInput{Amount: amount, Description: str(flags, "description", f.description)}, nil
	}
	addFlags := func(c *cobra.Command, f *fields) {
		c.Flags().StringVar(&f.amount, "amount", "", "amount owed")
		c.Flags().StringVar(&f.description, "description", "", "description")
	}

	var addFields fields
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a liability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			in, err := input(cmd.Flags(), &addFields)
			if err != nil {
				return err
			}
			created := a.client.CreateLiability(cmd.Context(), in)
			if created == nil {
				return fmt.Errorf("failed to add liability")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Liability added: %s\n", created.ID)
			return nil
		},
	}
	addFlags(add, &addFields)
	_ = add.MarkFlagRequired("amount")

	var editFields fields
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of a liability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := input(cmd.Flags(), &editFields)
			if err != nil {
				return err
			}
			if a.client.UpdateLiability(cmd.Context(), id, in) == nil {
				return fmt.Errorf("failed to update liability %s", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Liability updated: %s\n", id)
			return nil
		},
	}
	addFlags(edit, &editFields)

	cmd.AddCommand(list, add, edit, deleteCmd(a, "liability", (*client.Client).DeleteLiability))
	return cmd
}
