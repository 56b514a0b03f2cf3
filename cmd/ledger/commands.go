package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// destFlags name the counterpart ledger of a transfer.
type destFlags struct {
	owner, bank, password, file string
}

func (d *destFlags) register(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVar(&d.owner, "to-owner", "", "Destination account owner id")
	cmd.Flags().StringVar(&d.bank, "to-bank", "", "Destination account bank id")
	cmd.Flags().StringVar(&d.password, "to-password", "", "Destination account password (defaults to --password)")
	cmd.Flags().StringVar(&d.file, "to-file", "", "Destination ledger file (default <data-dir>/<to-owner>__<to-bank>.csv)")
	if required {
		_ = cmd.MarkFlagRequired("to-owner")
		_ = cmd.MarkFlagRequired("to-bank")
	}
}

func (d *destFlags) set() bool {
	return d.owner != "" || d.bank != ""
}

func (c *cli) destination(d destFlags) ref {
	r := ref{owner: d.owner, bank: d.bank, password: d.password, path: d.file}
	if r.password == "" {
		r.password = c.opts.password
	}
	if r.path == "" {
		r.path = usecase.LedgerPath(c.opts.dataDir, d.owner, d.bank)
	}
	return r
}

func parseKindArg(s string) (domain.Kind, error) {
	switch strings.ToLower(s) {
	case "income":
		return domain.KindIncome, nil
	case "expense":
		return domain.KindExpense, nil
	default:
		return domain.ParseKind(s)
	}
}

func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(time.Second), nil
	}
	return domain.ParseTimestamp(s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	return amount, nil
}

func newAddCmd(c *cli) *cobra.Command {
	var (
		in     domain.TransactionInput
		amount string
		at     string
		dest   destFlags
	)

	cmd := &cobra.Command{
		Use:       "add income|expense",
		Short:     "Append an income or expense to the ledger",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"income", "expense"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			if in.Amount, err = parseAmount(amount); err != nil {
				return err
			}
			if in.Timestamp, err = parseWhen(at); err != nil {
				return err
			}
			if in.ID == "" {
				in.ID = c.ids.Generate()
			}
			if in.OperationType == "" {
				in.OperationType = string(kind)
			}
			tx, err := domain.NewTransaction(kind, in)
			if err != nil {
				return err
			}

			self, err := c.self()
			if err != nil {
				return err
			}
			account, err := c.open(ctx, self)
			if err != nil {
				return err
			}

			var destination *domain.Account
			if dest.set() {
				if destination, err = c.open(ctx, c.destination(dest)); err != nil {
					return fmt.Errorf("destination: %w", err)
				}
			}

			if err := c.ledger.AddTransaction(ctx, account, tx, destination); err != nil {
				return err
			}
			if err := c.save(ctx, account, self); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s %s, balance %s\n",
				tx.Kind(), tx.ID(), tx.Amount().StringFixed(2), account.Balance().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount, non-negative decimal")
	cmd.Flags().StringVar(&at, "at", "", "Timestamp as YYYY-MM-DD HH:MM:SS UTC (default now)")
	cmd.Flags().StringVar(&in.ID, "id", "", "Transaction id (default generated)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Free text description")
	cmd.Flags().StringVar(&in.Category, "category", "", "Category; Transfer marks one side of a transfer")
	cmd.Flags().StringVar(&in.OperationType, "operation-type", "", "Operation type label (default the kind)")
	cmd.Flags().StringVar(&in.SenderAccountID, "sender", "", "Sender account id")
	cmd.Flags().StringVar(&in.ReceiverAccountID, "receiver", "", "Receiver account id")
	_ = cmd.MarkFlagRequired("amount")
	dest.register(cmd, false)

	return cmd
}

func newTransferCmd(c *cli) *cobra.Command {
	var (
		input  usecase.TransferPairInput
		amount string
		at     string
		dest   destFlags
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money to another ledger as an expense/income pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var err error
			if input.Amount, err = parseAmount(amount); err != nil {
				return err
			}
			if input.Timestamp, err = parseWhen(at); err != nil {
				return err
			}
			if input.OutgoingID == "" {
				input.OutgoingID = c.ids.Generate()
			}
			if input.IncomingID == "" {
				input.IncomingID = c.ids.Generate()
			}

			self, err := c.self()
			if err != nil {
				return err
			}
			to := c.destination(dest)

			from, err := c.open(ctx, self)
			if err != nil {
				return err
			}
			toAccount, err := c.open(ctx, to)
			if err != nil {
				return fmt.Errorf("destination: %w", err)
			}

			transferErr := c.ledger.PostTransferPair(ctx, from, toAccount, input)

			// The outgoing side stays recorded when the incoming side fails.
			if _, recorded := from.FindByID(input.OutgoingID); recorded {
				if err := c.save(ctx, from, self); err != nil {
					return err
				}
			}
			if transferErr != nil {
				return transferErr
			}
			if err := c.save(ctx, toAccount, to); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "transferred %s from %s to %s\n",
				input.Amount.StringFixed(2), from.Key(), toAccount.Key())
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	cmd.Flags().StringVar(&at, "at", "", "Timestamp as YYYY-MM-DD HH:MM:SS UTC (default now)")
	cmd.Flags().StringVar(&input.Description, "description", "", "Free text description")
	cmd.Flags().StringVar(&input.OutgoingID, "out-id", "", "Id of the outgoing expense (default generated)")
	cmd.Flags().StringVar(&input.IncomingID, "in-id", "", "Id of the incoming income (default generated)")
	_ = cmd.MarkFlagRequired("amount")
	dest.register(cmd, true)

	return cmd
}

func newBalanceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			self, err := c.self()
			if err != nil {
				return err
			}
			account, err := c.open(cmd.Context(), self)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", account.Balance().StringFixed(2))
			return nil
		},
	}
}

func newSummaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "summary",
		Aliases: []string{"statement"},
		Short:   "Print every transaction in date order followed by the totals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			self, err := c.self()
			if err != nil {
				return err
			}
			account, err := c.open(cmd.Context(), self)
			if err != nil {
				return err
			}
			return c.ledger.PrintAll(cmd.Context(), account, self.password)
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var kind, counterparty string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions by kind or by counterparty account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			self, err := c.self()
			if err != nil {
				return err
			}
			account, err := c.open(ctx, self)
			if err != nil {
				return err
			}

			switch {
			case kind != "":
				k, err := parseKindArg(kind)
				if err != nil {
					return err
				}
				return c.ledger.PrintByType(ctx, account, self.password, k)
			case counterparty != "":
				return c.ledger.PrintByCounterparty(ctx, account, self.password, counterparty)
			default:
				return c.ledger.PrintAll(ctx, account, self.password)
			}
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Only income or expense")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "Only transactions sent from or received by this account id")
	cmd.MarkFlagsMutuallyExclusive("type", "counterparty")

	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			self, err := c.self()
			if err != nil {
				return err
			}
			account, err := c.open(cmd.Context(), self)
			if err != nil {
				return err
			}
			return c.ledger.PrintByID(cmd.Context(), account, self.password, args[0])
		},
	}
}
