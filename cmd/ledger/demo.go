package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

var demoStart = time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

// demoStep is one scripted action. want is the error the action must fail
// with, nil when it must succeed.
type demoStep struct {
	name string
	run  func(ctx context.Context) error
	want error
}

type demo struct {
	c     *cli
	out   io.Writer
	clock time.Time

	a1, a2, b1, ext *domain.Account
	failed          int
}

func newDemoCmd(c *cli) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted walkthrough over in-memory accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				tmp, err := os.MkdirTemp("", "ledger-demo-")
				if err != nil {
					return fmt.Errorf("%w: %w", domain.ErrIO, err)
				}
				defer os.RemoveAll(tmp)
				dir = tmp
			}

			d := &demo{c: c, out: cmd.OutOrStdout(), clock: demoStart}
			return d.run(cmd.Context(), dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory for the saved ledgers (default a temporary directory)")
	return cmd
}

// account always uses DifferentBank so the scripted outcomes hold whatever
// --policy says.
func (d *demo) account(owner, bank, password string) *domain.Account {
	return domain.NewAccount(owner, bank, password, domain.WithTransferPolicy(domain.DifferentBank))
}

// tx builds a transaction one minute after the previous one.
func (d *demo) tx(kind domain.Kind, id, amount, description, category, sender, receiver string) domain.Transaction {
	d.clock = d.clock.Add(time.Minute)
	in := domain.TransactionInput{
		Timestamp:         d.clock,
		ID:                id,
		Description:       description,
		Category:          category,
		OperationType:     string(kind),
		SenderAccountID:   sender,
		ReceiverAccountID: receiver,
		Amount:            decimal.RequireFromString(amount),
	}
	if kind == domain.KindExpense {
		return domain.NewExpense(in)
	}
	return domain.NewIncome(in)
}

func (d *demo) add(account *domain.Account, tx domain.Transaction, dest *domain.Account) func(context.Context) error {
	return func(ctx context.Context) error {
		return d.c.ledger.AddTransaction(ctx, account, tx, dest)
	}
}

func (d *demo) section(title string) {
	fmt.Fprintf(d.out, "\n=== %s ===\n", title)
}

func (d *demo) check(ctx context.Context, steps ...demoStep) {
	for _, s := range steps {
		err := s.run(ctx)
		switch {
		case s.want == nil && err == nil:
			fmt.Fprintf(d.out, "%s %s\n", color.GreenString("[OK]"), s.name)
		case s.want != nil && errors.Is(err, s.want):
			fmt.Fprintf(d.out, "%s %s: %v\n", color.GreenString("[OK]"), s.name, err)
		default:
			d.failed++
			fmt.Fprintf(d.out, "%s %s: got %v, want %v\n", color.RedString("[FAIL]"), s.name, err, s.want)
		}
	}
}

func (d *demo) run(ctx context.Context, dir string) error {
	d.a1 = d.account("Alice", "IT0001", "pwdA")
	d.a2 = d.account("Alice", "IT0002", "pwdA")
	d.b1 = d.account("Bob", "IT7777", "pwdB")
	d.ext = d.account("extern", "EXT001", "pwd000")

	a1, a2, b1, ext := d.a1, d.a2, d.b1, d.ext
	lg := d.c.ledger

	d.section("Transactions")
	d.check(ctx,
		demoStep{name: "salary into IT0001", run: d.add(a1, d.tx(domain.KindIncome, "INC-A1-001", "1500", "November salary", "Salary", ext.BankID(), a1.BankID()), nil)},
		demoStep{name: "groceries from IT0001", run: d.add(a1, d.tx(domain.KindExpense, "EXP-A1-001", "120", "Supermarket", "Groceries", a1.BankID(), ext.BankID()), nil)},
		demoStep{name: "bonus into IT0002", run: d.add(a2, d.tx(domain.KindIncome, "INC-A2-001", "500", "Year-end bonus", "Gift", ext.BankID(), a2.BankID()), nil)},
		demoStep{name: "transfer IT0001 to IT0002", run: func(ctx context.Context) error {
			d.clock = d.clock.Add(time.Minute)
			return lg.PostTransferPair(ctx, a1, a2, usecase.TransferPairInput{
				Timestamp: d.clock, OutgoingID: "TRF-A1A2-OUT-001", IncomingID: "TRF-A1A2-IN-001",
				Description: "Transfer to IT0002", Amount: decimal.NewFromInt(300),
			})
		}},
		demoStep{name: "transfer IT0001 to Bob", run: func(ctx context.Context) error {
			d.clock = d.clock.Add(time.Minute)
			return lg.PostTransferPair(ctx, a1, b1, usecase.TransferPairInput{
				Timestamp: d.clock, OutgoingID: "TRF-A1B1-OUT-001", IncomingID: "TRF-A1B1-IN-001",
				Description: "Payment to Bob", Amount: decimal.NewFromInt(25),
			})
		}},
		demoStep{name: "transfer without destination", want: domain.ErrInvalidArgument,
			run: d.add(a1, d.tx(domain.KindExpense, "TRF-NO-DST", "50", "No destination", domain.TransferMarker, a1.BankID(), a2.BankID()), nil)},
		demoStep{name: "transfer to the same account", want: domain.ErrRuleViolation,
			run: d.add(a1, d.tx(domain.KindExpense, "TRF-SAME-ACC", "10", "Same account", domain.TransferMarker, a1.BankID(), a1.BankID()), a1)},
		demoStep{name: "expense above balance", want: domain.ErrInsufficientFunds,
			run: d.add(a1, d.tx(domain.KindExpense, "EXP-NOFUNDS", "5000", "Too expensive", "Car", a1.BankID(), ext.BankID()), nil)},
		demoStep{name: "negative income", want: domain.ErrNegativeAmount,
			run: d.add(b1, d.tx(domain.KindIncome, "INC-NEG", "-1", "Negative", "Gift", ext.BankID(), b1.BankID()), nil)},
		demoStep{name: "duplicate id", want: domain.ErrDuplicateID,
			run: d.add(a1, d.tx(domain.KindIncome, "INC-A1-001", "1", "Again", "Salary", ext.BankID(), a1.BankID()), nil)},
		demoStep{name: "refund into Bob", run: d.add(b1, d.tx(domain.KindIncome, "INC-B1-REFUND-001", "80", "Travel refund", "Refund", ext.BankID(), b1.BankID()), nil)},
		demoStep{name: "parking fine for Bob", run: d.add(b1, d.tx(domain.KindExpense, "EXP-B1-FINE-001", "40", "Parking fine", "Fine", b1.BankID(), ext.BankID()), nil)},
	)

	d.section("Statement IT0001")
	d.check(ctx,
		demoStep{name: "print all", run: func(ctx context.Context) error { return lg.PrintAll(ctx, a1, "pwdA") }},
		demoStep{name: "print by id", run: func(ctx context.Context) error { return lg.PrintByID(ctx, a1, "pwdA", "INC-A1-001") }},
		demoStep{name: "print by id with wrong password", want: domain.ErrAccessDenied,
			run: func(ctx context.Context) error { return lg.PrintByID(ctx, a1, "wrongPwd", "INC-A1-001") }},
		demoStep{name: "print unknown id", run: func(ctx context.Context) error { return lg.PrintByID(ctx, a1, "pwdA", "NO-TX-ID") }},
	)

	d.section("Statement IT0002")
	d.check(ctx,
		demoStep{name: "incomes only", run: func(ctx context.Context) error { return lg.PrintByType(ctx, a2, "pwdA", domain.KindIncome) }},
		demoStep{name: "expenses only", run: func(ctx context.Context) error { return lg.PrintByType(ctx, a2, "pwdA", domain.KindExpense) }},
	)

	d.section("Statement IT7777")
	d.check(ctx,
		demoStep{name: "involving IT0001", run: func(ctx context.Context) error { return lg.PrintByCounterparty(ctx, b1, "pwdB", a1.BankID()) }},
		demoStep{name: "involving IT0001 with wrong password", want: domain.ErrAccessDenied,
			run: func(ctx context.Context) error { return lg.PrintByCounterparty(ctx, b1, "wrongPwd", a1.BankID()) }},
	)

	d.section("Save and load")
	type saved struct {
		account  *domain.Account
		password string
		balance  decimal.Decimal
	}
	ledgers := []saved{{a1, "pwdA", a1.Balance()}, {a2, "pwdA", a2.Balance()}, {b1, "pwdB", b1.Balance()}}
	for _, s := range ledgers {
		path := filepath.Join(dir, s.account.BankID()+".csv")
		reloaded := d.account(s.account.OwnerID(), s.account.BankID(), s.password)
		d.check(ctx,
			demoStep{name: "save " + s.account.Key(), run: func(ctx context.Context) error { return lg.Save(ctx, s.account, path, s.password) }},
			demoStep{name: "load " + s.account.Key(), run: func(ctx context.Context) error {
				if err := lg.Load(ctx, reloaded, path, s.password); err != nil {
					return err
				}
				if !reloaded.Balance().Equal(s.balance) {
					return fmt.Errorf("balance %s after reload, want %s", reloaded.Balance().StringFixed(2), s.balance.StringFixed(2))
				}
				return nil
			}},
		)
	}
	d.check(ctx, demoStep{name: "load a file of another account", want: domain.ErrMismatch, run: func(ctx context.Context) error {
		return lg.Load(ctx, d.account("Bob", "IT7777", "pwdB"), filepath.Join(dir, a1.BankID()+".csv"), "pwdB")
	}})

	if d.failed > 0 {
		return fmt.Errorf("demo: %d step(s) failed", d.failed)
	}
	fmt.Fprintf(d.out, "\nAll steps behaved as expected.\n")
	return nil
}
