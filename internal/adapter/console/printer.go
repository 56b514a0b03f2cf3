package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/iho/txledger/internal/domain"
)

const separator = "----------------------------------------------"

// Printer renders transactions and statements as plain text blocks.
type Printer struct {
	out         io.Writer
	deposits    *color.Color
	withdrawals *color.Color
}

// NewPrinter creates a Printer writing to out. Totals are coloured only when
// colored is set.
func NewPrinter(out io.Writer, colored bool) *Printer {
	deposits := color.New(color.FgGreen)
	withdrawals := color.New(color.FgRed)
	if colored {
		deposits.EnableColor()
		withdrawals.EnableColor()
	} else {
		deposits.DisableColor()
		withdrawals.DisableColor()
	}

	return &Printer{
		out:         out,
		deposits:    deposits,
		withdrawals: withdrawals,
	}
}

// PrintTransactions writes one block per transaction, or a notice when txs is empty.
func (p *Printer) PrintTransactions(txs []domain.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(p.out, "No transactions found")
		return err
	}

	var b strings.Builder
	for _, tx := range txs {
		writeTransaction(&b, tx)
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// PrintStatement writes every transaction followed by the account totals.
func (p *Printer) PrintStatement(txs []domain.Transaction, summary domain.Summary) error {
	var b strings.Builder
	b.WriteString("\n--- Transaction List ---\n")
	for _, tx := range txs {
		writeTransaction(&b, tx)
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Total Deposits: %s\n", p.deposits.Sprint(summary.TotalDeposits.StringFixed(2)))
	fmt.Fprintf(&b, "Total Withdrawals: %s\n", p.withdrawals.Sprint(summary.TotalWithdrawals.StringFixed(2)))
	fmt.Fprintf(&b, "Balance: %s\n", summary.Balance.StringFixed(2))

	_, err := io.WriteString(p.out, b.String())
	return err
}

func writeTransaction(b *strings.Builder, tx domain.Transaction) {
	fmt.Fprintf(b, "ID: %s\n", tx.ID())
	fmt.Fprintf(b, "Date: %s\n", domain.FormatTimestamp(tx.Timestamp()))
	fmt.Fprintf(b, "Amount: %s\n", tx.Amount().StringFixed(2))
	fmt.Fprintf(b, "Operation: %s\n", tx.OperationType())
	fmt.Fprintf(b, "Category: %s\n", tx.Category())
	fmt.Fprintf(b, "Description: %s\n", tx.Description())
	fmt.Fprintf(b, "Sender: %s\n", tx.SenderAccountID())
	fmt.Fprintf(b, "Receiver: %s\n\n", tx.ReceiverAccountID())
}
