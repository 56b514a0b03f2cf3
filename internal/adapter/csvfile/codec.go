package csvfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

const (
	ownerKey      = "Account Owner: "
	bankKey       = ", Bank: "
	summaryPrefix = "Summary"
	fieldCount    = 8
)

var columns = []string{"ID", "Date", "Amount", "Operation", "Category", "Description", "Sender", "Receiver"}

// Encode writes account as a ledger file: the owner/bank header, the column
// header, one record per transaction in date order and a summary line.
func Encode(w io.Writer, account *domain.Account, d Dialect) error {
	bw := bufio.NewWriter(w)

	if d.BOM {
		bw.WriteString(utf8BOM)
	}
	fmt.Fprintf(bw, "%s%s%s%s\n", ownerKey, account.OwnerID(), bankKey, account.BankID())

	cw := csv.NewWriter(bw)
	cw.Comma = d.Separator

	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, tx := range account.SortedTransactions() {
		record := []string{
			tx.ID(),
			domain.FormatTimestamp(tx.Timestamp()),
			d.formatAmount(tx.Amount()),
			string(tx.Kind()),
			tx.Category(),
			tx.Description(),
			tx.SenderAccountID(),
			tx.ReceiverAccountID(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	s := account.ComputeSummary()
	fmt.Fprintf(bw, "%s%s Total Deposits: %s%sTotal Withdrawals: %s%sFinal Balance: %s\n",
		summaryPrefix, d.sep(),
		d.formatAmount(s.TotalDeposits), d.sep(),
		d.formatAmount(s.TotalWithdrawals), d.sep(),
		d.formatAmount(s.Balance))

	return bw.Flush()
}

// Decode reads a ledger file written by Encode for the account ownerID/bankID.
// Nothing is returned unless the whole file decodes. The summary line and
// anything after it are ignored.
//
// The Operation column holds the transaction kind, so every decoded
// transaction has OperationType equal to its Kind. A free-form operation
// label given when the transaction was added, such as "Payroll", is not
// stored and does not survive a save and load.
func Decode(r io.Reader, ownerID, bankID string, d Dialect) ([]domain.Transaction, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && header != "") {
		return nil, fmt.Errorf("%w: missing account header", domain.ErrMalformedLine)
	}
	if d.BOM {
		header = strings.TrimPrefix(header, utf8BOM)
	}
	fileOwner, fileBank, err := parseHeader(strings.TrimRight(header, "\r\n"))
	if err != nil {
		return nil, err
	}
	if fileOwner != ownerID || fileBank != bankID {
		return nil, fmt.Errorf("%w: file belongs to %s/%s, not %s/%s",
			domain.ErrMismatch, fileOwner, fileBank, ownerID, bankID)
	}

	cr := csv.NewReader(br)
	cr.Comma = d.Separator
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("%w: missing column header", domain.ErrMalformedLine)
	}

	var txs []domain.Transaction
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedLine, err)
		}

		if isSummary(record) {
			break
		}

		line, _ := cr.FieldPos(0)
		tx, err := d.decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// isSummary reports whether record is the trailing summary line. Only the
// shape tells it apart from a transaction whose id starts with "Summary".
func isSummary(record []string) bool {
	return len(record) != fieldCount && record[0] == summaryPrefix
}

func parseHeader(line string) (owner, bank string, err error) {
	rest, ok := strings.CutPrefix(line, ownerKey)
	if !ok {
		return "", "", fmt.Errorf("%w: header %q", domain.ErrMalformedLine, line)
	}
	owner, bank, ok = strings.Cut(rest, bankKey)
	if !ok || owner == "" {
		return "", "", fmt.Errorf("%w: header %q", domain.ErrMalformedLine, line)
	}
	return owner, bank, nil
}

func (d Dialect) decodeRecord(record []string) (domain.Transaction, error) {
	if len(record) != fieldCount {
		return domain.Transaction{}, fmt.Errorf("%w: expected %d fields, got %d",
			domain.ErrMalformedLine, fieldCount, len(record))
	}

	at, err := domain.ParseTimestamp(record[1])
	if err != nil {
		return domain.Transaction{}, err
	}

	amount, err := d.parseAmount(record[2])
	if err != nil {
		return domain.Transaction{}, err
	}

	kind, err := domain.ParseKind(record[3])
	if err != nil {
		return domain.Transaction{}, err
	}

	return domain.NewTransaction(kind, domain.TransactionInput{
		ID:                record[0],
		Timestamp:         at,
		Amount:            amount,
		OperationType:     record[3],
		Category:          record[4],
		Description:       record[5],
		SenderAccountID:   record[6],
		ReceiverAccountID: record[7],
	})
}

func (d Dialect) formatAmount(v decimal.Decimal) string {
	s := v.StringFixed(2)
	if d.DecimalSeparator != "." {
		s = strings.Replace(s, ".", d.DecimalSeparator, 1)
	}
	return s
}

func (d Dialect) parseAmount(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if d.DecimalSeparator != "." {
		if strings.Contains(raw, ".") {
			return decimal.Decimal{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
		}
		raw = strings.Replace(raw, d.DecimalSeparator, ".", 1)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	return v, nil
}
