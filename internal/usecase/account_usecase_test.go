package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/txledger/internal/adapter/csvfile"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
	"github.com/iho/txledger/internal/usecase/mocks"
)

type fixedIDs struct{ n int }

func (g *fixedIDs) Generate() string {
	g.n++
	return "GEN-" + string(rune('0'+g.n))
}

func newBook(t *testing.T, dir string) *usecase.AccountUseCase {
	t.Helper()
	store := csvfile.NewFileStore(csvfile.Standard, zerolog.Nop())
	ledger := usecase.NewLedgerUseCase(store, nil, nil, zerolog.Nop())
	creds := csvfile.NewCredentialFile(bcrypt.MinCost, zerolog.Nop())
	return usecase.NewAccountUseCase(ledger, store, creds, &fixedIDs{}, domain.DifferentBank, dir)
}

func open(t *testing.T, book *usecase.AccountUseCase, owner, bank, pwd string) *domain.Account {
	t.Helper()
	acc, err := book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: owner, BankID: bank, Password: pwd})
	require.NoError(t, err)
	return acc
}

func TestAccountUseCase_OpenCreatesFile(t *testing.T) {
	dir := t.TempDir()
	book := newBook(t, dir)

	acc := open(t, book, "Alice", "IT0001", "pwdA")

	assert.Equal(t, "Alice/IT0001", acc.Key())
	assert.FileExists(t, filepath.Join(dir, "Alice__IT0001.csv"))
	assert.FileExists(t, filepath.Join(dir, "Alice__IT0001.csv"+csvfile.CredentialExt))

	_, err := book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: "Alice", BankID: "IT0001", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestAccountUseCase_OpenRejectsBadIDs(t *testing.T) {
	dir := t.TempDir()
	book := newBook(t, dir)

	_, err := book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: "Alice, Bank: X", BankID: "IT0001", Password: "pwdA"})
	require.ErrorIs(t, err, domain.ErrInvalidAccountID)

	_, err = book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: "Alice", BankID: "", Password: "pwdA"})
	require.ErrorIs(t, err, domain.ErrInvalidAccountID)

	_, err = book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: "Alice", BankID: "IT0001", Password: ""})
	require.ErrorIs(t, err, domain.ErrInvalidPassword)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAccountUseCase_PathForEscapes(t *testing.T) {
	book := newBook(t, "/data")
	assert.Equal(t, filepath.Join("/data", "Mario_20Rossi__IT_2F01.csv"), book.PathFor("Mario Rossi", "IT/01"))
	assert.Equal(t, filepath.Join("/data", "a_5Fb__c.csv"), book.PathFor("a_b", "c"))
	assert.Equal(t, filepath.Join("/data", "a__b_5Fc.csv"), book.PathFor("a", "b_c"))

	long := strings.Repeat("x", 300)
	name := filepath.Base(book.PathFor(long, "IT0001"))
	assert.LessOrEqual(t, len(name+csvfile.CredentialExt), 255)
	assert.NotEqual(t, name, filepath.Base(book.PathFor(long+"y", "IT0001")))
}

func TestAccountUseCase_DistinctFilesForLookalikeIDs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	book := newBook(t, dir)

	open(t, book, "a_b", "c", "pwd1")
	_, err := book.AddTransaction(ctx, usecase.AddTransactionInput{
		OwnerID: "a_b", BankID: "c", Password: "pwd1", Kind: domain.KindIncome, Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	// A different account whose ids differ only in where the underscore sits
	// gets its own empty ledger and password.
	other := open(t, book, "a", "b_c", "pwd2")
	assert.Equal(t, 0, other.Len())

	reopened := newBook(t, dir)
	first := open(t, reopened, "a_b", "c", "pwd1")
	second := open(t, reopened, "a", "b_c", "pwd2")
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 0, second.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "two ledgers and two password files")
}

func TestAccountUseCase_SlashInIDsKeepsAccountsApart(t *testing.T) {
	ctx := context.Background()
	book := newBook(t, t.TempDir())
	open(t, book, "a/b", "c", "pwd1")

	// owner "a", bank "b/c" renders the same owner/bank text but is not open.
	_, err := book.AddTransaction(ctx, usecase.AddTransactionInput{
		OwnerID: "a", BankID: "b/c", Password: "pwd1", Kind: domain.KindIncome, Amount: decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	acc := open(t, book, "a", "b/c", "pwd2")
	assert.Equal(t, "a", acc.OwnerID())
	assert.Equal(t, "b/c", acc.BankID())

	_, err = book.GetSummary(ctx, "a/b", "c", "pwd2")
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestAccountUseCase_ReopenChecksStoredPassword(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	book := newBook(t, dir)
	open(t, book, "Alice", "IT0001", "secret")
	_, err := book.AddTransaction(ctx, usecase.AddTransactionInput{
		OwnerID: "Alice", BankID: "IT0001", Password: "secret", Kind: domain.KindIncome, Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	// After a restart the book is empty; the password file still guards the ledger.
	restarted := newBook(t, dir)
	_, err = restarted.OpenAccount(ctx, usecase.OpenAccountInput{OwnerID: "Alice", BankID: "IT0001", Password: "attacker"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = restarted.GetSummary(ctx, "Alice", "IT0001", "attacker")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	open(t, restarted, "Alice", "IT0001", "secret")
	summary, err := restarted.GetSummary(ctx, "Alice", "IT0001", "secret")
	require.NoError(t, err)
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(100)))
}

func TestAccountUseCase_LedgerWithoutPasswordFileIsDenied(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	open(t, newBook(t, dir), "Alice", "IT0001", "secret")
	require.NoError(t, os.Remove(filepath.Join(dir, "Alice__IT0001.csv"+csvfile.CredentialExt)))

	_, err := newBook(t, dir).OpenAccount(ctx, usecase.OpenAccountInput{OwnerID: "Alice", BankID: "IT0001", Password: "secret"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestAccountUseCase_AddPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	book := newBook(t, dir)
	open(t, book, "Alice", "IT0001", "pwdA")
	at := time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC)

	tx, err := book.AddTransaction(ctx, usecase.AddTransactionInput{
		Timestamp:   &at,
		OwnerID:     "Alice",
		BankID:      "IT0001",
		Password:    "pwdA",
		Kind:        domain.KindIncome,
		Description: "salary",
		Category:    "Salary",
		Amount:      decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "GEN-1", tx.ID())
	assert.Equal(t, "Income", tx.OperationType())

	// A fresh book over the same directory sees the persisted ledger.
	reopened := newBook(t, dir)
	open(t, reopened, "Alice", "IT0001", "pwdA")
	summary, err := reopened.GetSummary(ctx, "Alice", "IT0001", "pwdA")
	require.NoError(t, err)
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(100)))

	got, err := reopened.GetTransaction(ctx, "Alice", "IT0001", "pwdA", "GEN-1")
	require.NoError(t, err)
	assert.True(t, got.Timestamp().Equal(at))
}

func TestAccountUseCase_TransferNeedsOpenDestination(t *testing.T) {
	ctx := context.Background()
	book := newBook(t, t.TempDir())
	open(t, book, "Alice", "IT0001", "pwdA")

	input := usecase.AddTransactionInput{
		OwnerID:            "Alice",
		BankID:             "IT0001",
		Password:           "pwdA",
		Kind:               domain.KindIncome,
		ID:                 "TRF-IN",
		Category:           domain.TransferMarker,
		DestinationOwnerID: "Alice",
		DestinationBankID:  "IT0002",
		Amount:             decimal.NewFromInt(10),
	}

	_, err := book.AddTransaction(ctx, input)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	open(t, book, "Alice", "IT0002", "pwdA")
	_, err = book.AddTransaction(ctx, input)
	require.NoError(t, err)

	input.ID = "TRF-SELF"
	input.DestinationBankID = "IT0001"
	_, err = book.AddTransaction(ctx, input)
	require.ErrorIs(t, err, domain.ErrRuleViolation)

	input.ID = "TRF-NONE"
	input.DestinationOwnerID, input.DestinationBankID = "", ""
	_, err = book.AddTransaction(ctx, input)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAccountUseCase_ListFilters(t *testing.T) {
	ctx := context.Background()
	book := newBook(t, t.TempDir())
	open(t, book, "Alice", "IT0001", "pwdA")

	add := func(id string, kind domain.Kind, amount int64, counterparty string, offset time.Duration) {
		at := time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC).Add(offset)
		_, err := book.AddTransaction(ctx, usecase.AddTransactionInput{
			Timestamp:         &at,
			OwnerID:           "Alice",
			BankID:            "IT0001",
			Password:          "pwdA",
			Kind:              kind,
			ID:                id,
			SenderAccountID:   counterparty,
			ReceiverAccountID: "IT0001",
			Amount:            decimal.NewFromInt(amount),
		})
		require.NoError(t, err)
	}
	add("B", domain.KindIncome, 100, "EXT1", time.Hour)
	add("A", domain.KindIncome, 50, "EXT2", 0)
	add("C", domain.KindExpense, 30, "EXT1", 2*time.Hour)

	ids := func(in usecase.ListTransactionsInput) []string {
		in.OwnerID, in.BankID, in.Password = "Alice", "IT0001", "pwdA"
		txs, err := book.ListTransactions(ctx, in)
		require.NoError(t, err)
		out := []string{}
		for _, tx := range txs {
			out = append(out, tx.ID())
		}
		return out
	}

	assert.Equal(t, []string{"A", "B", "C"}, ids(usecase.ListTransactionsInput{}))
	assert.Equal(t, []string{"A", "B"}, ids(usecase.ListTransactionsInput{Kind: domain.KindIncome}))
	assert.Equal(t, []string{"B", "C"}, ids(usecase.ListTransactionsInput{Counterparty: "EXT1"}))
	assert.Equal(t, []string{"B"}, ids(usecase.ListTransactionsInput{Kind: domain.KindIncome, Counterparty: "EXT1"}))

	_, err := book.ListTransactions(ctx, usecase.ListTransactionsInput{OwnerID: "Alice", BankID: "IT0001", Password: "x"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = book.GetTransaction(ctx, "Alice", "IT0001", "pwdA", "missing")
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = book.GetSummary(ctx, "Bob", "IT0001", "pwdB")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockLedgerStore(ctrl)
	creds := mocks.NewMockCredentialStore(ctrl)
	ids := mocks.NewMockIDGenerator(ctrl)

	ledger := usecase.NewLedgerUseCase(store, nil, nil, zerolog.Nop())
	book := usecase.NewAccountUseCase(ledger, store, creds, ids, domain.DifferentBank, "/data")

	path := book.PathFor("Alice", "IT0001")
	store.EXPECT().Exists(path).Return(false)
	creds.EXPECT().Register(gomock.Any(), path, "pwdA").Return(nil)
	store.EXPECT().Save(gomock.Any(), path, gomock.Any()).Return(nil)
	acc := open(t, book, "Alice", "IT0001", "pwdA")

	ids.EXPECT().Generate().Return("GEN-X")
	store.EXPECT().Save(gomock.Any(), path, acc).Return(domain.ErrIO)

	_, err := book.AddTransaction(ctx, usecase.AddTransactionInput{
		OwnerID:  "Alice",
		BankID:   "IT0001",
		Password: "pwdA",
		Kind:     domain.KindIncome,
		Amount:   decimal.NewFromInt(10),
	})

	require.ErrorIs(t, err, domain.ErrIO)
	assert.Equal(t, 0, acc.Len())
}

func TestAccountUseCase_OpenLoadsExistingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockLedgerStore(ctrl)
	creds := mocks.NewMockCredentialStore(ctrl)

	ledger := usecase.NewLedgerUseCase(store, nil, nil, zerolog.Nop())
	book := usecase.NewAccountUseCase(ledger, store, creds, mocks.NewMockIDGenerator(ctrl), domain.DifferentBank, "/data")

	path := book.PathFor("Alice", "IT0001")
	store.EXPECT().Exists(path).Return(true)
	creds.EXPECT().Verify(gomock.Any(), path, "pwdA").Return(nil)
	store.EXPECT().Load(gomock.Any(), path, "Alice", "IT0001").Return(nil, domain.ErrMismatch)

	_, err := book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: "Alice", BankID: "IT0001", Password: "pwdA"})
	require.ErrorIs(t, err, domain.ErrMismatch)

	// The failed open leaves nothing registered.
	_, err = book.GetSummary(context.Background(), "Alice", "IT0001", "pwdA")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_OpenVerifiesBeforeLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockLedgerStore(ctrl)
	creds := mocks.NewMockCredentialStore(ctrl)

	ledger := usecase.NewLedgerUseCase(store, nil, nil, zerolog.Nop())
	book := usecase.NewAccountUseCase(ledger, store, creds, mocks.NewMockIDGenerator(ctrl), domain.DifferentBank, "/data")

	path := book.PathFor("Alice", "IT0001")
	store.EXPECT().Exists(path).Return(true)
	creds.EXPECT().Verify(gomock.Any(), path, "attacker").Return(domain.ErrAccessDenied)
	// No Load expectation: the ledger must not be read for a wrong password.

	_, err := book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: "Alice", BankID: "IT0001", Password: "attacker"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestAccountUseCase_RegisterFailureLeavesNoLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockLedgerStore(ctrl)
	creds := mocks.NewMockCredentialStore(ctrl)

	ledger := usecase.NewLedgerUseCase(store, nil, nil, zerolog.Nop())
	book := usecase.NewAccountUseCase(ledger, store, creds, mocks.NewMockIDGenerator(ctrl), domain.DifferentBank, "/data")

	path := book.PathFor("Alice", "IT0001")
	store.EXPECT().Exists(path).Return(false)
	creds.EXPECT().Register(gomock.Any(), path, "pwdA").Return(domain.ErrIO)

	_, err := book.OpenAccount(context.Background(), usecase.OpenAccountInput{OwnerID: "Alice", BankID: "IT0001", Password: "pwdA"})
	require.ErrorIs(t, err, domain.ErrIO)
}
