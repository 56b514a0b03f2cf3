package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iho/txledger/internal/adapter/console"
	"github.com/iho/txledger/internal/adapter/csvfile"
	"github.com/iho/txledger/internal/adapter/idgen"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/config"
	"github.com/iho/txledger/internal/infrastructure/logger"
	"github.com/iho/txledger/internal/usecase"
)

// options are the persistent flags shared by every command.
type options struct {
	dataDir  string
	file     string
	owner    string
	bank     string
	password string
	dialect  string
	policy   string
	logLevel string
}

// cli holds the collaborators built once the flags are parsed.
type cli struct {
	opts   options
	cost   int
	ledger *usecase.LedgerUseCase
	store  *csvfile.FileStore
	creds  *csvfile.CredentialFile
	ids    usecase.IDGenerator
	policy domain.TransferPolicy
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	defaults, err := config.Load()
	if err != nil {
		defaults = &config.Config{DataDir: "./data", Dialect: csvfile.Standard.Name, TransferPolicy: domain.PolicyDifferentBank}
	}
	c.cost = defaults.PasswordHashCost

	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Single-account transaction ledger",
		Long:          `Record incomes, expenses and transfers in per-account ledger files and print statements.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&c.opts.dataDir, "data-dir", defaults.DataDir, "Directory holding ledger files")
	f.StringVar(&c.opts.file, "file", "", "Ledger file (default <data-dir>/<owner>__<bank>.csv)")
	f.StringVar(&c.opts.owner, "owner", "", "Account owner id")
	f.StringVar(&c.opts.bank, "bank", "", "Account bank id")
	f.StringVar(&c.opts.password, "password", os.Getenv("LEDGER_PASSWORD"), "Account password (or LEDGER_PASSWORD)")
	f.StringVar(&c.opts.dialect, "dialect", defaults.Dialect, "File dialect: standard or excel")
	f.StringVar(&c.opts.policy, "policy", defaults.TransferPolicy, "Transfer policy: different-bank, same-owner-different-bank or different-owner")
	f.StringVar(&c.opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newAddCmd(c),
		newTransferCmd(c),
		newBalanceCmd(c),
		newSummaryCmd(c),
		newListCmd(c),
		newShowCmd(c),
		newDemoCmd(c),
	)

	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	dialect, err := csvfile.ParseDialect(c.opts.dialect)
	if err != nil {
		return err
	}
	c.policy, err = domain.ParseTransferPolicy(c.opts.policy)
	if err != nil {
		return err
	}

	c.logger = logger.New(logger.Config{Level: c.opts.logLevel, Format: "console", Output: cmd.ErrOrStderr()})

	out := cmd.OutOrStdout()
	colored := out == os.Stdout && !color.NoColor && term.IsTerminal(int(os.Stdout.Fd()))

	c.store = csvfile.NewFileStore(dialect, c.logger)
	c.creds = csvfile.NewCredentialFile(c.cost, c.logger)
	c.ledger = usecase.NewLedgerUseCase(c.store, console.NewPrinter(out, colored), nil, c.logger)
	c.ids = idgen.NewULIDGenerator()
	return nil
}

// ref names one ledger file and the credentials that unlock it.
type ref struct {
	owner, bank, password, path string
}

func (c *cli) self() (ref, error) {
	if c.opts.owner == "" || c.opts.bank == "" {
		return ref{}, fmt.Errorf("%w: --owner and --bank are required", domain.ErrInvalidAccountID)
	}
	if err := domain.ValidateAccountRef(c.opts.owner, c.opts.bank); err != nil {
		return ref{}, err
	}
	path := c.opts.file
	if path == "" {
		path = usecase.LedgerPath(c.opts.dataDir, c.opts.owner, c.opts.bank)
	}
	return ref{owner: c.opts.owner, bank: c.opts.bank, password: c.opts.password, path: path}, nil
}

// open builds the account for r and loads its file when present. An existing
// file is only read once r.password matches the one registered beside it.
func (c *cli) open(ctx context.Context, r ref) (*domain.Account, error) {
	if err := domain.ValidateAccountRef(r.owner, r.bank); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(r.password); err != nil {
		return nil, err
	}
	account := domain.NewAccount(r.owner, r.bank, r.password, domain.WithTransferPolicy(c.policy))
	if !c.store.Exists(r.path) {
		c.logger.Debug().Str("path", r.path).Msg("no ledger file yet, starting empty")
		return account, nil
	}
	if err := c.creds.Verify(ctx, r.path, r.password); err != nil {
		return nil, err
	}
	if err := c.ledger.Load(ctx, account, r.path, r.password); err != nil {
		return nil, err
	}
	return account, nil
}

// save writes the ledger of r, registering r.password when the file is new.
func (c *cli) save(ctx context.Context, account *domain.Account, r ref) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	if !c.store.Exists(r.path) {
		if err := c.creds.Register(ctx, r.path, r.password); err != nil {
			return err
		}
	}
	return c.ledger.Save(ctx, account, r.path, r.password)
}
