package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/elena/open-accounting/internal/core/domain"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	Subledgers Subledgers
}

// Subledgers is the posting configuration the subledger services are
// constructed with. Behavior that used to depend on lookup-by-name is
// injected explicitly: each entry kind declares its control account, the
// side it posts to, and the provenance string stamped on the transactions
// it creates.
type Subledgers struct {
	AccountsPayableAccount    string `mapstructure:"ACCOUNTS_PAYABLE_ACCOUNT"`
	AccountsReceivableAccount string `mapstructure:"ACCOUNTS_RECEIVABLE_ACCOUNT"`
	GSTClearingAccount        string `mapstructure:"GST_CLEARING_ACCOUNT"`
	SuspenseAccount           string `mapstructure:"SUSPENSE_ACCOUNT"`
	DefaultTermsDays          int    `mapstructure:"DEFAULT_TERMS_DAYS"`
}

// EntryConfig returns the posting configuration for an entry kind.
// Creditor invoices and payments clear through accounts payable; journal
// and bank entries have no control account of their own.
func (s Subledgers) EntryConfig(kind domain.EntryKind) domain.EntryConfig {
	switch kind {
	case domain.KindInvoice:
		return domain.EntryConfig{
			Kind:           domain.KindInvoice,
			ControlAccount: s.AccountsPayableAccount,
			ControlSide:    domain.ControlCR,
			RequiredFields: []string{"relationID", "invoiceNumber", "date", "value"},
			Source:         "subledgers/creditor.Invoice",
		}
	case domain.KindPayment:
		return domain.EntryConfig{
			Kind:           domain.KindPayment,
			ControlAccount: s.AccountsPayableAccount,
			ControlSide:    domain.ControlDR,
			RequiredFields: []string{"relationID", "value"},
			Source:         "subledgers/creditor.Payment",
		}
	case domain.KindBankEntry:
		return domain.EntryConfig{
			Kind:           domain.KindBankEntry,
			RequiredFields: []string{"bankAccountID", "date", "value"},
			Source:         "subledgers/bank.Reconciliation",
		}
	default:
		return domain.EntryConfig{
			Kind:           domain.KindJournalEntry,
			RequiredFields: []string{"date", "lines"},
			Source:         "ledgers/general.JournalEntry",
		}
	}
}

// Validate checks that the configured control accounts are structured
// account codes.
func (s Subledgers) Validate() error {
	for name, code := range map[string]string{
		"ACCOUNTS_PAYABLE_ACCOUNT":    s.AccountsPayableAccount,
		"ACCOUNTS_RECEIVABLE_ACCOUNT": s.AccountsReceivableAccount,
		"GST_CLEARING_ACCOUNT":        s.GSTClearingAccount,
		"SUSPENSE_ACCOUNT":            s.SuspenseAccount,
	} {
		if !domain.IsAccountCode(code) {
			return fmt.Errorf("%s: %q is not a structured account code", name, code)
		}
	}
	if s.DefaultTermsDays < 0 {
		return fmt.Errorf("DEFAULT_TERMS_DAYS must not be negative: %d", s.DefaultTermsDays)
	}
	return nil
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("ACCOUNTS_PAYABLE_ACCOUNT", "03-0300")
	viper.SetDefault("ACCOUNTS_RECEIVABLE_ACCOUNT", "01-0300")
	viper.SetDefault("GST_CLEARING_ACCOUNT", "03-0500")
	viper.SetDefault("SUSPENSE_ACCOUNT", "05-0900")
	viper.SetDefault("DEFAULT_TERMS_DAYS", 14)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.Subledgers = Subledgers{
		AccountsPayableAccount:    viper.GetString("ACCOUNTS_PAYABLE_ACCOUNT"),
		AccountsReceivableAccount: viper.GetString("ACCOUNTS_RECEIVABLE_ACCOUNT"),
		GSTClearingAccount:        viper.GetString("GST_CLEARING_ACCOUNT"),
		SuspenseAccount:           viper.GetString("SUSPENSE_ACCOUNT"),
		DefaultTermsDays:          viper.GetInt("DEFAULT_TERMS_DAYS"),
	}
	if err := cfg.Subledgers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid subledger configuration: %w", err)
	}

	return cfg, nil
}
