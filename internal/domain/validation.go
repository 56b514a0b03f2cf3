package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidAccountID is returned for owner or bank ids that cannot be stored
// in a ledger file header.
var ErrInvalidAccountID = errors.New("invalid account id")

const (
	// MaxAccountIDLength bounds owner and bank ids.
	MaxAccountIDLength = 255
	// MaxPasswordLength is the longest password bcrypt accepts.
	MaxPasswordLength = 72
)

// headerSeparator splits owner from bank in the file header, so an owner id
// containing it would be read back wrongly.
const headerSeparator = ", Bank: "

// ValidateAccountID checks an owner or bank id.
func ValidateAccountID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidAccountID)
	}

	if len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidAccountID, MaxAccountIDLength)
	}

	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidAccountID, id)
	}

	return nil
}

// ValidateAccountRef checks both ids of an account.
func ValidateAccountRef(ownerID, bankID string) error {
	if err := ValidateAccountID(ownerID); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if strings.Contains(ownerID, headerSeparator) {
		return fmt.Errorf("owner: %w: %q contains %q", ErrInvalidAccountID, ownerID, headerSeparator)
	}
	if err := ValidateAccountID(bankID); err != nil {
		return fmt.Errorf("bank: %w", err)
	}
	return nil
}

// ValidatePassword checks a password before it is registered for an account.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password cannot be empty", ErrInvalidPassword)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d bytes", ErrInvalidPassword, MaxPasswordLength)
	}

	return nil
}
