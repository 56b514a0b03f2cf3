package domain

import (
	"fmt"
	"strings"
)

// TransferPolicy decides whether dst may be the counterpart of a transfer from src.
type TransferPolicy func(src, dst *Account) bool

// DifferentBank requires the destination to live in another bank, regardless of owner.
func DifferentBank(src, dst *Account) bool {
	return src.bankID != dst.bankID
}

// SameOwnerDifferentBank only allows moving money between banks of one owner.
func SameOwnerDifferentBank(src, dst *Account) bool {
	return src.ownerID == dst.ownerID && src.bankID != dst.bankID
}

// DifferentOwner requires distinct owners in distinct banks.
func DifferentOwner(src, dst *Account) bool {
	return src.ownerID != dst.ownerID && src.bankID != dst.bankID
}

// Policy names accepted by ParseTransferPolicy.
const (
	PolicyDifferentBank          = "different-bank"
	PolicySameOwnerDifferentBank = "same-owner-different-bank"
	PolicyDifferentOwner         = "different-owner"
)

// ParseTransferPolicy resolves a policy by name.
func ParseTransferPolicy(name string) (TransferPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyDifferentBank:
		return DifferentBank, nil
	case PolicySameOwnerDifferentBank:
		return SameOwnerDifferentBank, nil
	case PolicyDifferentOwner:
		return DifferentOwner, nil
	default:
		return nil, fmt.Errorf("unknown transfer policy %q", name)
	}
}

// validateTransfer checks the transfer-pair rule for a transfer leaving a.
func (a *Account) validateTransfer(destination *Account) error {
	if destination == nil {
		return ErrInvalidArgument
	}

	if !a.policy(a, destination) {
		return fmt.Errorf("%w: %s/%s -> %s/%s", ErrRuleViolation,
			a.ownerID, a.bankID, destination.ownerID, destination.bankID)
	}

	return nil
}
