package valueobjects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// BankID identifies a bank. The store assigns it on creation and never reuses it.
// Clients treat it as opaque: ids issued by other stores need not be UUIDs.
type BankID string

// NewBankID creates a new random BankID
func NewBankID() BankID {
	return BankID(uuid.New().String())
}

// ParseBankID validates an id received from a caller. The id is kept verbatim;
// the separator is rejected because paths travel as comma-joined lists.
func ParseBankID(id string) (BankID, error) {
	if strings.TrimSpace(id) == "" {
		return "", errors.New("bank ID cannot be empty")
	}
	if strings.Contains(id, PathSeparator) {
		return "", errors.New("bank ID cannot contain '" + PathSeparator + "'")
	}
	return BankID(id), nil
}

// String returns the string representation of the BankID
func (id BankID) String() string {
	return string(id)
}

// IsZero checks if the BankID is the zero value
func (id BankID) IsZero() bool {
	return id == ""
}
