package enums

import "fmt"

// WalletEntryType distinguishes credits from debits on a user wallet.
type WalletEntryType string

const (
	WalletEntryTypeCredit WalletEntryType = "credit"
	WalletEntryTypeDebit  WalletEntryType = "debit"
)

// IsValid reports whether the value is a known WalletEntryType.
func (t WalletEntryType) IsValid() bool {
	return t == WalletEntryTypeCredit || t == WalletEntryTypeDebit
}

// ParseWalletEntryType converts raw input into a WalletEntryType.
func ParseWalletEntryType(value string) (WalletEntryType, error) {
	switch WalletEntryType(value) {
	case WalletEntryTypeCredit:
		return WalletEntryTypeCredit, nil
	case WalletEntryTypeDebit:
		return WalletEntryTypeDebit, nil
	default:
		return "", fmt.Errorf("invalid wallet entry type %q", value)
	}
}
