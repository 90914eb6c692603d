package types

import "strings"

// BankDetails is the seller payout destination. Locked (immutable) once an
// admin approves the request so the destination cannot be swapped after
// sign-off.
type BankDetails struct {
	AccountHolder string `json:"account_holder"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BranchCode    string `json:"branch_code,omitempty"`
}

// Complete reports whether the details are sufficient to settle a payout.
func (b BankDetails) Complete() bool {
	return strings.TrimSpace(b.AccountHolder) != "" &&
		strings.TrimSpace(b.AccountNumber) != "" &&
		strings.TrimSpace(b.BankName) != ""
}

// Masked returns a copy safe for API responses, keeping only the account
// number tail.
func (b BankDetails) Masked() BankDetails {
	masked := b
	if n := len(b.AccountNumber); n > 4 {
		masked.AccountNumber = strings.Repeat("*", n-4) + b.AccountNumber[n-4:]
	}
	return masked
}
