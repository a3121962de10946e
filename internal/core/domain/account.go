package domain

import (
	"fmt"
	"regexp"
)

// AccountElement is the top-level chart-of-accounts category an account belongs to.
// The two-digit prefixes are part of the account code format and sort the chart
// in statement order: balance sheet first, then profit and loss.
type AccountElement string

const (
	Asset     AccountElement = "01"
	Liability AccountElement = "03"
	Equity    AccountElement = "05"
	Revenue   AccountElement = "10"
	Expense   AccountElement = "15"
)

// ValidElements lists every recognised account element.
var ValidElements = []AccountElement{Asset, Liability, Equity, Revenue, Expense}

// IsValid reports whether the element is one of the recognised categories.
func (e AccountElement) IsValid() bool {
	switch e {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// SpecialRole marks accounts hard-referenced by the system for a structural role.
type SpecialRole string

const (
	SpecialNone               SpecialRole = ""
	SpecialBank               SpecialRole = "bank"
	SpecialAccountsPayable    SpecialRole = "accounts_payable"
	SpecialAccountsReceivable SpecialRole = "accounts_receivable"
	SpecialOwnerEquity        SpecialRole = "owner"
	SpecialSuspense           SpecialRole = "suspense"
)

// accountCodePattern matches a structured account code like "01-0101".
var accountCodePattern = regexp.MustCompile(`^\d{2}-\d{4}$`)

// IsAccountCode reports whether the identifier looks like a structured
// account code rather than an opaque account ID.
func IsAccountCode(identifier string) bool {
	return accountCodePattern.MatchString(identifier)
}

// Account is one record in the chart of accounts. Accounts are never hard
// deleted once referenced by a Line; they can only be deactivated.
type Account struct {
	AccountID   string         `json:"accountID"` // Primary key (UUID)
	Element     AccountElement `json:"element"`
	Number      string         `json:"number"` // Four digits, unique within the element
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ParentID    *string        `json:"parentID,omitempty"` // Nullable self-reference
	SpecialRole SpecialRole    `json:"specialRole,omitempty"`
	IsActive    bool           `json:"isActive"`
	AuditFields
}

// Code renders the reconstructible two-part account code, e.g. "01-0101".
func (a Account) Code() string {
	return fmt.Sprintf("%s-%04s", a.Element, a.Number)
}

// SplitAccountCode splits a structured code into its element and number parts.
// The caller is expected to have checked IsAccountCode first.
func SplitAccountCode(code string) (AccountElement, string) {
	return AccountElement(code[:2]), code[3:]
}
