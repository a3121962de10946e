package domain

// EntryKind is the closed set of subledger entry kinds. Behavior that used
// to hang off runtime type-name lookups is keyed by this enum plus an
// explicit EntryConfig injected at construction time.
type EntryKind string

const (
	KindInvoice      EntryKind = "INVOICE"
	KindPayment      EntryKind = "PAYMENT"
	KindJournalEntry EntryKind = "JOURNAL_ENTRY"
	KindBankEntry    EntryKind = "BANK_ENTRY"
)

// ControlSide states which side of the control (trial balance) account an
// entry kind posts to.
type ControlSide string

const (
	ControlDR ControlSide = "DR"
	ControlCR ControlSide = "CR"
)

// EntryConfig is the per-kind posting configuration: which control account
// the kind clears through, on which side, and which fields an entry of the
// kind must carry.
type EntryConfig struct {
	Kind           EntryKind
	ControlAccount string // Structured account code, e.g. "03-0300"
	ControlSide    ControlSide
	RequiredFields []string
	Source         string // Provenance string recorded on created Transactions
}
