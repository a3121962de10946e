package services

import (
	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DayReconciliation is the matcher's decision for one (bank account, day)
// bucket: which stored lines survive, which are superseded, and which
// incoming rows become new lines.
type DayReconciliation struct {
	ToInsert []domain.RawStatementRow
	ToDelete []domain.BankLine
	ToKeep   []domain.BankLine
}

// ReconcileDay decides how a day's freshly parsed statement rows reconcile
// against the lines already stored for that day. Pure function of its
// inputs: the same existing/incoming pair always produces the same result.
//
// Bank statements can be re-exported with overlapping date ranges and
// cosmetic differences, so the matcher is deliberately conservative: it
// never deletes a line that has been tied to a ledger transaction, and only
// rebuilds a day wholesale when nothing reconciled stands in the way.
func ReconcileDay(existing []domain.BankLine, incoming []domain.RawStatementRow) DayReconciliation {
	// Empty store: everything incoming is new.
	if len(existing) == 0 {
		return DayReconciliation{ToInsert: incoming}
	}

	sumExisting := decimal.Zero
	for _, l := range existing {
		sumExisting = sumExisting.Add(l.Value)
	}
	sumIncoming := decimal.Zero
	for _, r := range incoming {
		sumIncoming = sumIncoming.Add(r.Value)
	}

	// Perfect match on sum and count: the day was already imported
	// correctly. Two different day-dumps sharing sum and count are
	// indistinguishable here; stronger per-row fingerprinting would change
	// observable outcomes, so the heuristic stays as-is.
	if sumExisting.Equal(sumIncoming) && len(existing) == len(incoming) {
		return DayReconciliation{ToKeep: existing}
	}

	// Mismatch: the new dump is authoritative for unreconciled data.
	// Reconciled lines are protected; each one consumes its best-matching
	// incoming row so the row is not inserted a second time.
	remaining := make([]domain.RawStatementRow, len(incoming))
	copy(remaining, incoming)

	result := DayReconciliation{}
	for _, line := range existing {
		if !line.IsReconciled() {
			result.ToDelete = append(result.ToDelete, line)
			continue
		}
		result.ToKeep = append(result.ToKeep, line)
		if idx := matchRow(line, remaining); idx >= 0 {
			remaining = append(remaining[:idx], remaining[idx+1:]...)
		}
	}

	result.ToInsert = remaining
	return result
}

// matchRow finds the incoming row a reconciled line corresponds to, by a
// cascading tie-break: value, then balance, then description, falling back
// to the first value match. Returns -1 when no row shares the value.
func matchRow(line domain.BankLine, rows []domain.RawStatementRow) int {
	valueMatches := make([]int, 0, 2)
	for i, r := range rows {
		if r.Value.Equal(line.Value) {
			valueMatches = append(valueMatches, i)
		}
	}

	switch len(valueMatches) {
	case 0:
		return -1
	case 1:
		return valueMatches[0]
	}

	if narrowed := narrowByBalance(line, rows, valueMatches); len(narrowed) == 1 {
		return narrowed[0]
	} else if len(narrowed) > 1 {
		valueMatches = narrowed
	}

	for _, i := range valueMatches {
		if rows[i].Description == line.Description {
			return i
		}
	}

	// Still ambiguous: consume the first value match.
	return valueMatches[0]
}

func narrowByBalance(line domain.BankLine, rows []domain.RawStatementRow, candidates []int) []int {
	if line.Balance == nil {
		return candidates
	}
	narrowed := make([]int, 0, len(candidates))
	for _, i := range candidates {
		if rows[i].Balance != nil && rows[i].Balance.Equal(*line.Balance) {
			narrowed = append(narrowed, i)
		}
	}
	if len(narrowed) == 0 {
		return candidates
	}
	return narrowed
}
