package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elena/open-accounting/internal/core/domain"
	"github.com/elena/open-accounting/internal/core/services"
)

func bankLine(value string, reconciled bool) domain.BankLine {
	line := domain.BankLine{
		BankLineID: uuid.NewString(),
		Date:       time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC),
		Value:      decimal.RequireFromString(value),
	}
	if reconciled {
		txnID := uuid.NewString()
		line.TransactionID = &txnID
	}
	return line
}

func statementRow(value string) domain.RawStatementRow {
	return domain.RawStatementRow{
		Date:  time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC),
		Value: decimal.RequireFromString(value),
	}
}

func TestReconcileDay_EmptyStore(t *testing.T) {
	incoming := []domain.RawStatementRow{statementRow("-12.50"), statementRow("300.00")}

	decision := services.ReconcileDay(nil, incoming)

	assert.Len(t, decision.ToInsert, 2)
	assert.Empty(t, decision.ToDelete)
	assert.Empty(t, decision.ToKeep)
}

func TestReconcileDay_PerfectMatchKeepsStoredLines(t *testing.T) {
	existing := []domain.BankLine{bankLine("-12.50", false), bankLine("300.00", true)}
	incoming := []domain.RawStatementRow{statementRow("300.00"), statementRow("-12.50")}

	decision := services.ReconcileDay(existing, incoming)

	assert.Empty(t, decision.ToInsert)
	assert.Empty(t, decision.ToDelete)
	assert.Len(t, decision.ToKeep, 2)
}

func TestReconcileDay_MismatchRebuildsUnreconciled(t *testing.T) {
	existing := []domain.BankLine{bankLine("-12.50", false), bankLine("300.00", false)}
	// The re-export has an extra row the first import missed.
	incoming := []domain.RawStatementRow{statementRow("-12.50"), statementRow("300.00"), statementRow("45.00")}

	decision := services.ReconcileDay(existing, incoming)

	assert.Len(t, decision.ToDelete, 2)
	assert.Len(t, decision.ToInsert, 3)
	assert.Empty(t, decision.ToKeep)
}

func TestReconcileDay_ReconciledLineSurvivesAndConsumesItsRow(t *testing.T) {
	reconciled := bankLine("300.00", true)
	existing := []domain.BankLine{reconciled, bankLine("-12.50", false)}
	incoming := []domain.RawStatementRow{statementRow("-12.50"), statementRow("300.00"), statementRow("45.00")}

	decision := services.ReconcileDay(existing, incoming)

	require.Len(t, decision.ToKeep, 1)
	assert.Equal(t, reconciled.BankLineID, decision.ToKeep[0].BankLineID)
	assert.Len(t, decision.ToDelete, 1)
	// The 300.00 row is consumed by the kept line, so only the other two insert.
	require.Len(t, decision.ToInsert, 2)
	for _, row := range decision.ToInsert {
		assert.False(t, row.Value.Equal(decimal.RequireFromString("300.00")))
	}
}

func TestReconcileDay_ReconciledLineWithoutMatchingRow(t *testing.T) {
	// The re-export no longer contains the reconciled line's value at all.
	// The line is still kept; nothing is consumed.
	existing := []domain.BankLine{bankLine("300.00", true)}
	incoming := []domain.RawStatementRow{statementRow("-12.50"), statementRow("45.00")}

	decision := services.ReconcileDay(existing, incoming)

	assert.Len(t, decision.ToKeep, 1)
	assert.Empty(t, decision.ToDelete)
	assert.Len(t, decision.ToInsert, 2)
}

func TestReconcileDay_TieBreakByBalance(t *testing.T) {
	balanceA := decimal.RequireFromString("1000.00")
	balanceB := decimal.RequireFromString("950.00")

	line := bankLine("-50.00", true)
	line.Balance = &balanceB

	rowA := statementRow("-50.00")
	rowA.Balance = &balanceA
	rowA.Description = "FIRST"
	rowB := statementRow("-50.00")
	rowB.Balance = &balanceB
	rowB.Description = "SECOND"

	decision := services.ReconcileDay(
		[]domain.BankLine{line, bankLine("10.00", false)},
		[]domain.RawStatementRow{rowA, rowB, statementRow("20.00")},
	)

	// rowB matches the kept line's balance and is consumed; rowA survives.
	require.Len(t, decision.ToInsert, 2)
	descriptions := []string{decision.ToInsert[0].Description, decision.ToInsert[1].Description}
	assert.Contains(t, descriptions, "FIRST")
	assert.NotContains(t, descriptions, "SECOND")
}

func TestReconcileDay_TieBreakByDescription(t *testing.T) {
	line := bankLine("-50.00", true)
	line.Description = "RENT"

	rowA := statementRow("-50.00")
	rowA.Description = "GROCERIES"
	rowB := statementRow("-50.00")
	rowB.Description = "RENT"

	decision := services.ReconcileDay(
		[]domain.BankLine{line, bankLine("10.00", false)},
		[]domain.RawStatementRow{rowA, rowB},
	)

	require.Len(t, decision.ToInsert, 1)
	assert.Equal(t, "GROCERIES", decision.ToInsert[0].Description)
}

func TestReconcileDay_TieBreakFallsBackToFirstValueMatch(t *testing.T) {
	line := bankLine("-50.00", true)
	line.Description = "NO SUCH ROW"

	rowA := statementRow("-50.00")
	rowA.Description = "A"
	rowB := statementRow("-50.00")
	rowB.Description = "B"

	decision := services.ReconcileDay(
		[]domain.BankLine{line, bankLine("10.00", false)},
		[]domain.RawStatementRow{rowA, rowB},
	)

	require.Len(t, decision.ToInsert, 1)
	assert.Equal(t, "B", decision.ToInsert[0].Description)
}

func TestReconcileDay_Deterministic(t *testing.T) {
	existing := []domain.BankLine{bankLine("300.00", true), bankLine("-12.50", false), bankLine("8.00", false)}
	incoming := []domain.RawStatementRow{statementRow("300.00"), statementRow("-12.50"), statementRow("45.00"), statementRow("45.00")}

	first := services.ReconcileDay(existing, incoming)
	second := services.ReconcileDay(existing, incoming)

	assert.Equal(t, first, second)
}
