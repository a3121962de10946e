package statements_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/statements"
)

func TestRegistry_KnownFormats(t *testing.T) {
	registry := statements.NewRegistry()

	for _, format := range []string{"CBA", "NAB"} {
		p, err := registry.Get(format)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
}

func TestRegistry_UnknownFormat(t *testing.T) {
	registry := statements.NewRegistry()

	_, err := registry.Get("WESTPAC")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestCBA_ParsesRows(t *testing.T) {
	p, err := statements.NewRegistry().Get("CBA")
	require.NoError(t, err)

	dump := "date\tvalue\tline_dump\tbalance\n" +
		"21/06/2023\t\"-1,250.00\"\tWOOLWORTHS 1234 Card xx7495 AUS\t987.50\n" +
		"22/06/2023\t300.00\tSALARY ACME PTY LTD\t1287.50\n"

	rows, err := p.Parse(dump)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.True(t, rows[0].Value.Equal(decimal.RequireFromString("-1250.00")))
	assert.Equal(t, "WOOLWORTHS 1234", rows[0].Description)
	assert.Equal(t, "Card xx7495 AUS", rows[0].Additional)
	require.NotNil(t, rows[0].Balance)
	assert.True(t, rows[0].Balance.Equal(decimal.RequireFromString("987.50")))

	// No recognised noise marker: the whole dump is the description.
	assert.Equal(t, "SALARY ACME PTY LTD", rows[1].Description)
	assert.Empty(t, rows[1].Additional)
}

func TestCBA_SplitsValueDateAndBPAY(t *testing.T) {
	p, _ := statements.NewRegistry().Get("CBA")

	dump := "21/06/2023\t-50.00\tTRANSPORT Value Date: 20/06/2023\t900.00\n" +
		"21/06/2023\t-120.00\tBPAY 12345 COUNCIL RATES\t780.00\n"

	rows, err := p.Parse(dump)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "TRANSPORT", rows[0].Description)
	assert.Equal(t, "Value Date: 20/06/2023", rows[0].Additional)
	assert.Empty(t, rows[1].Description)
	assert.Equal(t, "BPAY 12345 COUNCIL RATES", rows[1].Additional)
}

func TestCBA_WrongColumnCount(t *testing.T) {
	p, _ := statements.NewRegistry().Get("CBA")

	_, err := p.Parse("21/06/2023\t-50.00\tGROCERIES\n")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCBA_BadDate(t *testing.T) {
	p, _ := statements.NewRegistry().Get("CBA")

	_, err := p.Parse("yesterday\t-50.00\tGROCERIES\t100.00\n")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNAB_ParsesRows(t *testing.T) {
	p, err := statements.NewRegistry().Get("NAB")
	require.NoError(t, err)

	dump := "date\tvalue\tnil\tnil\tadditional\tdescription\tbalance\n" +
		"2/01/2006\t$1,234.50\t\t\tEFTPOS\tHARDWARE SUPPLIES\t5000.00\n"

	rows, err := p.Parse(dump)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.True(t, rows[0].Value.Equal(decimal.RequireFromString("1234.50")))
	assert.Equal(t, "HARDWARE SUPPLIES", rows[0].Description)
	assert.Equal(t, "EFTPOS", rows[0].Additional)
	assert.Equal(t, "HARDWARE SUPPLIES EFTPOS", rows[0].LineDump)
}

func TestNAB_WrongColumnCount(t *testing.T) {
	p, _ := statements.NewRegistry().Get("NAB")

	_, err := p.Parse("02/01/2006\t100.00\tGROCERIES\t50.00\n")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParse_AcceptsISOAndShortDates(t *testing.T) {
	p, _ := statements.NewRegistry().Get("CBA")

	dump := "2023-06-21\t-50.00\tGROCERIES\t100.00\n" +
		"21/06/23\t-25.00\tFUEL\t75.00\n"

	rows, err := p.Parse(dump)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0].Date, rows[1].Date)
}

func TestParse_HandlesWindowsLineEndings(t *testing.T) {
	p, _ := statements.NewRegistry().Get("CBA")

	rows, err := p.Parse("21/06/2023\t-50.00\tGROCERIES\t100.00\r\n21/06/2023\t-25.00\tFUEL\t75.00\r\n")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParse_ValuesRoundToCents(t *testing.T) {
	p, _ := statements.NewRegistry().Get("CBA")

	rows, err := p.Parse("21/06/2023\t-50.005\tGROCERIES\t100.00\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Value.Equal(decimal.RequireFromString("-50.01")))
}
