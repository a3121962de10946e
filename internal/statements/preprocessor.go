// Package statements turns raw per-bank statement dumps into typed rows.
// Each supported bank export layout has a preprocessor; the registry keys
// them by the format name declared on the bank account. When importing
// statements nothing here deduplicates: it is impossible on any individual
// line, since details identical in every way can legitimately occur twice
// on a statement. Deduplication is the reconciliation matcher's job.
package statements

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
)

// Preprocessor parses one raw statement dump into typed rows.
type Preprocessor interface {
	Parse(rawText string) ([]domain.RawStatementRow, error)
}

// Registry maps bank format names to their preprocessors.
type Registry struct {
	formats map[string]Preprocessor
}

// NewRegistry creates a registry with the built-in bank formats registered.
func NewRegistry() *Registry {
	r := &Registry{formats: make(map[string]Preprocessor)}
	r.Register("CBA", cbaPreprocessor{})
	r.Register("NAB", nabPreprocessor{})
	return r
}

// Register adds or replaces a format's preprocessor.
func (r *Registry) Register(format string, p Preprocessor) {
	r.formats[format] = p
}

// Get returns the preprocessor for a format. An unknown format is a
// configuration error, not bad data.
func (r *Registry) Get(format string) (Preprocessor, error) {
	p, ok := r.formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: unknown bank format %q", apperrors.ErrConfiguration, format)
	}
	return p, nil
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	return names
}

var dateLayouts = []string{"02/01/2006", "2006-01-02", "2/01/2006", "02/01/06"}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable statement date %q", apperrors.ErrValidation, raw)
}

func parseValue(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "\"", "", " ", "").Replace(strings.TrimSpace(raw))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: unparseable statement value %q", apperrors.ErrValidation, raw)
	}
	return d.Round(2), nil
}

func splitLines(rawText string) []string {
	// Dumps are copy-pasted from spreadsheets, so both line ending styles appear.
	rawText = strings.ReplaceAll(rawText, "\r\n", "\n")
	lines := strings.Split(rawText, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// cbaPreprocessor parses the CBA export layout:
// date \t value \t line_dump \t balance
// The description/additional split peels bank-supplied noise off the dump.
type cbaPreprocessor struct{}

var cbaSplits = []string{"Card xx", "Value Date: ", "BPAY "}

func (cbaPreprocessor) Parse(rawText string) ([]domain.RawStatementRow, error) {
	rows := make([]domain.RawStatementRow, 0)
	for _, line := range splitLines(rawText) {
		fields := strings.Split(line, "\t")
		if fields[0] == "date" {
			// header row
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: CBA row must have 4 columns, got %d", apperrors.ErrValidation, len(fields))
		}

		date, err := parseDate(fields[0])
		if err != nil {
			return nil, err
		}
		value, err := parseValue(fields[1])
		if err != nil {
			return nil, err
		}
		balance, err := parseValue(fields[3])
		if err != nil {
			return nil, err
		}

		lineDump := fields[2]
		description, additional := splitCBADump(lineDump)
		rows = append(rows, domain.RawStatementRow{
			Date:        date,
			Value:       value,
			LineDump:    lineDump,
			Description: description,
			Additional:  additional,
			Balance:     &balance,
		})
	}
	return rows, nil
}

func splitCBADump(lineDump string) (description, additional string) {
	for _, split := range cbaSplits {
		if before, after, found := strings.Cut(lineDump, split); found {
			return strings.TrimSpace(before), split + after
		}
	}
	return lineDump, ""
}

// nabPreprocessor parses the NAB export layout:
// date \t value \t nil \t nil \t additional \t description \t balance
type nabPreprocessor struct{}

func (nabPreprocessor) Parse(rawText string) ([]domain.RawStatementRow, error) {
	rows := make([]domain.RawStatementRow, 0)
	for _, line := range splitLines(rawText) {
		fields := strings.Split(line, "\t")
		if fields[0] == "date" {
			continue
		}
		if len(fields) != 7 {
			return nil, fmt.Errorf("%w: NAB row must have 7 columns, got %d", apperrors.ErrValidation, len(fields))
		}

		date, err := parseDate(fields[0])
		if err != nil {
			return nil, err
		}
		value, err := parseValue(fields[1])
		if err != nil {
			return nil, err
		}
		balance, err := parseValue(fields[6])
		if err != nil {
			return nil, err
		}

		additional := fields[4]
		description := fields[5]
		rows = append(rows, domain.RawStatementRow{
			Date:        date,
			Value:       value,
			LineDump:    strings.TrimSpace(description + " " + additional),
			Description: description,
			Additional:  additional,
			Balance:     &balance,
		})
	}
	return rows, nil
}
