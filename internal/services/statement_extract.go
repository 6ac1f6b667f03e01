package services

import (
	"bytes"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	apperrors "cardwise/internal/errors"
)

// rawRow is one extracted line item before normalization.
type rawRow struct {
	date        time.Time
	description string
	amount      float64
}

// minPDFLineLen filters out page furniture before the regex scan.
const minPDFLineLen = 10

// dateLayouts are the accepted statement date formats, in match order.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
}

// pdfLinePatterns match a date, free text, and a trailing amount. The first
// pattern that matches a line wins.
var pdfLinePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(-?[\d,]+(?:\.\d+)?)\s*$`), "02/01/2006"},
	{regexp.MustCompile(`^(\d{2}-\d{2}-\d{4})\s+(.+?)\s+(-?[\d,]+(?:\.\d+)?)\s*$`), "02-01-2006"},
	{regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+(.+?)\s+(-?[\d,]+(?:\.\d+)?)\s*$`), "2006-01-02"},
}

// Header synonym sets for tabular statements, matched case-insensitively
// against the header row. All three roles must resolve or the file fails.
var (
	dateHeaders   = []string{"date", "txn date", "transaction date", "value date", "posting date"}
	descHeaders   = []string{"description", "narration", "particulars", "details", "merchant", "remarks", "transaction details"}
	amountHeaders = []string{"amount", "debit", "withdrawal", "transaction amount", "amount (inr)", "value"}
)

var currencyTokens = strings.NewReplacer(
	"₹", "",
	"rs.", "",
	"rs ", "",
	"inr", "",
	"$", "",
	",", "",
	"(", "",
	")", "",
)

// cleanAmount strips currency symbols and thousands separators and coerces
// the value to a non-negative number. A debit/credit sign carries no meaning
// here: statements are assumed to list card spend.
func cleanAmount(s string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ToLower(s))
	cleaned = currencyTokens.Replace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "dr")
	cleaned = strings.TrimSuffix(cleaned, "cr")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = -v
	}
	return v, true
}

// parseDate tries each accepted layout in order.
func parseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// extractPDF pulls plain text out of the PDF page by page and scans each
// visual row against the line patterns. Unmatched lines are skipped and
// counted; this path is deliberately lossy.
func extractPDF(data []byte) ([]rawRow, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrUnreadableFile, err)
	}

	var lines []string
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// A single unreadable page does not fail the file.
			continue
		}
		for _, row := range rows {
			var b strings.Builder
			for _, word := range row.Content {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			lines = append(lines, strings.TrimSpace(b.String()))
		}
	}

	return scanStatementLines(lines)
}

// scanStatementLines applies the ordered line patterns to extracted text.
func scanStatementLines(lines []string) ([]rawRow, int, error) {
	var out []rawRow
	skipped := 0

	for _, line := range lines {
		if len(line) < minPDFLineLen {
			continue
		}
		matched := false
		for _, p := range pdfLinePatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			matched = true
			date, err := time.Parse(p.layout, m[1])
			if err != nil {
				skipped++
				break
			}
			amount, ok := cleanAmount(m[3])
			if !ok {
				skipped++
				break
			}
			out = append(out, rawRow{
				date:        date,
				description: strings.TrimSpace(m[2]),
				amount:      amount,
			})
			break
		}
		if !matched {
			skipped++
		}
	}

	return out, skipped, nil
}

// extractCSV reads a CSV statement with fuzzy header mapping.
func extractCSV(data []byte) ([]rawRow, int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil && err != io.EOF {
		return nil, 0, apperrors.Wrap(apperrors.ErrUnreadableFile, err)
	}

	return extractTabular(records)
}

// extractXLSX reads the first sheet of an XLSX workbook with the same
// header mapping as CSV.
func extractXLSX(data []byte) ([]rawRow, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrUnreadableFile, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrUnreadableFile, err)
	}

	return extractTabular(rows)
}

// extractTabular maps a header row plus data rows to raw rows. Unlike the
// PDF path, an unresolvable header is a fatal error for the whole file;
// individual bad rows are still skipped.
func extractTabular(records [][]string) ([]rawRow, int, error) {
	if len(records) < 2 {
		return nil, 0, apperrors.ErrEmptyStatement
	}

	dateIdx := resolveColumn(records[0], dateHeaders)
	descIdx := resolveColumn(records[0], descHeaders)
	amountIdx := resolveColumn(records[0], amountHeaders)
	if dateIdx < 0 || descIdx < 0 || amountIdx < 0 {
		return nil, 0, apperrors.WithMessage(apperrors.ErrMissingColumns,
			"Could not resolve date, description and amount columns from header: "+strings.Join(records[0], ", "))
	}

	var out []rawRow
	skipped := 0
	for _, record := range records[1:] {
		maxIdx := dateIdx
		if descIdx > maxIdx {
			maxIdx = descIdx
		}
		if amountIdx > maxIdx {
			maxIdx = amountIdx
		}
		if len(record) <= maxIdx {
			skipped++
			continue
		}

		date, ok := parseDate(record[dateIdx])
		if !ok {
			skipped++
			continue
		}
		amount, ok := cleanAmount(record[amountIdx])
		if !ok {
			skipped++
			continue
		}
		description := strings.TrimSpace(record[descIdx])
		if description == "" {
			skipped++
			continue
		}

		out = append(out, rawRow{date: date, description: description, amount: amount})
	}

	return out, skipped, nil
}

// resolveColumn finds the first header whose normalized text matches one of
// the role's synonyms, exact match first, then substring.
func resolveColumn(header []string, synonyms []string) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, syn := range synonyms {
		for i, h := range normalized {
			if h == syn {
				return i
			}
		}
	}
	for _, syn := range synonyms {
		for i, h := range normalized {
			if strings.Contains(h, syn) {
				return i
			}
		}
	}
	return -1
}
