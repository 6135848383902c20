package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/ezzabuzaid/iworked/internal/repository"
)

// invoiceNumberPattern matches exactly INV-YYYY-NNNN. Anything longer,
// shorter or differently padded is rejected.
var invoiceNumberPattern = regexp.MustCompile(`^INV-(\d{4})-(\d{4})$`)

// FormatInvoiceNumber renders an invoice number as INV-YYYY-NNNN
func FormatInvoiceNumber(year, sequence int) string {
	return fmt.Sprintf("INV-%04d-%04d", year, sequence)
}

// ParseInvoiceNumber extracts year and sequence from an invoice number.
// ok is false when the string does not match the format exactly.
func ParseInvoiceNumber(number string) (year, sequence int, ok bool) {
	m := invoiceNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	sequence, _ = strconv.Atoi(m[2])
	return year, sequence, true
}

// NextInvoiceNumber allocates the next number for the user and year:
// the stored maximum's sequence plus one, or 0001 when the year is fresh.
// Numbers restart at 0001 every year.
func NextInvoiceNumber(ctx context.Context, repo repository.InvoiceRepository, userID int64, year int) (string, error) {
	last, err := repo.LastNumberForYear(ctx, userID, year)
	if err != nil {
		return "", err
	}

	sequence := 1
	if lastYear, lastSeq, ok := ParseInvoiceNumber(last); ok && lastYear == year {
		sequence = lastSeq + 1
	}

	return FormatInvoiceNumber(year, sequence), nil
}
