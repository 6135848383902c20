package service

import (
	"context"
	"testing"
)

func TestParseInvoiceNumber(t *testing.T) {
	tests := []struct {
		input    string
		year     int
		sequence int
		ok       bool
	}{
		{"INV-2026-0001", 2026, 1, true},
		{"INV-2026-0042", 2026, 42, true},
		{"INV-2026-9999", 2026, 9999, true},
		{"INV-2026-1", 0, 0, false},     // sequence not padded
		{"INV-26-0001", 0, 0, false},    // short year
		{"INV-2026-00001", 0, 0, false}, // sequence too wide
		{"inv-2026-0001", 0, 0, false},  // lowercase prefix
		{"INV-2026-0001x", 0, 0, false}, // trailing garbage
		{" INV-2026-0001", 0, 0, false}, // leading space
		{"XYZ-2026-0001", 0, 0, false},  // wrong prefix
		{"INV-2026_0001", 0, 0, false},  // wrong separator
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			year, sequence, ok := ParseInvoiceNumber(tt.input)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && (year != tt.year || sequence != tt.sequence) {
				t.Errorf("expected %d/%d, got %d/%d", tt.year, tt.sequence, year, sequence)
			}
		})
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	if got := FormatInvoiceNumber(2026, 7); got != "INV-2026-0007" {
		t.Errorf("expected INV-2026-0007, got %s", got)
	}
	if got := FormatInvoiceNumber(2026, 1234); got != "INV-2026-1234" {
		t.Errorf("expected INV-2026-1234, got %s", got)
	}
}

func TestNextInvoiceNumberFreshYear(t *testing.T) {
	repo := newMockInvoiceRepo()

	number, err := NextInvoiceNumber(context.Background(), repo, 7, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "INV-2026-0001" {
		t.Errorf("expected INV-2026-0001, got %s", number)
	}
}

func TestNextInvoiceNumberIncrements(t *testing.T) {
	repo := newMockInvoiceRepo()
	repo.lastNumbers[2026] = "INV-2026-0041"

	number, err := NextInvoiceNumber(context.Background(), repo, 7, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "INV-2026-0042" {
		t.Errorf("expected INV-2026-0042, got %s", number)
	}
}

func TestNextInvoiceNumberRestartsPerYear(t *testing.T) {
	repo := newMockInvoiceRepo()
	repo.lastNumbers[2025] = "INV-2025-0099"

	number, err := NextInvoiceNumber(context.Background(), repo, 7, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "INV-2026-0001" {
		t.Errorf("expected sequence restart for new year, got %s", number)
	}
}
