package ledger

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Ledger records the companies whose employees were already fetched.
type Ledger interface {
	// Seen reports whether the company is recorded.
	Seen(ctx context.Context, company string) (bool, error)
	// Mark records the company and reports whether it was absent before.
	// The check and the write happen atomically.
	Mark(ctx context.Context, company string) (bool, error)
	// Claim reserves the company for a fetch in progress and reports false
	// when another fetch holds it. The holder calls Release when done.
	Claim(ctx context.Context, company string) (bool, error)
	Release(ctx context.Context, company string) error
}

// Normalize returns the ledger key for a company name.
func Normalize(company string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(company)))
}
