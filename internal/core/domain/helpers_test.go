package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

func mustDate(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		t.Fatalf("bad date %q: %v", v, err)
	}
	return d
}
