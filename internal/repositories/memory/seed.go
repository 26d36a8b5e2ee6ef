package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
)

// Seed is the JSON document accepted by LoadSeed.
type Seed struct {
	Accounts []domain.Account       `json:"accounts"`
	Members  []domain.UserWorkplace `json:"members"`
}

// LoadSeed reads accounts and memberships into the store.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}
	for _, a := range seed.Accounts {
		if !a.AccountType.Valid() {
			return fmt.Errorf("seed account %s: unknown account type %q", a.AccountID, a.AccountType)
		}
		s.PutAccount(a)
	}
	for _, m := range seed.Members {
		s.PutMember(m.UserID, m.WorkplaceID, m.Role)
	}
	return nil
}

// LoadSeedFile is LoadSeed on the named file.
func (s *Store) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}
