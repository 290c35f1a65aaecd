package cli

import (
	"fmt"

	"github.com/gkobilansky/sigcalc/internal/store"
)

// withStore opens the database, executes the function, and handles cleanup.
func (a *app) withStore(fn func(store.Store) error) error {
	s, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}
