// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store implements the persistence gateway for canonical
// businesses, alignment records, evidence and user submissions.
//
// Two implementations share one contract: SQL (sqlite3 or postgres) and
// Memory. UpsertBusiness is idempotent per identity key; repeated sightings
// of a business are merged field by field with dedupe.Merge.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/votewallet/internal/dedupe"
	"github.com/pdiddy/votewallet/pkg/types"
)

// ErrNotFound reports a lookup that matched nothing.
var ErrNotFound = errors.New("not found")

// PersistenceError wraps a failed storage operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

func perr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// Gateway is the full persistence contract used by the pipeline and CLI.
type Gateway interface {
	UpsertBusiness(ctx context.Context, c types.BusinessCandidate) (string, error)
	FindByIdentity(ctx context.Context, name, city, state string) (types.CanonicalBusiness, error)
	GetBusiness(ctx context.Context, id string) (types.CanonicalBusiness, error)
	SetLogo(ctx context.Context, id, path string) error
	ListBusinesses(ctx context.Context, f types.BusinessFilter) iter.Seq2[types.CanonicalBusiness, error]

	UpsertAlignment(ctx context.Context, rec types.AlignmentRecord) error
	FindAlignment(ctx context.Context, businessID string) (types.AlignmentRecord, error)
	AppendDonation(ctx context.Context, businessID string, d types.DonationEvidence) error
	AppendStatement(ctx context.Context, businessID string, s types.StatementEvidence) error
	ListEvidence(ctx context.Context, businessID string) (types.Evidence, error)

	UpsertSubmission(ctx context.Context, s types.UserAlignmentSubmission) error
	ListSubmissions(ctx context.Context, businessID string) ([]types.UserAlignmentSubmission, error)

	Close() error
}

// Open returns the gateway selected by cfg.Driver.
func Open(cfg types.StoreConfig, key dedupe.KeyFunc) (Gateway, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(key), nil
	case DialectSQLite:
		if dir := filepath.Dir(cfg.DSN); dir != "." && !strings.HasPrefix(cfg.DSN, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dsn := cfg.DSN
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
		}
		return OpenSQL(DialectSQLite, dsn, key)
	case DialectPostgres:
		return OpenSQL(DialectPostgres, cfg.DSN, key)
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}

// All drains a ListBusinesses sequence into a slice.
func All(seq iter.Seq2[types.CanonicalBusiness, error]) ([]types.CanonicalBusiness, error) {
	var out []types.CanonicalBusiness
	for b, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, nil
}
