// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/votewallet/internal/dedupe"
	"github.com/pdiddy/votewallet/pkg/types"
)

func newSQLite(t *testing.T, key dedupe.KeyFunc) *SQL {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "votewallet.db") + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	s, err := OpenSQL(DialectSQLite, dsn, key)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// gateways returns every implementation so the contract tests run on both.
func gateways(t *testing.T) map[string]Gateway {
	return map[string]Gateway{
		"memory": NewMemory(nil),
		"sqlite": newSQLite(t, nil),
	}
}

func ptr[T any](v T) *T { return &v }

func joes(quality int) types.BusinessCandidate {
	return types.BusinessCandidate{Name: "Joe's Cafe", City: "Springfield", State: "IL", DataSource: "test", DataQuality: quality}
}

func TestUpsertBusinessIdempotent(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := joes(40)
			c.Coordinates = &types.Coordinates{Latitude: 39.78, Longitude: -89.65}
			c.Rating = ptr(4.5)
			c.ReviewCount = ptr(12)

			id1, err := gw.UpsertBusiness(ctx, c)
			require.NoError(t, err)
			id2, err := gw.UpsertBusiness(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, id1, id2)

			all, err := All(gw.ListBusinesses(ctx, types.BusinessFilter{}))
			require.NoError(t, err)
			require.Len(t, all, 1)
			b := all[0]
			assert.Equal(t, "joe's cafe|springfield|il", b.IdentityKey)
			require.NotNil(t, b.Coordinates)
			assert.InDelta(t, -89.65, b.Coordinates.Longitude, 1e-9)
			require.NotNil(t, b.Rating)
			assert.InDelta(t, 4.5, *b.Rating, 1e-9)
			require.NotNil(t, b.ReviewCount)
			assert.Equal(t, 12, *b.ReviewCount)
			assert.False(t, b.CreatedAt.IsZero())
		})
	}
}

func TestUpsertBusinessMergesFieldLevel(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			low := joes(40)
			low.Phone = "(217) 555-0101"
			high := joes(60)
			high.Name = "JOE'S CAFE"
			high.Website = "https://joes.example"

			id, err := gw.UpsertBusiness(ctx, low)
			require.NoError(t, err)
			_, err = gw.UpsertBusiness(ctx, high)
			require.NoError(t, err)

			b, err := gw.GetBusiness(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, 60, b.DataQuality)
			assert.Equal(t, "JOE'S CAFE", b.Name)
			assert.Equal(t, "(217) 555-0101", b.Phone)
			assert.Equal(t, "https://joes.example", b.Website)
		})
	}
}

func TestFindByIdentity(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := gw.UpsertBusiness(ctx, joes(50))
			require.NoError(t, err)

			b, err := gw.FindByIdentity(ctx, "  joe's CAFE", "springfield", "Illinois")
			require.NoError(t, err)
			assert.Equal(t, id, b.ID)

			_, err = gw.FindByIdentity(ctx, "Nobody", "Springfield", "IL")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = gw.GetBusiness(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListBusinessesFilter(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed := []types.BusinessCandidate{
				{Name: "Zed Hardware", City: "Austin", State: "TX", Category: "Home & Garden", DataQuality: 70},
				{Name: "Alpha Bank", City: "Austin", State: "TX", Category: "Financial Services", DataQuality: 30},
				{Name: "Joe's Cafe", City: "Springfield", State: "IL", Category: "Food & Dining", DataQuality: 60},
			}
			for _, c := range seed {
				_, err := gw.UpsertBusiness(ctx, c)
				require.NoError(t, err)
			}

			all, err := All(gw.ListBusinesses(ctx, types.BusinessFilter{}))
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "Joe's Cafe", all[0].Name, "ordered by state, city, name")
			assert.Equal(t, "Alpha Bank", all[1].Name)

			tx, err := All(gw.ListBusinesses(ctx, types.BusinessFilter{State: "texas"}))
			require.NoError(t, err)
			assert.Len(t, tx, 2)

			good, err := All(gw.ListBusinesses(ctx, types.BusinessFilter{State: "TX", MinQuality: 50}))
			require.NoError(t, err)
			require.Len(t, good, 1)
			assert.Equal(t, "Zed Hardware", good[0].Name)

			hw, err := All(gw.ListBusinesses(ctx, types.BusinessFilter{Category: "hardware store"}))
			require.NoError(t, err)
			assert.Len(t, hw, 1)

			limited, err := All(gw.ListBusinesses(ctx, types.BusinessFilter{Limit: 1}))
			require.NoError(t, err)
			assert.Len(t, limited, 1)

			n := 0
			for range gw.ListBusinesses(ctx, types.BusinessFilter{}) {
				n++
				break
			}
			assert.Equal(t, 1, n, "early break stops the stream")
		})
	}
}

func TestSetLogo(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := gw.UpsertBusiness(ctx, joes(40))
			require.NoError(t, err)

			require.NoError(t, gw.SetLogo(ctx, id, "company_logos/Joe_s_Cafe/logo_1.png"))
			_, err = gw.UpsertBusiness(ctx, joes(80))
			require.NoError(t, err)

			b, err := gw.GetBusiness(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "company_logos/Joe_s_Cafe/logo_1.png", b.LogoPath, "upsert keeps the logo")
			assert.ErrorIs(t, gw.SetLogo(ctx, "missing", "x.png"), ErrNotFound)
		})
	}
}

func TestAlignmentRoundTrip(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := gw.UpsertBusiness(ctx, joes(40))
			require.NoError(t, err)

			_, err = gw.FindAlignment(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)

			rec := types.AlignmentRecord{
				BusinessID:         id,
				Vector:             types.AlignmentVector{Liberal: 10},
				EvidenceVector:     types.AlignmentVector{Liberal: 10},
				Confidence:         0.3,
				EvidenceConfidence: 0.3,
				Basis:              types.BasisEvidence,
				UpdatedAt:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}
			require.NoError(t, gw.UpsertAlignment(ctx, rec))
			rec.Vector = types.AlignmentVector{Green: 4}
			rec.Basis = types.BasisCommunity
			rec.SubmissionCount = 2
			require.NoError(t, gw.UpsertAlignment(ctx, rec))

			got, err := gw.FindAlignment(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, rec, got)
		})
	}
}

func TestEvidenceAppendIsIdempotent(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := gw.UpsertBusiness(ctx, joes(40))
			require.NoError(t, err)

			d := types.DonationEvidence{Organization: "Sierra Club", Amount: 500, Year: 2024, Source: "donations"}
			require.NoError(t, gw.AppendDonation(ctx, id, d))
			d.Amount = 750
			require.NoError(t, gw.AppendDonation(ctx, id, d))
			require.NoError(t, gw.AppendDonation(ctx, id, types.DonationEvidence{Organization: "WinRed", Amount: 100, Year: 2022, Lean: types.LeanConservative}))

			st := types.StatementEvidence{Text: "Acme backs climate action", Lean: types.LeanGreen, Confidence: 0.6, Source: "statements"}
			require.NoError(t, gw.AppendStatement(ctx, id, st))
			require.NoError(t, gw.AppendStatement(ctx, id, st))

			ev, err := gw.ListEvidence(ctx, id)
			require.NoError(t, err)
			require.Len(t, ev.Donations, 2)
			assert.Equal(t, "WinRed", ev.Donations[0].Organization)
			assert.Equal(t, types.LeanConservative, ev.Donations[0].Lean)
			assert.InDelta(t, 750, ev.Donations[1].Amount, 1e-9)
			require.Len(t, ev.Statements, 1)
			assert.Equal(t, types.LeanGreen, ev.Statements[0].Lean)
		})
	}
}

func TestSubmissionsUpsertByUser(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := gw.UpsertBusiness(ctx, joes(40))
			require.NoError(t, err)

			t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			subs := []types.UserAlignmentSubmission{
				{UserID: "u1", BusinessID: id, Vector: types.AlignmentVector{Liberal: 2}, Confidence: 0.5, SubmittedAt: t0},
				{UserID: "u2", BusinessID: id, Vector: types.AlignmentVector{Liberal: 4}, Confidence: 0.7, SubmittedAt: t0.Add(time.Hour)},
				{UserID: "u1", BusinessID: id, Vector: types.AlignmentVector{Liberal: 8}, Confidence: 0.9, SubmittedAt: t0.Add(2 * time.Hour)},
			}
			for _, s := range subs {
				require.NoError(t, gw.UpsertSubmission(ctx, s))
			}

			got, err := gw.ListSubmissions(ctx, id)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "u2", got[0].UserID)
			assert.Equal(t, subs[2], got[1], "later submission supersedes")
		})
	}
}

func TestWritesForUnknownBusinessFail(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := gw.UpsertSubmission(ctx, types.UserAlignmentSubmission{UserID: "u", BusinessID: "missing", Confidence: 1})
			var pe *PersistenceError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestConcurrentUpsertsKeepOneRecord(t *testing.T) {
	for name, gw := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for q := range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := gw.UpsertBusiness(ctx, joes(10*q))
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			all, err := All(gw.ListBusinesses(ctx, types.BusinessFilter{}))
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, 70, all[0].DataQuality)
		})
	}
}

func TestAddressStrategyKeepsLocationsApart(t *testing.T) {
	gw := newSQLite(t, dedupe.NameCityStateAddress)
	ctx := context.Background()
	a, b := joes(40), joes(40)
	a.Address, b.Address = "1 Main St", "9 Oak Ave"
	idA, err := gw.UpsertBusiness(ctx, a)
	require.NoError(t, err)
	idB, err := gw.UpsertBusiness(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)

	found, err := gw.FindByIdentity(ctx, "Joe's Cafe", "Springfield", "IL")
	require.NoError(t, err)
	assert.Contains(t, []string{idA, idB}, found.ID)
}

func TestFindByIdentityReturnsEarliest(t *testing.T) {
	gw := newSQLite(t, dedupe.NameCityStateAddress)
	base := time.Date(2026, 5, 1, 12, 0, 5, 0, time.UTC)
	stamps := []time.Time{base, base.Add(100 * time.Millisecond)}
	gw.now = func() time.Time {
		now := stamps[0]
		stamps = stamps[1:]
		return now
	}
	ctx := context.Background()
	a, b := joes(40), joes(40)
	a.Address, b.Address = "1 Main St", "9 Oak Ave"
	idA, err := gw.UpsertBusiness(ctx, a)
	require.NoError(t, err)
	_, err = gw.UpsertBusiness(ctx, b)
	require.NoError(t, err)

	found, err := gw.FindByIdentity(ctx, "Joe's Cafe", "Springfield", "IL")
	require.NoError(t, err)
	assert.Equal(t, idA, found.ID)
	assert.True(t, found.CreatedAt.Equal(base))
}

func TestFormatTimeSortsAsText(t *testing.T) {
	whole := time.Date(2026, 5, 1, 12, 0, 5, 0, time.UTC)
	frac := whole.Add(100 * time.Millisecond)
	assert.Less(t, formatTime(whole), formatTime(frac))
	assert.True(t, parseTime(formatTime(frac)).Equal(frac))
	assert.Equal(t, "", formatTime(time.Time{}))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	gw, err := Open(types.StoreConfig{Driver: "sqlite3", DSN: filepath.Join(dir, "nested", "v.db")}, nil)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	gw, err = Open(types.StoreConfig{Driver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, gw)

	_, err = Open(types.StoreConfig{Driver: "oracle"}, nil)
	assert.Error(t, err)
}
