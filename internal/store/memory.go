// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/votewallet/internal/dedupe"
	"github.com/pdiddy/votewallet/internal/normalize"
	"github.com/pdiddy/votewallet/pkg/types"
)

type donationKey struct {
	org    string
	year   int
	source string
}

type statementKey struct {
	source string
	text   string
}

// Memory is an in-process gateway with the same semantics as SQL. It backs
// dry runs and tests.
type Memory struct {
	mu          sync.RWMutex
	key         dedupe.KeyFunc
	now         func() time.Time
	businesses  map[string]types.CanonicalBusiness
	byKey       map[string]string
	alignments  map[string]types.AlignmentRecord
	donations   map[string][]types.DonationEvidence
	statements  map[string][]types.StatementEvidence
	submissions map[string]map[string]types.UserAlignmentSubmission
}

// NewMemory returns an empty gateway. A nil key uses dedupe.NameCityState.
func NewMemory(key dedupe.KeyFunc) *Memory {
	if key == nil {
		key = dedupe.NameCityState
	}
	return &Memory{
		key:         key,
		now:         func() time.Time { return time.Now().UTC() },
		businesses:  make(map[string]types.CanonicalBusiness),
		byKey:       make(map[string]string),
		alignments:  make(map[string]types.AlignmentRecord),
		donations:   make(map[string][]types.DonationEvidence),
		statements:  make(map[string][]types.StatementEvidence),
		submissions: make(map[string]map[string]types.UserAlignmentSubmission),
	}
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// UpsertBusiness inserts c or merges it into the business with the same
// identity key.
func (m *Memory) UpsertBusiness(ctx context.Context, c types.BusinessCandidate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", perr("upsert business", err)
	}
	key := m.key(c).String()
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byKey[key]; ok {
		b := m.businesses[id]
		b.BusinessCandidate = dedupe.Merge(b.BusinessCandidate, c)
		b.UpdatedAt = now
		m.businesses[id] = b
		return id, nil
	}
	id := uuid.NewString()
	m.businesses[id] = types.CanonicalBusiness{
		ID:                id,
		BusinessCandidate: c,
		IdentityKey:       key,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	m.byKey[key] = id
	return id, nil
}

// FindByIdentity returns the earliest business whose folded name, city and
// state match.
func (m *Memory) FindByIdentity(_ context.Context, name, city, state string) (types.CanonicalBusiness, error) {
	n, c, s := dedupe.Fold(name), dedupe.Fold(city), dedupe.Fold(normalize.State(state))

	m.mu.RLock()
	defer m.mu.RUnlock()
	var found []types.CanonicalBusiness
	for _, b := range m.businesses {
		if dedupe.Fold(b.Name) == n && dedupe.Fold(b.City) == c && dedupe.Fold(b.State) == s {
			found = append(found, b)
		}
	}
	if len(found) == 0 {
		return types.CanonicalBusiness{}, ErrNotFound
	}
	return slices.MinFunc(found, func(a, b types.CanonicalBusiness) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	}), nil
}

// GetBusiness returns the business with id.
func (m *Memory) GetBusiness(_ context.Context, id string) (types.CanonicalBusiness, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.businesses[id]
	if !ok {
		return b, ErrNotFound
	}
	return b, nil
}

// SetLogo records the downloaded logo path for a business.
func (m *Memory) SetLogo(_ context.Context, id, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.businesses[id]
	if !ok {
		return ErrNotFound
	}
	b.LogoPath = path
	b.UpdatedAt = m.now()
	m.businesses[id] = b
	return nil
}

// ListBusinesses streams a snapshot of the businesses matching f, ordered
// by state, city and name.
func (m *Memory) ListBusinesses(ctx context.Context, f types.BusinessFilter) iter.Seq2[types.CanonicalBusiness, error] {
	state, city, category := dedupe.Fold(normalize.State(f.State)), dedupe.Fold(f.City), normalize.Category(f.Category)

	return func(yield func(types.CanonicalBusiness, error) bool) {
		m.mu.RLock()
		var snap []types.CanonicalBusiness
		for _, b := range m.businesses {
			if state != "" && dedupe.Fold(b.State) != state {
				continue
			}
			if city != "" && dedupe.Fold(b.City) != city {
				continue
			}
			if category != "" && b.Category != category {
				continue
			}
			if b.DataQuality < f.MinQuality {
				continue
			}
			snap = append(snap, b)
		}
		m.mu.RUnlock()

		slices.SortFunc(snap, func(a, b types.CanonicalBusiness) int {
			return cmp.Or(
				cmp.Compare(dedupe.Fold(a.State), dedupe.Fold(b.State)),
				cmp.Compare(dedupe.Fold(a.City), dedupe.Fold(b.City)),
				cmp.Compare(dedupe.Fold(a.Name), dedupe.Fold(b.Name)),
				cmp.Compare(a.ID, b.ID),
			)
		})
		if f.Limit > 0 && len(snap) > f.Limit {
			snap = snap[:f.Limit]
		}
		for _, b := range snap {
			if err := ctx.Err(); err != nil {
				yield(types.CanonicalBusiness{}, perr("list businesses", err))
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

func (m *Memory) requireBusiness(op, id string) error {
	if _, ok := m.businesses[id]; !ok {
		return perr(op, ErrNotFound)
	}
	return nil
}

// UpsertAlignment stores the canonical alignment record for a business.
func (m *Memory) UpsertAlignment(_ context.Context, rec types.AlignmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireBusiness("upsert alignment", rec.BusinessID); err != nil {
		return err
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = m.now()
	}
	m.alignments[rec.BusinessID] = rec
	return nil
}

// FindAlignment returns the stored alignment for a business.
func (m *Memory) FindAlignment(_ context.Context, businessID string) (types.AlignmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.alignments[businessID]
	if !ok {
		return rec, ErrNotFound
	}
	return rec, nil
}

// AppendDonation records a donation, replacing one to the same
// organization in the same year from the same source.
func (m *Memory) AppendDonation(_ context.Context, businessID string, d types.DonationEvidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireBusiness("append donation", businessID); err != nil {
		return err
	}
	k := donationKey{d.Organization, d.Year, d.Source}
	list := m.donations[businessID]
	for i, e := range list {
		if (donationKey{e.Organization, e.Year, e.Source}) == k {
			list[i] = d
			return nil
		}
	}
	m.donations[businessID] = append(list, d)
	return nil
}

// AppendStatement records a statement once per source and text.
func (m *Memory) AppendStatement(_ context.Context, businessID string, st types.StatementEvidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireBusiness("append statement", businessID); err != nil {
		return err
	}
	k := statementKey{st.Source, st.Text}
	list := m.statements[businessID]
	for i, e := range list {
		if (statementKey{e.Source, e.Text}) == k {
			list[i] = st
			return nil
		}
	}
	m.statements[businessID] = append(list, st)
	return nil
}

// ListEvidence returns the stored donations and statements for a business.
func (m *Memory) ListEvidence(_ context.Context, businessID string) (types.Evidence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev := types.Evidence{
		Donations:  append([]types.DonationEvidence{}, m.donations[businessID]...),
		Statements: append([]types.StatementEvidence{}, m.statements[businessID]...),
	}
	slices.SortStableFunc(ev.Donations, func(a, b types.DonationEvidence) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Organization, b.Organization))
	})
	return ev, nil
}

// UpsertSubmission stores a user's submission, replacing any earlier one
// for the same business.
func (m *Memory) UpsertSubmission(_ context.Context, sub types.UserAlignmentSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireBusiness("upsert submission", sub.BusinessID); err != nil {
		return err
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = m.now()
	}
	byUser, ok := m.submissions[sub.BusinessID]
	if !ok {
		byUser = make(map[string]types.UserAlignmentSubmission)
		m.submissions[sub.BusinessID] = byUser
	}
	byUser[sub.UserID] = sub
	return nil
}

// ListSubmissions returns the current submissions for a business, oldest
// first.
func (m *Memory) ListSubmissions(_ context.Context, businessID string) ([]types.UserAlignmentSubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.UserAlignmentSubmission
	for _, s := range m.submissions[businessID] {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b types.UserAlignmentSubmission) int {
		return cmp.Or(a.SubmittedAt.Compare(b.SubmittedAt), cmp.Compare(a.UserID, b.UserID))
	})
	return out, nil
}
