// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/votewallet/internal/dedupe"
	"github.com/pdiddy/votewallet/internal/normalize"
	"github.com/pdiddy/votewallet/pkg/types"
)

// Supported SQL dialects, named after their database/sql drivers.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// SQL is the database-backed gateway.
type SQL struct {
	db      *sql.DB
	dialect string
	key     dedupe.KeyFunc
	now     func() time.Time
	newID   func() string
}

// OpenSQL opens dsn with the dialect's driver and creates the schema.
func OpenSQL(dialect, dsn string, key dedupe.KeyFunc) (*SQL, error) {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := NewSQL(db, dialect, key)
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// NewSQL wraps an open database. It does not touch the schema.
func NewSQL(db *sql.DB, dialect string, key dedupe.KeyFunc) *SQL {
	if key == nil {
		key = dedupe.NameCityState
	}
	return &SQL{
		db:      db,
		dialect: dialect,
		key:     key,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Close releases the database connection.
func (s *SQL) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS businesses (
		id TEXT PRIMARY KEY,
		identity_key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		city_key TEXT NOT NULL,
		state_key TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		rating DOUBLE PRECISION,
		review_count INTEGER,
		data_source TEXT NOT NULL DEFAULT '',
		data_quality INTEGER NOT NULL DEFAULT 0,
		logo_path TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_businesses_lookup ON businesses(name_key, city_key, state_key)`,
	`CREATE INDEX IF NOT EXISTS idx_businesses_state ON businesses(state)`,
	`CREATE TABLE IF NOT EXISTS alignments (
		business_id TEXT PRIMARY KEY REFERENCES businesses(id),
		vector TEXT NOT NULL,
		evidence_vector TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		evidence_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		basis TEXT NOT NULL DEFAULT '',
		submission_count INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS donations (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL REFERENCES businesses(id),
		organization TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		lean TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT '',
		UNIQUE (business_id, organization, year, source)
	)`,
	`CREATE TABLE IF NOT EXISTS statements (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL REFERENCES businesses(id),
		text TEXT NOT NULL,
		lean TEXT NOT NULL DEFAULT '',
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL DEFAULT '',
		UNIQUE (business_id, source, text)
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		user_id TEXT NOT NULL,
		business_id TEXT NOT NULL REFERENCES businesses(id),
		vector TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		submitted_at TEXT NOT NULL,
		PRIMARY KEY (user_id, business_id)
	)`,
}

// Migrate creates any missing tables and indexes.
func (s *SQL) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *SQL) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const businessColumns = `id, identity_key, name, category, address, city, state, zip, phone, email,
	website, description, latitude, longitude, rating, review_count, data_source, data_quality,
	logo_path, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBusiness(sc scanner) (types.CanonicalBusiness, error) {
	var (
		b                types.CanonicalBusiness
		lat, lon, rating sql.NullFloat64
		reviews          sql.NullInt64
		created, updated string
	)
	err := sc.Scan(&b.ID, &b.IdentityKey, &b.Name, &b.Category, &b.Address, &b.City, &b.State,
		&b.Zip, &b.Phone, &b.Email, &b.Website, &b.Description, &lat, &lon, &rating, &reviews,
		&b.DataSource, &b.DataQuality, &b.LogoPath, &created, &updated)
	if err != nil {
		return b, err
	}
	if lat.Valid && lon.Valid {
		b.Coordinates = &types.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if rating.Valid {
		b.Rating = &rating.Float64
	}
	if reviews.Valid {
		n := int(reviews.Int64)
		b.ReviewCount = &n
	}
	b.CreatedAt = parseTime(created)
	b.UpdatedAt = parseTime(updated)
	return b, nil
}

// timeLayout is fixed width so stored stamps order correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// UpsertBusiness inserts c or merges it into the business with the same
// identity key, in one transaction. It returns the business ID.
func (s *SQL) UpsertBusiness(ctx context.Context, c types.BusinessCandidate) (string, error) {
	key := s.key(c).String()
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", perr("upsert business", err)
	}
	defer tx.Rollback()

	merged, id, created, logo := c, s.newID(), now, ""
	existing, err := scanBusiness(tx.QueryRowContext(ctx,
		s.rebind(`SELECT `+businessColumns+` FROM businesses WHERE identity_key = ?`), key))
	switch {
	case err == nil:
		merged = dedupe.Merge(existing.BusinessCandidate, c)
		id, created, logo = existing.ID, existing.CreatedAt, existing.LogoPath
	case errors.Is(err, sql.ErrNoRows):
	default:
		return "", perr("upsert business", err)
	}

	var lat, lon sql.NullFloat64
	if merged.Coordinates != nil {
		lat = sql.NullFloat64{Float64: merged.Coordinates.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: merged.Coordinates.Longitude, Valid: true}
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO businesses (
			id, identity_key, name, name_key, city_key, state_key, category, address, city, state,
			zip, phone, email, website, description, latitude, longitude, rating, review_count,
			data_source, data_quality, logo_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (identity_key) DO UPDATE SET
			name = excluded.name, category = excluded.category, address = excluded.address,
			city = excluded.city, state = excluded.state, zip = excluded.zip,
			phone = excluded.phone, email = excluded.email, website = excluded.website,
			description = excluded.description, latitude = excluded.latitude,
			longitude = excluded.longitude, rating = excluded.rating,
			review_count = excluded.review_count, data_source = excluded.data_source,
			data_quality = excluded.data_quality, updated_at = excluded.updated_at`),
		id, key, merged.Name, dedupe.Fold(merged.Name), dedupe.Fold(merged.City), dedupe.Fold(merged.State),
		merged.Category, merged.Address, merged.City, merged.State, merged.Zip, merged.Phone,
		merged.Email, merged.Website, merged.Description, lat, lon, nullFloat(merged.Rating),
		nullInt(merged.ReviewCount), merged.DataSource, merged.DataQuality, logo,
		formatTime(created), formatTime(now))
	if err != nil {
		return "", perr("upsert business", err)
	}
	if err := tx.Commit(); err != nil {
		return "", perr("upsert business", err)
	}
	return id, nil
}

// FindByIdentity returns the earliest business whose folded name, city and
// state match. It returns ErrNotFound when none does.
func (s *SQL) FindByIdentity(ctx context.Context, name, city, state string) (types.CanonicalBusiness, error) {
	b, err := scanBusiness(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+businessColumns+`
		FROM businesses WHERE name_key = ? AND city_key = ? AND state_key = ?
		ORDER BY created_at, id LIMIT 1`),
		dedupe.Fold(name), dedupe.Fold(city), dedupe.Fold(normalize.State(state))))
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, perr("find business", err)
}

// GetBusiness returns the business with id.
func (s *SQL) GetBusiness(ctx context.Context, id string) (types.CanonicalBusiness, error) {
	b, err := scanBusiness(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+businessColumns+` FROM businesses WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, perr("get business", err)
}

// SetLogo records the downloaded logo path for a business.
func (s *SQL) SetLogo(ctx context.Context, id, path string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE businesses SET logo_path = ?, updated_at = ? WHERE id = ?`),
		path, formatTime(s.now()), id)
	if err != nil {
		return perr("set logo", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBusinesses streams businesses matching f ordered by state, city and
// name.
func (s *SQL) ListBusinesses(ctx context.Context, f types.BusinessFilter) iter.Seq2[types.CanonicalBusiness, error] {
	return func(yield func(types.CanonicalBusiness, error) bool) {
		var where []string
		var args []any
		if f.State != "" {
			where = append(where, "state_key = ?")
			args = append(args, dedupe.Fold(normalize.State(f.State)))
		}
		if f.City != "" {
			where = append(where, "city_key = ?")
			args = append(args, dedupe.Fold(f.City))
		}
		if f.Category != "" {
			where = append(where, "category = ?")
			args = append(args, normalize.Category(f.Category))
		}
		if f.MinQuality > 0 {
			where = append(where, "data_quality >= ?")
			args = append(args, f.MinQuality)
		}
		q := `SELECT ` + businessColumns + ` FROM businesses`
		if len(where) > 0 {
			q += " WHERE " + strings.Join(where, " AND ")
		}
		q += " ORDER BY state_key, city_key, name_key, id"
		if f.Limit > 0 {
			q += " LIMIT ?"
			args = append(args, f.Limit)
		}

		rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
		if err != nil {
			yield(types.CanonicalBusiness{}, perr("list businesses", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			b, err := scanBusiness(rows)
			if err != nil {
				yield(types.CanonicalBusiness{}, perr("list businesses", err))
				return
			}
			if !yield(b, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(types.CanonicalBusiness{}, perr("list businesses", err))
		}
	}
}

// UpsertAlignment stores the canonical alignment record for a business.
func (s *SQL) UpsertAlignment(ctx context.Context, rec types.AlignmentRecord) error {
	vec, err := json.Marshal(rec.Vector)
	if err != nil {
		return perr("upsert alignment", err)
	}
	evVec, err := json.Marshal(rec.EvidenceVector)
	if err != nil {
		return perr("upsert alignment", err)
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO alignments
			(business_id, vector, evidence_vector, confidence, evidence_confidence, basis,
			submission_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (business_id) DO UPDATE SET
			vector = excluded.vector, evidence_vector = excluded.evidence_vector,
			confidence = excluded.confidence, evidence_confidence = excluded.evidence_confidence,
			basis = excluded.basis,
			submission_count = excluded.submission_count, updated_at = excluded.updated_at`),
		rec.BusinessID, string(vec), string(evVec), rec.Confidence, rec.EvidenceConfidence, string(rec.Basis),
		rec.SubmissionCount, formatTime(updated))
	return perr("upsert alignment", err)
}

// FindAlignment returns the stored alignment for a business, or
// ErrNotFound.
func (s *SQL) FindAlignment(ctx context.Context, businessID string) (types.AlignmentRecord, error) {
	var (
		rec          types.AlignmentRecord
		vec, evVec   string
		basis, stamp string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT business_id, vector, evidence_vector,
		confidence, evidence_confidence, basis, submission_count, updated_at
		FROM alignments WHERE business_id = ?`), businessID).
		Scan(&rec.BusinessID, &vec, &evVec, &rec.Confidence, &rec.EvidenceConfidence, &basis,
			&rec.SubmissionCount, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, perr("find alignment", err)
	}
	if err := json.Unmarshal([]byte(vec), &rec.Vector); err != nil {
		return rec, perr("find alignment", err)
	}
	if err := json.Unmarshal([]byte(evVec), &rec.EvidenceVector); err != nil {
		return rec, perr("find alignment", err)
	}
	rec.Basis = types.AlignmentBasis(basis)
	rec.UpdatedAt = parseTime(stamp)
	return rec, nil
}

// AppendDonation records a donation. A donation to the same organization
// in the same year from the same source replaces the earlier amount.
func (s *SQL) AppendDonation(ctx context.Context, businessID string, d types.DonationEvidence) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO donations
			(id, business_id, organization, amount, lean, year, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (business_id, organization, year, source) DO UPDATE SET
			amount = excluded.amount, lean = excluded.lean`),
		s.newID(), businessID, d.Organization, d.Amount, string(d.Lean), d.Year, d.Source)
	return perr("append donation", err)
}

// AppendStatement records a statement; the same text from the same source
// is stored once.
func (s *SQL) AppendStatement(ctx context.Context, businessID string, st types.StatementEvidence) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO statements
			(id, business_id, text, lean, confidence, source, url, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (business_id, source, text) DO UPDATE SET
			lean = excluded.lean, confidence = excluded.confidence`),
		s.newID(), businessID, st.Text, string(st.Lean), st.Confidence, st.Source, st.URL,
		formatTime(st.PublishedAt))
	return perr("append statement", err)
}

// ListEvidence returns the stored donations and statements for a business.
func (s *SQL) ListEvidence(ctx context.Context, businessID string) (types.Evidence, error) {
	ev := types.Evidence{Donations: []types.DonationEvidence{}, Statements: []types.StatementEvidence{}}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT organization, amount, lean, year, source
		FROM donations WHERE business_id = ? ORDER BY year, organization`), businessID)
	if err != nil {
		return ev, perr("list donations", err)
	}
	for rows.Next() {
		var d types.DonationEvidence
		var l string
		if err := rows.Scan(&d.Organization, &d.Amount, &l, &d.Year, &d.Source); err != nil {
			rows.Close()
			return ev, perr("list donations", err)
		}
		d.Lean = types.Lean(l)
		ev.Donations = append(ev.Donations, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ev, perr("list donations", err)
	}

	rows, err = s.db.QueryContext(ctx, s.rebind(`SELECT text, lean, confidence, source, url, published_at
		FROM statements WHERE business_id = ? ORDER BY published_at, text`), businessID)
	if err != nil {
		return ev, perr("list statements", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st types.StatementEvidence
		var l, published string
		if err := rows.Scan(&st.Text, &l, &st.Confidence, &st.Source, &st.URL, &published); err != nil {
			return ev, perr("list statements", err)
		}
		st.Lean = types.Lean(l)
		st.PublishedAt = parseTime(published)
		ev.Statements = append(ev.Statements, st)
	}
	return ev, perr("list statements", rows.Err())
}

// UpsertSubmission stores a user's submission, replacing any earlier one
// for the same business.
func (s *SQL) UpsertSubmission(ctx context.Context, sub types.UserAlignmentSubmission) error {
	vec, err := json.Marshal(sub.Vector)
	if err != nil {
		return perr("upsert submission", err)
	}
	submitted := sub.SubmittedAt
	if submitted.IsZero() {
		submitted = s.now()
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO submissions
			(user_id, business_id, vector, confidence, submitted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, business_id) DO UPDATE SET
			vector = excluded.vector, confidence = excluded.confidence,
			submitted_at = excluded.submitted_at`),
		sub.UserID, sub.BusinessID, string(vec), sub.Confidence, formatTime(submitted))
	return perr("upsert submission", err)
}

// ListSubmissions returns the current submissions for a business, oldest
// first.
func (s *SQL) ListSubmissions(ctx context.Context, businessID string) ([]types.UserAlignmentSubmission, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT user_id, business_id, vector, confidence, submitted_at
		FROM submissions WHERE business_id = ? ORDER BY submitted_at, user_id`), businessID)
	if err != nil {
		return nil, perr("list submissions", err)
	}
	defer rows.Close()

	var out []types.UserAlignmentSubmission
	for rows.Next() {
		var sub types.UserAlignmentSubmission
		var vec, stamp string
		if err := rows.Scan(&sub.UserID, &sub.BusinessID, &vec, &sub.Confidence, &stamp); err != nil {
			return nil, perr("list submissions", err)
		}
		if err := json.Unmarshal([]byte(vec), &sub.Vector); err != nil {
			return nil, perr("list submissions", err)
		}
		sub.SubmittedAt = parseTime(stamp)
		out = append(out, sub)
	}
	return out, perr("list submissions", rows.Err())
}
