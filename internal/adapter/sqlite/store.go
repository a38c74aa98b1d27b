// Package sqlite persists hazard events and issued VTEC records in an SQLite
// database. Practice, test and operational data are kept apart by hazard
// mode.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

//go:embed migrations/001_initial.sql
var migration string

// ErrEventNotFound is returned when no event is stored under an ID.
var ErrEventNotFound = errors.New("hazard event not found")

// Store implements the generator's event and record stores.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dsn. Use ":memory:" for a private
// in-memory database.
func Open(dsn string) (*Store, error) {
	if dsn != ":memory:" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writes and keeps :memory: a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetHazardEvent returns the stored event.
func (s *Store) GetHazardEvent(ctx context.Context, eventID string, mode domain.HazardMode) (domain.HazardEvent, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM hazard_events WHERE event_id = ? AND mode = ?`, eventID, string(mode),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HazardEvent{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if err != nil {
		return domain.HazardEvent{}, fmt.Errorf("query event %s: %w", eventID, err)
	}

	var ev domain.HazardEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return domain.HazardEvent{}, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	return ev, nil
}

// SaveEvents upserts events in one transaction.
func (s *Store) SaveEvents(ctx context.Context, events []domain.HazardEvent, mode domain.HazardMode) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(time.RFC3339)
		for _, ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				return fmt.Errorf("encode event %s: %w", ev.EventID, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO hazard_events (event_id, mode, status, data, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (event_id, mode) DO UPDATE SET
					status = excluded.status,
					data = excluded.data,
					updated_at = excluded.updated_at
			`, ev.EventID, string(mode), string(ev.Status), string(data), now)
			if err != nil {
				return fmt.Errorf("save event %s: %w", ev.EventID, err)
			}
		}
		return nil
	})
}

// SaveRecords stores the records of one issuance, one row per record and
// event.
func (s *Store) SaveRecords(ctx context.Context, records []domain.VTECRecord, mode domain.HazardMode) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode record %s: %w", r.PhenSig(), err)
			}
			for _, id := range r.EventIDs {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO vtec_records (event_id, mode, office_id, phen, sig, etn, year, action, issue_time, data)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				`, id, string(mode), r.OfficeID, r.Phen, r.Sig, r.ETN, r.IssueTime.UTC().Year(),
					string(r.Action), r.IssueTime.Unix(), string(data))
				if err != nil {
					return fmt.Errorf("save record for event %s: %w", id, err)
				}
			}
		}
		return nil
	})
}

// LastRecords returns the records of the most recent issuance that touched
// eventID, in insertion order. The hazard mode is read from ctx.
func (s *Store) LastRecords(ctx context.Context, eventID string) ([]domain.VTECRecord, error) {
	mode := string(domain.HazardModeFrom(ctx))
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM vtec_records
		WHERE event_id = ? AND mode = ? AND issue_time = (
			SELECT MAX(issue_time) FROM vtec_records WHERE event_id = ? AND mode = ?
		)
		ORDER BY id
	`, eventID, mode, eventID, mode)
	if err != nil {
		return nil, fmt.Errorf("query records for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var out []domain.VTECRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r domain.VTECRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("decode record for event %s: %w", eventID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// NextETN returns one past the highest ETN issued for the office, phen.sig
// and year. Previews never consume a number because only issued records are
// stored.
func (s *Store) NextETN(ctx context.Context, officeID, phen, sig string, year int) (int, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(etn) FROM vtec_records
		WHERE office_id = ? AND phen = ? AND sig = ? AND year = ? AND mode = ?
	`, officeID, phen, sig, year, string(domain.HazardModeFrom(ctx))).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("query etn %s.%s: %w", phen, sig, err)
	}
	return int(last.Int64) + 1, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
