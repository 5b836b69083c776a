package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// ─── Progression Blob ───────────────────────────────────────────────────────

// PutBlob stores the JSON document under key, replacing any previous one.
func (d *DB) PutBlob(key, blob string, at time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO progression (key, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET blob=excluded.blob, updated_at=excluded.updated_at`,
		key, blob, at.Unix(),
	)
	return err
}

// GetBlob retrieves the document under key.
// Returns ok=false if key not found.
func (d *DB) GetBlob(key string) (blob string, ok bool, err error) {
	err = d.db.QueryRow(`SELECT blob FROM progression WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return blob, true, nil
}

// DeleteBlob removes the document under key.
func (d *DB) DeleteBlob(key string) error {
	_, err := d.db.Exec(`DELETE FROM progression WHERE key = ?`, key)
	return err
}

// ─── Flags ──────────────────────────────────────────────────────────────────

// SetFlag stores a key-value pair in flags.
func (d *DB) SetFlag(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO flags (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetFlag retrieves a flag value.
// Returns ok=false if key not found.
func (d *DB) GetFlag(key string) (value string, ok bool, err error) {
	err = d.db.QueryRow(`SELECT value FROM flags WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// DeleteFlag removes a flag.
func (d *DB) DeleteFlag(key string) error {
	_, err := d.db.Exec(`DELETE FROM flags WHERE key = ?`, key)
	return err
}

// ─── Session History ────────────────────────────────────────────────────────

// InsertSession appends a session record.
func (d *DB) InsertSession(rec domain.SessionRecord) error {
	_, err := d.db.Exec(
		`INSERT INTO session_history
			(id, day, kind, outcome, exercises, completed_sets, total_sets,
			 bosses_defeated, xp_granted, points_granted, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Day), int(rec.Kind), string(rec.Outcome), rec.Exercises,
		rec.CompletedSets, rec.TotalSets, rec.BossesDefeated,
		rec.XPGranted, rec.PointsGranted, rec.FinishedAt.Unix(),
	)
	return err
}

// ListSessions returns the most recent sessions, newest first.
// A non-positive limit returns every row.
func (d *DB) ListSessions(limit int) ([]domain.SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(
		`SELECT id, day, kind, outcome, exercises, completed_sets, total_sets,
			bosses_defeated, xp_granted, points_granted, finished_at
		 FROM session_history ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountSessions returns the number of recorded sessions with the outcome.
func (d *DB) CountSessions(outcome domain.SessionOutcome) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM session_history WHERE outcome = ?`, string(outcome)).Scan(&n)
	return n, err
}

func scanSession(s scanner) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	var day, outcome string
	var kind int
	var finishedAt int64

	err := s.Scan(&rec.ID, &day, &kind, &outcome, &rec.Exercises,
		&rec.CompletedSets, &rec.TotalSets, &rec.BossesDefeated,
		&rec.XPGranted, &rec.PointsGranted, &finishedAt)
	if err != nil {
		return rec, err
	}
	rec.Day = domain.DayID(day)
	rec.Kind = domain.SessionKind(kind)
	rec.Outcome = domain.SessionOutcome(outcome)
	rec.FinishedAt = time.Unix(finishedAt, 0)
	return rec, nil
}
