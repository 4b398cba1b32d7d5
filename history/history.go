// Package history records every drained resource change in a SQLite table so
// past values can be listed per resource.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"ipso-client-coap/lwm2m"
)

//go:embed schema.sql
var schemaSQL string

const (
	dirPermissions = 0o750
	busyTimeoutMS  = 5000
)

// Entry is one recorded value.
type Entry struct {
	Time             time.Time
	Path             lwm2m.Path
	ResourceInstance lwm2m.ResourceInstanceID
	Value            lwm2m.Value
}

type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating directory: %w", ErrOpen, err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("%w: applying schema: %w", ErrOpen, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Deliver records all snapshots in one transaction.
func (s *Store) Deliver(ctx context.Context, snaps []lwm2m.Snapshot) (err error) {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback() //nolint:errcheck // the insert error is what matters
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO resource_values
		(recorded_at, object_id, instance_id, resource_id, resource_instance, value_type, value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history: prepare: %w", err)
	}
	defer stmt.Close()

	at := s.now().UnixMilli()
	for _, snap := range snaps {
		p := snap.Path
		if _, err = stmt.ExecContext(ctx, at, p.Object, p.Instance, p.Resource,
			snap.ResourceInstance, int(snap.Value.Type()), snap.Value.String()); err != nil {
			return fmt.Errorf("history: insert %s: %w", p, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	s.logger.Debug("recorded", zap.Int("values", len(snaps)))
	return nil
}

// Recent returns up to limit values recorded for p, newest first.
func (s *Store) Recent(ctx context.Context, p lwm2m.Path, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT recorded_at, resource_instance, value_type, value
		FROM resource_values
		WHERE object_id = ? AND instance_id = ? AND resource_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?`, p.Object, p.Instance, p.Resource, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query %s: %w", p, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			at  int64
			ri  int
			typ int
			raw string
		)
		if err := rows.Scan(&at, &ri, &typ, &raw); err != nil {
			return nil, fmt.Errorf("history: scan %s: %w", p, err)
		}
		v, err := decode(lwm2m.ValueType(typ), raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, p, err)
		}
		entries = append(entries, Entry{
			Time:             time.UnixMilli(at),
			Path:             p,
			ResourceInstance: lwm2m.ResourceInstanceID(ri),
			Value:            v,
		})
	}
	return entries, rows.Err()
}

func (s *Store) Name() string { return "history" }

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// decode reverses lwm2m.Value.String for a stored type.
func decode(t lwm2m.ValueType, raw string) (lwm2m.Value, error) {
	switch t {
	case lwm2m.TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		return lwm2m.Float(f), err
	case lwm2m.TypeInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		return lwm2m.Integer(i), err
	case lwm2m.TypeBoolean:
		b, err := strconv.ParseBool(raw)
		return lwm2m.Boolean(b), err
	case lwm2m.TypeString:
		return lwm2m.String(raw), nil
	case lwm2m.TypeOpaque:
		b, err := base64.RawURLEncoding.DecodeString(raw)
		return lwm2m.Opaque(b), err
	default:
		return lwm2m.Value{}, fmt.Errorf("unknown value type %d", t)
	}
}
