// Package store keeps the atoms of XYZ trajectories in an SQLite database,
// one row per atom per frame, so they can be queried by element.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rmera/sqlmd"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// BatchSize is the maximum number of rows inserted in one transaction.
const BatchSize = 5000

// Store is an SQLite database with trajectory data.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the database at path, creating it and its tables if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies, in order, the embedded migrations newer than the
// version recorded in the database. Each one runs in its own transaction,
// together with the record of its version.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}
	names, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(path.Base(name), "%d_", &version); err != nil || version <= current {
			continue
		}
		if err := s.apply(name, version); err != nil {
			return fmt.Errorf("migration %s: %w", path.Base(name), err)
		}
	}
	return nil
}

func (s *Store) apply(name string, version int) error {
	content, err := fs.ReadFile(migrationsFS, name)
	if err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

const insertAtom = `INSERT INTO traj (step, atom_id, element, scalar, x, y, z, vx, vy, vz)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// batch is an open transaction with its prepared insert statement.
type batch struct {
	tx   *sql.Tx
	stmt *sql.Stmt
	rows int
}

func (s *Store) newBatch(ctx context.Context) (*batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertAtom)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	return &batch{tx: tx, stmt: stmt}, nil
}

func (b *batch) commit() error {
	b.stmt.Close()
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("committing %d rows: %w", b.rows, err)
	}
	return nil
}

func (b *batch) rollback() {
	b.stmt.Close()
	b.tx.Rollback()
}

// Save inserts all the atoms of all the frames in traj, and returns the number
// of rows written. Rows are committed in batches of at most BatchSize. If a
// progress function is given, it is called with the iteration index of each
// frame once the frame has been queued for insertion.
func (s *Store) Save(ctx context.Context, traj *sqlmd.Trajectory, progress ...func(step int)) (int, error) {
	var report func(int)
	if len(progress) > 0 && progress[0] != nil {
		report = progress[0]
	}
	b, err := s.newBatch(ctx)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, f := range traj.Frames() {
		for i, a := range f.Atoms() {
			if b.rows >= BatchSize {
				if err := b.commit(); err != nil {
					return written, err
				}
				written += b.rows
				if b, err = s.newBatch(ctx); err != nil {
					return written, err
				}
			}
			p, v := a.Pos(), a.Vec()
			_, err := b.stmt.ExecContext(ctx, f.Iter(), i, a.Element(), a.Scalar(), p[0], p[1], p[2], v[0], v[1], v[2])
			if err != nil {
				b.rollback()
				return written, fmt.Errorf("inserting atom %d of step %d: %w", i, f.Iter(), err)
			}
			b.rows++
		}
		if report != nil {
			report(f.Iter())
		}
	}
	if err := b.commit(); err != nil {
		return written, err
	}
	return written + b.rows, nil
}

// Clear removes all the atoms from the database, and forgets the checksums
// of the files they came from.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM traj"); err != nil {
		return fmt.Errorf("clearing trajectory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM source"); err != nil {
		return fmt.Errorf("clearing sources: %w", err)
	}
	return nil
}

// elementFilter returns the WHERE clause and arguments that select the atoms
// with the given element. An empty element selects everything.
func elementFilter(element string) (string, []any) {
	if element == "" {
		return "", nil
	}
	return " WHERE element = ?", []any{element}
}

// XY returns the x and y coordinates of all the stored atoms with the
// given element, or of all atoms if element is empty. Atoms with a
// NaN x or y coordinate are skipped.
func (s *Store) XY(ctx context.Context, element string) (xs, ys []float64, err error) {
	where, args := elementFilter(element)
	rows, err := s.db.QueryContext(ctx, "SELECT x, y FROM traj"+where, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying positions: %w", err)
	}
	defer rows.Close()
	xs = make([]float64, 0)
	ys = make([]float64, 0)
	for rows.Next() {
		//SQLite stores NaN coordinates as NULL.
		var x, y sql.NullFloat64
		if err := rows.Scan(&x, &y); err != nil {
			return nil, nil, fmt.Errorf("scanning position: %w", err)
		}
		if !x.Valid || !y.Valid {
			continue
		}
		xs = append(xs, x.Float64)
		ys = append(ys, y.Float64)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating positions: %w", err)
	}
	return xs, ys, nil
}

// Count returns the number of stored atoms with the given element
// (all atoms if element is empty).
func (s *Store) Count(ctx context.Context, element string) (int, error) {
	where, args := elementFilter(element)
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM traj"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting atoms: %w", err)
	}
	return n, nil
}

func (s *Store) column(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Elements returns the distinct elements in the database, sorted.
func (s *Store) Elements(ctx context.Context) ([]string, error) {
	ret := make([]string, 0)
	err := s.column(ctx, "SELECT DISTINCT element FROM traj ORDER BY element", func(r *sql.Rows) error {
		var e string
		if err := r.Scan(&e); err != nil {
			return err
		}
		ret = append(ret, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing elements: %w", err)
	}
	return ret, nil
}

// Steps returns the distinct iteration indexes in the database, sorted.
func (s *Store) Steps(ctx context.Context) ([]int, error) {
	ret := make([]int, 0)
	err := s.column(ctx, "SELECT DISTINCT step FROM traj ORDER BY step", func(r *sql.Rows) error {
		var st int
		if err := r.Scan(&st); err != nil {
			return err
		}
		ret = append(ret, st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing steps: %w", err)
	}
	return ret, nil
}

// Checksum returns the SHA-256 sum of the contents of filename.
func Checksum(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", filename, err)
	}
	return h.Sum(nil), nil
}

// SourceChecksum returns the checksum recorded for the input file path,
// or nil if no file was recorded under that path.
func (s *Store) SourceChecksum(ctx context.Context, path string) ([]byte, error) {
	var sum []byte
	err := s.db.QueryRowContext(ctx, "SELECT sha256 FROM source WHERE path = ?", path).Scan(&sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting checksum of %s: %w", path, err)
	}
	return sum, nil
}

// SetSourceChecksum records sum as the checksum of the input file path.
func (s *Store) SetSourceChecksum(ctx context.Context, path string, sum []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source (path, sha256, loaded_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			sha256 = excluded.sha256,
			loaded_at = excluded.loaded_at
	`, path, sum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving checksum of %s: %w", path, err)
	}
	return nil
}

// UpToDate returns true if the checksum recorded for path matches sum.
func (s *Store) UpToDate(ctx context.Context, path string, sum []byte) (bool, error) {
	old, err := s.SourceChecksum(ctx, path)
	if err != nil {
		return false, err
	}
	return old != nil && bytes.Equal(old, sum), nil
}
