package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"freelance-hub/internal/pkg/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// lockKey serializes concurrent runners through a postgres advisory lock.
const lockKey int64 = 746295114

var (
	fileRe  = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)
	tableRe = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?"?([A-Za-z_][A-Za-z0-9_]*)"?`)
)

// Migration is one versioned SQL file.
type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
	// Tables lists the tables the file creates.
	Tables []string
}

// Result reports what a run did.
type Result struct {
	Applied []int64
	Current int64
	Tables  []string
}

// Runner applies the blob store migrations. Source defaults to the SQL
// files compiled into the binary.
type Runner struct {
	Source fs.FS
	Logger logger.Logger
}

// New returns a runner over dir, or over the embedded files when dir is
// empty.
func New(dir string, l logger.Logger) Runner {
	r := Runner{Logger: l}
	if strings.TrimSpace(dir) != "" {
		r.Source = os.DirFS(dir)
	}
	return r
}

func (r Runner) source() (fs.FS, error) {
	if r.Source != nil {
		return r.Source, nil
	}
	return fs.Sub(embedded, "sql")
}

// Load reads and validates the migrations without touching a database.
func (r Runner) Load() ([]Migration, error) {
	src, err := r.source()
	if err != nil {
		return nil, err
	}
	return load(src)
}

// Run applies every pending migration on a single pinned connection, so
// the advisory lock is taken and released in the same session.
func (r Runner) Run(ctx context.Context, db *sql.DB) (Result, error) {
	if db == nil {
		return Result{}, errors.New("migrate: nil db")
	}
	log := logger.OrNop(r.Logger)

	migs, err := r.Load()
	if err != nil {
		return Result{}, err
	}
	if len(migs) == 0 {
		return Result{}, errors.New("migrate: no migrations found")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("migrate: acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, createHistory); err != nil {
		return Result{}, fmt.Errorf("migrate: history table: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return Result{}, fmt.Errorf("migrate: lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	applied, err := history(ctx, conn)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, m := range migs {
		res.Tables = append(res.Tables, m.Tables...)
		if sum, ok := applied[m.Version]; ok {
			if sum != m.Checksum {
				return res, fmt.Errorf("migrate: %s changed after it was applied", m.Filename)
			}
			res.Current = m.Version
			continue
		}
		if err := apply(ctx, conn, m); err != nil {
			return res, err
		}
		res.Applied = append(res.Applied, m.Version)
		res.Current = m.Version
		log.Info("migration applied", logger.Fields{"version": m.Version, "file": m.Filename, "tables": m.Tables})
	}

	log.Info("blob schema ready", logger.Fields{"version": res.Current, "tables": res.Tables, "applied": len(res.Applied)})
	return res, nil
}

func load(src fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var migs []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migrate: bad version in %s", e.Name())
		}
		b, err := fs.ReadFile(src, e.Name())
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(b))
		if body == "" {
			return nil, fmt.Errorf("migrate: %s is empty", e.Name())
		}

		sum := sha256.Sum256([]byte(body))
		mig := Migration{
			Version:  v,
			Name:     m[2],
			Filename: e.Name(),
			SQL:      body,
			Checksum: hex.EncodeToString(sum[:]),
		}
		for _, t := range tableRe.FindAllStringSubmatch(body, -1) {
			mig.Tables = append(mig.Tables, t[1])
		}
		migs = append(migs, mig)
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("migrate: duplicate version %d", migs[i].Version)
		}
	}
	return migs, nil
}

const createHistory = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func history(ctx context.Context, conn *sql.Conn) (map[int64]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("migrate: read history: %w", err)
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var v int64
		var sum string
		if err := rows.Scan(&v, &sum); err != nil {
			return nil, err
		}
		out[v] = sum
	}
	return out, rows.Err()
}

func apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migrate: apply %s: %w", m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`,
		m.Version, m.Name, m.Checksum, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("migrate: record %s: %w", m.Filename, err)
	}
	return tx.Commit()
}
