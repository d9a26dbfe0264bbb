// Package locale keeps the taxonomy in the per-language translation files
// the UI loads. Each file is replaced through a staged write; the two files
// are not updated atomically as a pair.
package locale

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/renameio/v2"

	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/pkg/logger"
)

const DefaultFileName = "translation.json"

var ErrPartialWrite = errors.New("locale files partially written")

// PartialWriteError reports a mutation that reached some locale files but
// not all. The in-memory snapshot is left at the previous revision.
type PartialWriteError struct {
	Written []taxonomy.Lang
	Failed  taxonomy.Lang
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("locale files partially written: wrote %v, failed %s: %v", e.Written, e.Failed, e.Err)
}

func (e *PartialWriteError) Unwrap() []error {
	return []error{ErrPartialWrite, e.Err}
}

type WriteFunc func(path string, data []byte) error

// WriteFile is the default WriteFunc. It creates the language directory
// and replaces the file atomically, so readers never see a torn document.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}

type Option func(*Store)

func WithFileName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.fileName = name
		}
	}
}

// WithWriter replaces the file writer.
func WithWriter(w WriteFunc) Option {
	return func(s *Store) {
		if w != nil {
			s.write = w
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = logger.OrNop(l)
	}
}

type Store struct {
	dir      string
	fileName string
	langs    []taxonomy.Lang
	write    WriteFunc
	logger   logger.Logger

	mu      sync.Mutex
	current atomic.Pointer[taxonomy.Snapshot]
	hashes  map[taxonomy.Lang]string
	// diverged is set while the files on disk hold a partial write that
	// the served snapshot does not reflect.
	diverged bool
}

// Open loads <dir>/<lang>/<file> for every language. Files that do not
// exist yet are created from the built-in default catalogue.
func Open(ctx context.Context, dir string, langs []taxonomy.Lang, opts ...Option) (*Store, error) {
	if len(langs) == 0 {
		langs = taxonomy.DefaultLanguages
	}
	s := &Store{
		dir:      dir,
		fileName: DefaultFileName,
		langs:    append([]taxonomy.Lang(nil), langs...),
		write:    WriteFile,
		logger: logger.NewNoOpLogger(),
		hashes: map[taxonomy.Lang]string{},
	}
	for _, opt := range opts {
		opt(s)
	}

	docs, hashes, missing, err := s.readAll()
	if err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		defaults, err := taxonomy.DefaultDocuments(s.langs)
		if err != nil {
			return nil, err
		}
		for _, l := range missing {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := encode(defaults[l])
			if err != nil {
				return nil, err
			}
			if err := s.write(s.Path(l), data); err != nil {
				return nil, fmt.Errorf("bootstrap %s: %w", s.Path(l), err)
			}
			docs[l] = defaults[l]
			hashes[l] = digest(data)
			s.logger.Info("locale file bootstrapped from defaults", logger.Fields{"lang": string(l), "path": s.Path(l)})
		}
	}

	s.hashes = hashes
	s.current.Store(taxonomy.NewSnapshot(s.langs, docs, 1))
	return s, nil
}

func (s *Store) Path(lang taxonomy.Lang) string {
	return filepath.Join(s.dir, string(lang), s.fileName)
}

func (s *Store) Languages() []taxonomy.Lang {
	return append([]taxonomy.Lang(nil), s.langs...)
}

// Snapshot returns the current catalogue. It never blocks on writers.
func (s *Store) Snapshot() *taxonomy.Snapshot {
	return s.current.Load()
}

func (s *Store) Industries(lang taxonomy.Lang) map[string]string {
	return s.Snapshot().Industries(lang)
}

func (s *Store) WorkTypes(lang taxonomy.Lang, industry string) map[string]string {
	return s.Snapshot().WorkTypes(lang, industry)
}

func (s *Store) UpsertIndustry(ctx context.Context, key string, names taxonomy.Translations, isEdit bool) (*taxonomy.Snapshot, error) {
	return s.mutate(ctx, func(cur *taxonomy.Snapshot) (*taxonomy.Snapshot, bool, error) {
		next, err := cur.UpsertIndustry(key, names, isEdit)
		return next, err == nil, err
	})
}

func (s *Store) UpsertWorkType(ctx context.Context, industry, key string, names taxonomy.Translations, isEdit bool) (*taxonomy.Snapshot, error) {
	return s.mutate(ctx, func(cur *taxonomy.Snapshot) (*taxonomy.Snapshot, bool, error) {
		next, err := cur.UpsertWorkType(industry, key, names, isEdit)
		return next, err == nil, err
	})
}

func (s *Store) DeleteIndustry(ctx context.Context, key string) (*taxonomy.Snapshot, error) {
	return s.mutate(ctx, func(cur *taxonomy.Snapshot) (*taxonomy.Snapshot, bool, error) {
		next, changed := cur.DeleteIndustry(key)
		return next, changed, nil
	})
}

func (s *Store) DeleteWorkType(ctx context.Context, industry, key string) (*taxonomy.Snapshot, error) {
	return s.mutate(ctx, func(cur *taxonomy.Snapshot) (*taxonomy.Snapshot, bool, error) {
		next, changed := cur.DeleteWorkType(industry, key)
		return next, changed, nil
	})
}

// Reload re-reads the files and swaps the snapshot when their content
// differs from what was last read or written.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	docs, hashes, missing, err := s.readAll()
	if err != nil {
		return false, err
	}
	if len(missing) > 0 {
		return false, fmt.Errorf("reload: missing locale files for %v", missing)
	}

	same := true
	for _, l := range s.langs {
		if hashes[l] != s.hashes[l] {
			same = false
			break
		}
	}
	if same {
		if s.diverged {
			s.logger.Warn("locale files differ from the served revision after a partial write", logger.Fields{
				"revision": s.current.Load().Revision(),
			})
		}
		return false, nil
	}

	cur := s.current.Load()
	s.current.Store(taxonomy.NewSnapshot(s.langs, docs, cur.Revision()+1))
	s.hashes = hashes
	s.diverged = false
	s.logger.Info("locale files reloaded", logger.Fields{"revision": cur.Revision() + 1})
	return true, nil
}

type mutation func(cur *taxonomy.Snapshot) (next *taxonomy.Snapshot, changed bool, err error)

func (s *Store) mutate(ctx context.Context, fn mutation) (*taxonomy.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cur := s.current.Load()
	next, changed, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if !changed {
		return cur, nil
	}

	hashes, err := s.persist(next)
	if err != nil {
		var perr *PartialWriteError
		if errors.As(err, &perr) {
			// The written files are ours, not external edits; a reload
			// must not adopt the mixed state as a new revision.
			for l, h := range hashes {
				s.hashes[l] = h
			}
			s.diverged = true
		}
		return nil, err
	}

	s.current.Store(next)
	s.hashes = hashes
	s.diverged = false
	return next, nil
}

func (s *Store) persist(snap *taxonomy.Snapshot) (map[taxonomy.Lang]string, error) {
	hashes := make(map[taxonomy.Lang]string, len(s.langs))
	written := make([]taxonomy.Lang, 0, len(s.langs))
	for _, l := range s.langs {
		doc, _ := snap.Document(l)
		data, err := encode(doc)
		if err != nil {
			return nil, err
		}
		if err := s.write(s.Path(l), data); err != nil {
			if len(written) == 0 {
				return nil, fmt.Errorf("write %s: %w", s.Path(l), err)
			}
			perr := &PartialWriteError{Written: written, Failed: l, Err: err}
			s.logger.WithError(err).Error("locale files out of sync", logger.Fields{
				"written":  langStrings(written),
				"failed":   string(l),
				"revision": snap.Revision(),
			})
			return hashes, perr
		}
		written = append(written, l)
		hashes[l] = digest(data)
	}
	return hashes, nil
}

func (s *Store) readAll() (map[taxonomy.Lang]taxonomy.Document, map[taxonomy.Lang]string, []taxonomy.Lang, error) {
	docs := make(map[taxonomy.Lang]taxonomy.Document, len(s.langs))
	hashes := make(map[taxonomy.Lang]string, len(s.langs))
	var missing []taxonomy.Lang
	for _, l := range s.langs {
		data, err := os.ReadFile(s.Path(l))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, l)
				continue
			}
			return nil, nil, nil, fmt.Errorf("read %s: %w", s.Path(l), err)
		}
		var doc taxonomy.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, nil, fmt.Errorf("decode %s: %w", s.Path(l), err)
		}
		if doc == nil {
			doc = taxonomy.Document{}
		}
		docs[l] = doc
		hashes[l] = digest(data)
	}
	return docs, hashes, missing, nil
}

// encode writes the document pretty printed with two-space indentation and
// without HTML escaping, so names like "R&D" stay readable.
func encode(doc taxonomy.Document) ([]byte, error) {
	if doc == nil {
		doc = taxonomy.Document{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode locale document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func langStrings(langs []taxonomy.Lang) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		out = append(out, string(l))
	}
	return out
}
