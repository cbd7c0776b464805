package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const fileSuffix = ".snap.zst"

// FileStore keeps one zstd-compressed document per agent in a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file holding agent's snapshot.
func (s *FileStore) Path(agent uuid.UUID) string {
	return filepath.Join(s.dir, agent.String()+fileSuffix)
}

// Save writes rec atomically (temp file + rename).
func (s *FileStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, rec.Agent.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := compress(tmp, data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing snapshot %s: %w", rec.Agent, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot %s: %w", rec.Agent, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(rec.Agent)); err != nil {
		return fmt.Errorf("renaming snapshot %s: %w", rec.Agent, err)
	}
	return nil
}

func compress(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Load reads agent's snapshot. Returns ErrNotFound if there is none.
func (s *FileStore) Load(ctx context.Context, agent uuid.UUID) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	f, err := os.Open(s.Path(agent))
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, fmt.Errorf("agent %s: %w", agent, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("opening snapshot %s: %w", agent, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Record{}, fmt.Errorf("opening zstd stream %s: %w", agent, err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return Record{}, fmt.Errorf("reading snapshot %s: %w", agent, err)
	}
	return Decode(data)
}

// Delete removes agent's snapshot. Missing files are not an error.
func (s *FileStore) Delete(agent uuid.UUID) error {
	err := os.Remove(s.Path(agent))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting snapshot %s: %w", agent, err)
	}
	return nil
}

// List returns every agent with a snapshot file.
func (s *FileStore) List() ([]uuid.UUID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	var ids []uuid.UUID
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileSuffix)
		if !ok || e.IsDir() {
			continue
		}
		id, err := uuid.Parse(name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
