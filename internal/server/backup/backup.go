// Package backup copies the SQLite database to timestamped snapshot files
// and restores from them.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	filePrefix = "medadapt_backup_"
	fileSuffix = ".db"
	metaSuffix = ".json"
)

// ErrInvalidName reports a restore name that is not a bare snapshot file name.
var ErrInvalidName = errors.New("invalid backup name")

// Backup describes one snapshot on disk.
type Backup struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// Manager creates and restores database snapshots in a single directory.
type Manager struct {
	dbPath string
	dir    string
	log    *zap.Logger
}

func NewManager(dbPath, dir string, log *zap.Logger) *Manager {
	return &Manager{dbPath: dbPath, dir: dir, log: log}
}

// Create copies the database file into the backup directory and writes a
// metadata sidecar next to it. Callers should quiesce writes first; SQLite
// in WAL mode keeps the main file consistent for readers.
func (m *Manager) Create() (*Backup, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}

	now := time.Now().UTC()
	name := filePrefix + now.Format("20060102150405") + fileSuffix
	dst := filepath.Join(m.dir, name)

	size, err := copyFile(m.dbPath, dst)
	if err != nil {
		return nil, fmt.Errorf("copying database: %w", err)
	}

	b := &Backup{Name: name, Path: dst, CreatedAt: now, SizeBytes: size}
	meta, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backup metadata: %w", err)
	}
	if err := os.WriteFile(dst+metaSuffix, meta, 0o644); err != nil {
		return nil, fmt.Errorf("writing backup metadata: %w", err)
	}

	m.log.Info("backup created", zap.String("path", dst), zap.Int64("size_bytes", size))
	return b, nil
}

// List returns available backups, newest first. Snapshots missing their
// metadata sidecar are reconstructed from file stats.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup dir: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		path := filepath.Join(m.dir, name)

		var b Backup
		if meta, err := os.ReadFile(path + metaSuffix); err == nil && json.Unmarshal(meta, &b) == nil {
			backups = append(backups, b)
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Name:      name,
			Path:      path,
			CreatedAt: info.ModTime().UTC(),
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore overwrites the live database with the named snapshot. The server
// must reopen its connections afterwards.
func (m *Manager) Restore(name string) error {
	if filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	src := filepath.Join(m.dir, name)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("locating backup %q: %w", name, err)
	}
	if _, err := copyFile(src, m.dbPath); err != nil {
		return fmt.Errorf("restoring database: %w", err)
	}
	m.log.Info("backup restored", zap.String("name", name))
	return nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	return n, nil
}
