package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/MihkelHunter/mkToDo/internal/todo"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a task file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml (or yml) and toml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use json, yaml or toml", s)
	}
}

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// tomlDocument wraps the records because a TOML document must be a table.
type tomlDocument struct {
	Tasks []todo.Record `toml:"tasks"`
}

// FileRepository stores the whole collection as one document. A save writes a
// temporary file next to the target and renames it into place, so a load
// never sees a half-written document.
type FileRepository struct {
	path   string
	format Format
	lock   *flock.Flock
	log    *zap.Logger
}

// NewFile returns a repository for path, creating its directory if needed.
// The file itself is created on the first Save.
func NewFile(path string, opts ...Option) (*FileRepository, error) {
	o := buildOptions(opts)
	if o.format == "" {
		o.format = FormatFromPath(path)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	return &FileRepository{
		path:   path,
		format: o.format,
		lock:   flock.New(path + ".lock"),
		log:    o.log,
	}, nil
}

func (r *FileRepository) Path() string   { return r.path }
func (r *FileRepository) Format() Format { return r.format }

func (r *FileRepository) Save(tasks []*todo.Task) error {
	records := make([]todo.Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t.Record())
	}
	data, err := encode(r.format, records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.format, err)
	}

	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", r.path, err)
	}
	defer func() { _ = r.lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

// Load never fails: a missing, unreadable or corrupt file yields an empty
// collection. A corrupt file is copied aside first so the next Save cannot
// destroy the only copy.
func (r *FileRepository) Load() ([]*todo.Task, error) {
	if err := r.lock.RLock(); err != nil {
		r.log.Warn("reading task file without lock", zap.String("path", r.path), zap.Error(err))
	} else {
		defer func() { _ = r.lock.Unlock() }()
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Warn("task file unreadable, starting empty", zap.String("path", r.path), zap.Error(err))
		}
		return []*todo.Task{}, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*todo.Task{}, nil
	}

	entries, err := decode(r.format, data)
	if err != nil {
		r.quarantine(data, err)
		return []*todo.Task{}, nil
	}

	now := time.Now()
	tasks := make([]*todo.Task, 0, len(entries))
	for i, entry := range entries {
		var rec todo.Record
		err := entry(&rec)
		var t *todo.Task
		if err == nil {
			t, err = todo.FromRecord(rec, now)
		}
		if err != nil {
			r.log.Warn("skipping invalid task record",
				zap.String("path", r.path),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *FileRepository) Clear() error {
	return r.Save(nil)
}

func (r *FileRepository) quarantine(data []byte, cause error) {
	backup := fmt.Sprintf("%s.corrupt-%d", r.path, time.Now().Unix())
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		r.log.Error("task file corrupt and backup failed",
			zap.String("path", r.path),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	r.log.Warn("task file corrupt, starting empty",
		zap.String("path", r.path),
		zap.String("backup", backup),
		zap.Error(cause),
	)
}

func encode(f Format, records []todo.Record) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return nil, err
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(tomlDocument{Tasks: records}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return buf.Bytes(), nil
}

// recordDecoder fills one record from an already parsed document entry.
type recordDecoder func(*todo.Record) error

// decode parses the document structure only. Each entry is decoded on its own
// so one malformed record does not discard the rest.
func decode(f Format, data []byte) ([]recordDecoder, error) {
	var entries []recordDecoder
	switch f {
	case FormatJSON:
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		for _, msg := range raw {
			entries = append(entries, func(rec *todo.Record) error {
				return json.Unmarshal(msg, rec)
			})
		}
	case FormatYAML:
		var nodes []yaml.Node
		if err := yaml.Unmarshal(data, &nodes); err != nil {
			return nil, err
		}
		for i := range nodes {
			node := &nodes[i]
			entries = append(entries, func(rec *todo.Record) error {
				return node.Decode(rec)
			})
		}
	case FormatTOML:
		var doc struct {
			Tasks []toml.Primitive `toml:"tasks"`
		}
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, err
		}
		for _, prim := range doc.Tasks {
			entries = append(entries, func(rec *todo.Record) error {
				return md.PrimitiveDecode(prim, rec)
			})
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return entries, nil
}
