package recolog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"stock-advisor/internal/types"
)

const (
	dayLayout = "2006-01-02"
	ext       = ".jsonl"
)

// Entry is one served recommendation as written to the journal.
type Entry struct {
	Time string `json:"time"`
	types.RecommendationResult
}

// Journal appends recommendations to one JSONL file per UTC day.
type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func New(dir string) *Journal {
	if dir == "" {
		dir = "logs/recommendations"
	}
	return &Journal{dir: dir, now: time.Now}
}

func (j *Journal) Dir() string { return j.dir }

func (j *Journal) path(day time.Time) string {
	return filepath.Join(j.dir, day.UTC().Format(dayLayout)+ext)
}

func (j *Journal) Append(r types.RecommendationResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().UTC()
	p := j.path(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	b, err := json.Marshal(Entry{Time: now.Format(time.RFC3339), RecommendationResult: r})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// Read returns the entries recorded on day, reading the compressed file when
// the plain one has already been rotated.
func (j *Journal) Read(day time.Time) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	p := j.path(day)
	var r io.Reader
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		f, err = os.Open(p + ".gz")
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", p, err)
		}
		defer gz.Close()
		r = gz
	} else if err != nil {
		return nil, err
	} else {
		defer f.Close()
		r = f
	}

	var out []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// CompressOlder gzips day files older than retentionDays and removes the
// originals. It returns how many files were compressed.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := os.ReadDir(j.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := j.now().UTC().AddDate(0, 0, -retentionDays)
	compressed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ext {
			continue
		}
		day, err := time.Parse(dayLayout, strings.TrimSuffix(name, ext))
		if err != nil || !day.Before(cutoff) {
			continue
		}
		p := filepath.Join(j.dir, name)
		if _, err := os.Stat(p + ".gz"); err == nil {
			_ = os.Remove(p)
			continue
		}
		if err := gzipFile(p); err != nil {
			return compressed, err
		}
		compressed++
	}
	return compressed, nil
}

func gzipFile(p string) error {
	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(p+".gz", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		os.Remove(p + ".gz")
		return fmt.Errorf("compress %s: %w", p, err)
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(p)
}
