package songindex

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrEmptyIndex is returned by Load when the source file yields no
// usable entries at all.
var ErrEmptyIndex = errors.New("song list contains no entries")

// ErrOutOfRange is returned by Resolve for selections outside [1, Len].
var ErrOutOfRange = errors.New("song number out of range")

// Index maps 1-based song numbers to file paths.
//
// The index is built once from a newline-delimited path list and is
// read-only afterwards; Reload re-parses the same source on demand
// (e.g. after a library rescan) and swaps the mapping atomically.
// There is no automatic refresh.
type Index struct {
	path string

	mu    sync.RWMutex
	lines []string
}

// Load parses the song list at path into a new Index.
//
// One path per line, line number is the selectable song number. Blank
// lines and #-prefixed comment lines are skipped, which also makes a
// simple M3U file a valid source. Song numbers count surviving
// entries, not raw file lines: a blank separator does not occupy a
// number, so printed song sheets should be generated from the loaded
// index rather than from file line numbers. A malformed line is
// dropped rather than aborting the load; only a source with zero
// surviving entries fails, with ErrEmptyIndex.
func Load(path string) (*Index, error) {
	lines, err := parse(path)
	if err != nil {
		return nil, err
	}
	return &Index{path: path, lines: lines}, nil
}

// Resolve returns the path for song number n.
//
// Fails with ErrOutOfRange for n outside [1, Len()].
func (idx *Index) Resolve(n int) (string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if n < 1 || n > len(idx.lines) {
		return "", fmt.Errorf("song %d (valid range 1-%d): %w", n, len(idx.lines), ErrOutOfRange)
	}
	return idx.lines[n-1], nil
}

// Len returns the number of selectable songs.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.lines)
}

// Reload re-parses the source file and atomically replaces the
// mapping. On error the previous mapping is kept.
func (idx *Index) Reload() error {
	lines, err := parse(idx.path)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.lines = lines
	idx.mu.Unlock()
	return nil
}

func parse(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open song list: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	// Library paths can be long; the default 64KB token limit is fine,
	// but individual oversized lines should not kill the whole load.
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read song list: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrEmptyIndex
	}
	return lines, nil
}
