package songindex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song_list.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ResolvesVerbatimLines(t *testing.T) {
	path := writeList(t, "Artist/Album/01 One.flac\nArtist/Album/02 Two.flac\nSingles/Three.mp3\n")

	idx, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	tests := []struct {
		n    int
		want string
	}{
		{1, "Artist/Album/01 One.flac"},
		{2, "Artist/Album/02 Two.flac"},
		{3, "Singles/Three.mp3"},
	}
	for _, tt := range tests {
		got, err := idx.Resolve(tt.n)
		if err != nil {
			t.Errorf("Resolve(%d) error = %v", tt.n, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestResolve_OutOfRange(t *testing.T) {
	idx, err := Load(writeList(t, "one.mp3\ntwo.mp3\n"))
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{0, 3, -1, 9999} {
		if _, err := idx.Resolve(n); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Resolve(%d) error = %v, want ErrOutOfRange", n, err)
		}
	}
}

func TestLoad_SkipsBlankAndCommentLines(t *testing.T) {
	idx, err := Load(writeList(t, "#EXTM3U\n\none.mp3\n   \n# comment\ntwo.mp3\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
	if got, _ := idx.Resolve(2); got != "two.mp3" {
		t.Errorf("Resolve(2) = %q, want two.mp3", got)
	}
}

func TestLoad_EmptySource(t *testing.T) {
	if _, err := Load(writeList(t, "\n# only a comment\n")); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("Load() error = %v, want ErrEmptyIndex", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}

func TestReload(t *testing.T) {
	path := writeList(t, "one.mp3\n")
	idx, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("one.mp3\ntwo.mp3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := idx.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() after reload = %d, want 2", idx.Len())
	}

	// A reload that fails must keep the previous mapping.
	if err := os.WriteFile(path, []byte("#\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := idx.Reload(); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("Reload() error = %v, want ErrEmptyIndex", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() after failed reload = %d, want previous 2", idx.Len())
	}
}
