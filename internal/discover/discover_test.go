package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"pixpress/internal/config"
	"pixpress/internal/logging"
)

func newFilter(t *testing.T) config.Run {
	t.Helper()
	run, err := config.NewRun(config.Target{Path: ".", Formats: config.BothFormats}, config.Defaults())
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	return run
}

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func relSorted(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		if !filepath.IsAbs(f) {
			t.Errorf("path %q is not absolute", f)
		}
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestWalk_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "hero.jpg")
	touch(t, dir, "banner.PNG")
	touch(t, dir, "scan.tif")
	touch(t, dir, "hero.webp")
	touch(t, dir, "notes.txt")
	touch(t, dir, "Makefile")

	got := relSorted(t, dir, Walk(dir, newFilter(t), logging.Discard()))
	want := []string{"banner.PNG", "hero.jpg", "scan.tif"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_PrunesExcludedAncestors(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "keep", "a.jpg")
	touch(t, dir, "keep", "deep", "b.png")
	touch(t, dir, "node_modules", "pkg", "c.png")
	touch(t, dir, "keep", "converted", "nested", "d.jpg")
	touch(t, dir, "processed", "e.jpg")

	got := relSorted(t, dir, Walk(dir, newFilter(t), logging.Discard()))
	want := []string{"keep/a.jpg", "keep/deep/b.png"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_DepthFirst(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a", "b", "c", "leaf.png")
	touch(t, dir, "a", "b", "mid.png")

	files := Walk(dir, newFilter(t), logging.Discard())
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	// Whatever order siblings come in, everything under a/b/c is emitted
	// contiguously with the rest of a/b.
	for _, f := range files {
		if !strings.HasPrefix(f, filepath.Join(dir, "a", "b")) {
			t.Errorf("unexpected path %s", f)
		}
	}
}

func TestWalk_UnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	touch(t, dir, "ok.jpg")
	touch(t, dir, "locked", "hidden.jpg")
	touch(t, dir, "zz", "after.png")

	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := relSorted(t, dir, Walk(dir, newFilter(t), logging.Discard()))
	want := []string{"ok.jpg", "zz/after.png"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	files := Walk(filepath.Join(t.TempDir(), "missing"), newFilter(t), logging.Discard())
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}
