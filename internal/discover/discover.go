// Package discover finds convertible images below a directory.
package discover

import (
	"os"
	"path/filepath"

	"pixpress/internal/logging"
)

// Filter decides which files and directories take part in a walk.
type Filter interface {
	Supports(path string) bool
	Excludes(dirName string) bool
}

type frame struct {
	dir     string
	entries []os.DirEntry
	next    int
}

// Walk returns the absolute paths of supported files below root, depth-first.
// Entries are visited in the order the filesystem returns them, which is not
// sorted and may differ between platforms. Excluded directories are pruned.
// A directory that cannot be read is logged and skipped; the walk continues
// with its siblings and the partial result is returned.
func Walk(root string, filter Filter, log *logging.Logger) []string {
	abs, err := filepath.Abs(root)
	if err != nil {
		log.Warn("Cannot resolve directory %s: %v", root, err)
		return nil
	}

	var files []string
	var stack []*frame

	if top := readFrame(abs, log); top != nil {
		stack = append(stack, top)
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if cur.next >= len(cur.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := cur.entries[cur.next]
		cur.next++

		path := filepath.Join(cur.dir, entry.Name())
		if entry.IsDir() {
			if filter.Excludes(entry.Name()) {
				log.Debug("Skipping excluded directory %s", path)
				continue
			}
			if sub := readFrame(path, log); sub != nil {
				stack = append(stack, sub)
			}
			continue
		}

		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		if filter.Supports(path) {
			files = append(files, path)
		}
	}

	return files
}

// readFrame reads a directory without sorting its entries.
func readFrame(dir string, log *logging.Logger) *frame {
	f, err := os.Open(dir)
	if err != nil {
		log.Warn("Cannot read directory %s: %v", dir, err)
		return nil
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		log.Warn("Cannot read directory %s: %v", dir, err)
		if len(entries) == 0 {
			return nil
		}
	}
	return &frame{dir: dir, entries: entries}
}
