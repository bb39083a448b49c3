package compilerfe

import (
	"os"
	"path/filepath"
)

// OSFileReader implements FileReader against the real filesystem. Config
// parsing needs directory listing (for include/exclude glob resolution)
// that the host.Host abstraction does not expose, so this reader talks to
// os directly rather than through Host, the same way a real compiler
// front-end's own file system layer would.
type OSFileReader struct{}

func (OSFileReader) ReadFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (OSFileReader) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileReader) Glob(dir string, recursive bool) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if !recursive && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		out = append(out, p)
		return nil
	})
	return out
}
