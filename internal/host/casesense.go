//go:build !windows

package host

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ProbeCaseSensitivity reports whether dir's filesystem treats file names as
// case-sensitive. It creates a throwaway file and stats it under a
// case-flipped name, comparing inode/device identity via unix.Stat so the
// probe is accurate even when the flipped name simply doesn't exist (which
// alone would be ambiguous on a case-sensitive filesystem vs. a typo).
func ProbeCaseSensitivity(dir string) bool {
	probe := filepath.Join(dir, ".pscoord-case-probe")
	flipped := filepath.Join(dir, ".PSCOORD-CASE-PROBE")

	if err := os.WriteFile(probe, []byte{}, 0o600); err != nil {
		// Can't probe; assume case-sensitive, the Unix default.
		return true
	}
	defer os.Remove(probe)

	var want, got unix.Stat_t
	if err := unix.Stat(probe, &want); err != nil {
		return true
	}
	if err := unix.Stat(flipped, &got); err != nil {
		return true
	}
	return !(want.Dev == got.Dev && want.Ino == got.Ino)
}
