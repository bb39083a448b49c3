//go:build windows

package host

// ProbeCaseSensitivity always reports case-insensitive on Windows; NTFS can
// be configured otherwise per-directory but the common case matches the
// default and the host's own judgement never needs to be exact, only
// consistent with how paths get folded.
func ProbeCaseSensitivity(dir string) bool {
	return false
}
