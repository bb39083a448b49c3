package paths

import "testing"

func TestFoldCase(t *testing.T) {
	if got := FoldCase("/A/B/C.ts", true); got != "/A/B/C.ts" {
		t.Errorf("FoldCase case-sensitive should be identity, got %s", got)
	}
	if got := FoldCase("/A/B/C.ts", false); got != "/a/b/c.ts" {
		t.Errorf("FoldCase case-insensitive should lower-case, got %s", got)
	}
}

func TestWalkUpward(t *testing.T) {
	levels := WalkUpward("/a/b/c", "")
	want := []string{"/a/b/c", "/a/b", "/a", "/"}
	if len(levels) != len(want) {
		t.Fatalf("WalkUpward levels = %v, want %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("WalkUpward[%d] = %q, want %q", i, levels[i], want[i])
		}
	}
}

func TestWalkUpwardBounded(t *testing.T) {
	levels := WalkUpward("/a/b/c/d", "/a/b")
	want := []string{"/a/b/c/d", "/a/b/c", "/a/b"}
	if len(levels) != len(want) {
		t.Fatalf("WalkUpward bounded levels = %v, want %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("WalkUpward bounded[%d] = %q, want %q", i, levels[i], want[i])
		}
	}
}
