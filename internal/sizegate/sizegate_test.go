package sizegate

import (
	"testing"

	"pscoord/internal/host"
)

func newHostWithFiles(files map[string]string) *host.FakeHost {
	h := host.NewFakeHost(true)
	for path, contents := range files {
		h.WriteFile(path, contents)
	}
	return h
}

func TestEvaluateFitsUnderBudget(t *testing.T) {
	h := newHostWithFiles(map[string]string{"/a.js": "0123456789"})
	g := New(100)

	d := g.Evaluate("p1", []string{"/a.js"}, h)
	if !d.Fits {
		t.Fatal("expected the project to fit under the budget")
	}
	if d.AccountedBytes != 10 {
		t.Fatalf("AccountedBytes = %d, want 10", d.AccountedBytes)
	}
	if g.TotalAccounted() != 10 {
		t.Fatalf("TotalAccounted = %d, want 10", g.TotalAccounted())
	}
}

func TestEvaluateIgnoresSourceExtensions(t *testing.T) {
	h := newHostWithFiles(map[string]string{"/a.ts": "0123456789012345"})
	g := New(10)

	d := g.Evaluate("p1", []string{"/a.ts"}, h)
	if !d.Fits {
		t.Fatal("a .ts file should never be accounted against the budget")
	}
	if d.AccountedBytes != 0 {
		t.Fatalf("AccountedBytes = %d, want 0", d.AccountedBytes)
	}
}

func TestEvaluateDeniesOverBudget(t *testing.T) {
	h := newHostWithFiles(map[string]string{"/a.js": "01234567890123456789"})
	g := New(10)

	d := g.Evaluate("p1", []string{"/a.js"}, h)
	if d.Fits {
		t.Fatal("expected a 20-byte file to be denied against a 10-byte budget")
	}
	if g.TotalAccounted() != 0 {
		t.Fatalf("TotalAccounted = %d, want 0 once denied", g.TotalAccounted())
	}
}

func TestEvaluateSharesBudgetAcrossProjects(t *testing.T) {
	h := newHostWithFiles(map[string]string{
		"/a.js": "0123456789", // 10 bytes
		"/b.js": "01234567890", // 11 bytes
	})
	g := New(10)

	if d := g.Evaluate("p1", []string{"/a.js"}, h); !d.Fits {
		t.Fatal("p1 alone should fit exactly at the budget")
	}
	if d := g.Evaluate("p2", []string{"/b.js"}, h); d.Fits {
		t.Fatal("p2 should be denied: no budget left once p1 accounts for all of it")
	}
	if g.TotalAccounted() != 10 {
		t.Fatalf("TotalAccounted = %d, want 10 (only p1)", g.TotalAccounted())
	}
}

func TestForgetFreesBudgetForOthers(t *testing.T) {
	h := newHostWithFiles(map[string]string{
		"/a.js": "0123456789",
		"/b.js": "0123456789",
	})
	g := New(10)

	g.Evaluate("p1", []string{"/a.js"}, h)
	g.Forget("p1")

	if d := g.Evaluate("p2", []string{"/b.js"}, h); !d.Fits {
		t.Fatal("expected p2 to fit once p1's accounting was forgotten")
	}
}

func TestEvaluateRecomputesFromScratch(t *testing.T) {
	h := host.NewFakeHost(true)
	h.WriteFile("/a.js", "0123456789")
	g := New(100)
	g.Evaluate("p1", []string{"/a.js"}, h)

	h.WriteFile("/a.js", "01234567890123456789")
	d := g.Evaluate("p1", []string{"/a.js"}, h)
	if d.AccountedBytes != 20 {
		t.Fatalf("AccountedBytes = %d, want 20 after growing the file", d.AccountedBytes)
	}
}
