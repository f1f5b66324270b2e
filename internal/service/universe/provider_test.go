package universe

import (
	"context"
	"sort"
	"testing"

	"MoverScan/pkg/cache"
)

func TestNamedListLookup(t *testing.T) {
	p := NewProvider(nil, nil)

	symbols, err := p.GetUniverse(context.Background(), "semiconductor")
	if err != nil {
		t.Fatalf("GetUniverse() error = %v", err)
	}
	if len(symbols) == 0 {
		t.Fatal("semiconductor universe is empty")
	}
	found := false
	for _, s := range symbols {
		if s == "NVDA" {
			found = true
		}
	}
	if !found {
		t.Fatal("semiconductor universe missing NVDA")
	}
}

func TestCompositeDeduplicatedAndSorted(t *testing.T) {
	p := NewProvider(nil, nil)

	symbols, err := p.GetUniverse(context.Background(), "comprehensive")
	if err != nil {
		t.Fatalf("GetUniverse() error = %v", err)
	}

	if !sort.StringsAreSorted(symbols) {
		t.Fatal("composite universe is not sorted")
	}
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate symbol %q in composite", s)
		}
		seen[s] = struct{}{}
	}
	// AAPL appears in several source lists; it must survive exactly once.
	if _, ok := seen["AAPL"]; !ok {
		t.Fatal("composite missing AAPL")
	}
}

func TestDelistedSymbolsExcluded(t *testing.T) {
	p := NewProvider(nil, nil)

	for _, name := range []string{"retail", "all", "comprehensive", "biotech"} {
		symbols, err := p.GetUniverse(context.Background(), name)
		if err != nil {
			t.Fatalf("GetUniverse(%q) error = %v", name, err)
		}
		for _, s := range symbols {
			if _, dead := delisted[s]; dead {
				t.Fatalf("universe %q contains delisted symbol %q", name, s)
			}
		}
	}
}

func TestUnknownNameFallsBackToDefault(t *testing.T) {
	p := NewProvider(nil, nil)

	def, err := p.GetUniverse(context.Background(), DefaultName)
	if err != nil {
		t.Fatalf("GetUniverse(default) error = %v", err)
	}
	got, err := p.GetUniverse(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetUniverse(unknown) error = %v", err)
	}
	if len(got) != len(def) {
		t.Fatalf("unknown universe returned %d symbols, default has %d", len(got), len(def))
	}
}

func TestCompositeCached(t *testing.T) {
	store := cache.NewMemoryCache()
	p := NewProvider(store, nil)
	ctx := context.Background()

	first, err := p.GetUniverse(ctx, "all")
	if err != nil {
		t.Fatalf("GetUniverse() error = %v", err)
	}
	second, err := p.GetUniverse(ctx, "all")
	if err != nil {
		t.Fatalf("GetUniverse() cached error = %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cached composite has %d symbols, want %d", len(second), len(first))
	}
}

func TestNamesIncludesComposites(t *testing.T) {
	p := NewProvider(nil, nil)
	names := p.Names()

	want := map[string]bool{"comprehensive": false, "all": false, "sp500": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, ok := range want {
		if !ok {
			t.Fatalf("Names() missing %q", n)
		}
	}
	if !sort.StringsAreSorted(names) {
		t.Fatal("Names() not sorted")
	}
}
