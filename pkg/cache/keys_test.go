package cache

import (
	"context"
	"testing"
	"time"
)

func TestKeyStableAcrossMapOrder(t *testing.T) {
	a := map[string]interface{}{"symbol": "AAPL", "window": "3mo", "fields": []string{"bid", "ask"}}
	b := map[string]interface{}{"fields": []string{"bid", "ask"}, "window": "3mo", "symbol": "AAPL"}

	ka, err := Key("scan", "snapshot", a)
	if err != nil {
		t.Fatalf("key a: %v", err)
	}
	kb, err := Key("scan", "snapshot", b)
	if err != nil {
		t.Fatalf("key b: %v", err)
	}
	if ka != kb {
		t.Fatalf("structurally equal args produced different keys: %s vs %s", ka, kb)
	}
}

func TestKeyDistinguishesArgs(t *testing.T) {
	ka, _ := Key("scan", "snapshot", "AAPL")
	kb, _ := Key("scan", "snapshot", "MSFT")
	if ka == kb {
		t.Fatalf("different args produced the same key")
	}
}

func TestKeyUnservableArg(t *testing.T) {
	if _, err := Key("scan", "snapshot", func() {}); err == nil {
		t.Fatalf("expected error for unserializable argument")
	}
}

func TestFetchRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) (string, error) {
		calls++
		return "quote", nil
	}

	v, hit, err := Fetch(ctx, c, "k1", time.Minute, fn)
	if err != nil || hit || v != "quote" {
		t.Fatalf("first call: v=%q hit=%v err=%v", v, hit, err)
	}

	v, hit, err = Fetch(ctx, c, "k1", time.Minute, fn)
	if err != nil || !hit || v != "quote" {
		t.Fatalf("second call: v=%q hit=%v err=%v", v, hit, err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 underlying call, got %d", calls)
	}
}

func TestFetchExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	if _, _, err := Fetch(ctx, c, "k2", 10*time.Millisecond, fn); err != nil {
		t.Fatalf("first call: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	v, hit, err := Fetch(ctx, c, "k2", 10*time.Millisecond, fn)
	if err != nil || hit {
		t.Fatalf("after expiry: hit=%v err=%v", hit, err)
	}
	if v != 2 {
		t.Fatalf("expected fresh value 2 after expiry, got %d", v)
	}
}

func TestFetchEmptyKeyBypasses(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	calls := 0
	fn := func(context.Context) (string, error) {
		calls++
		return "direct", nil
	}
	for i := 0; i < 2; i++ {
		v, hit, err := Fetch(context.Background(), c, "", time.Minute, fn)
		if err != nil || hit || v != "direct" {
			t.Fatalf("bypass call %d: v=%q hit=%v err=%v", i, v, hit, err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected bypass to call through twice, got %d", calls)
	}
}
