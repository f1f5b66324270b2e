package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Key builds a stable cache key from a namespace prefix, an operation
// name, and the call arguments. Arguments are normalized through JSON,
// which encodes map keys in sorted order, so two structurally equal
// arguments produce the same key regardless of insertion order. Arguments
// that cannot be serialized (functions, channels) return an error; callers
// are expected to bypass the cache rather than fail the call.
func Key(prefix, op string, args ...interface{}) (string, error) {
	parts := make([]string, 0, len(args)+2)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, op)

	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			parts = append(parts, v)
		case fmt.Stringer:
			parts = append(parts, v.String())
		default:
			b, err := json.Marshal(arg)
			if err != nil {
				return "", fmt.Errorf("cache key for %s: %w", op, err)
			}
			parts = append(parts, string(b))
		}
	}

	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return prefix + ":" + hex.EncodeToString(sum[:]), nil
}

// Fetch is a typed read-through: return the cached value under key if
// present and fresh, otherwise invoke fn, store its result with ttl, and
// return it. An empty key or any backend error degrades to a direct call;
// fn errors are returned as-is and nothing is stored.
func Fetch[T any](ctx context.Context, c Service, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if c == nil || key == "" {
		v, err := fn(ctx)
		return v, false, err
	}

	var cached T
	if err := c.Get(ctx, key, &cached); err == nil {
		return cached, true, nil
	}

	v, err := fn(ctx)
	if err != nil {
		return zero, false, err
	}
	// Store failures are deliberately swallowed: the result is still
	// valid, it just won't be reused.
	_ = c.Set(ctx, key, v, ttl)
	return v, false, nil
}
