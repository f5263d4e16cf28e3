package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheHelper(client, "test:"), mr
}

type cachedExam struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestCacheHelperSetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	want := cachedExam{ID: 7, Title: "free mock exam"}
	if err := helper.Set(ctx, "exam:7", want, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got cachedExam
	if err := helper.Get(ctx, "exam:7", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCacheHelperMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got cachedExam
	err := helper.Get(context.Background(), "missing", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelperNilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
}

func TestCacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedExam{ID: 1, Title: "from db"}, nil
	}

	var first cachedExam
	if err := helper.CacheOrExecute(ctx, "exam:1", &first, time.Minute, fetch); err != nil {
		t.Fatalf("first call: %v", err)
	}
	var second cachedExam
	if err := helper.CacheOrExecute(ctx, "exam:1", &second, time.Minute, fetch); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
	if first != second {
		t.Errorf("cached value diverged: %+v vs %+v", first, second)
	}
}

func TestInvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"exam:1", "exam:2", "question:9"} {
		if err := helper.Set(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "exam:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	if mr.Exists("test:exam:1") || mr.Exists("test:exam:2") {
		t.Error("exam keys should have been invalidated")
	}
	if !mr.Exists("test:question:9") {
		t.Error("question key should survive exam invalidation")
	}
}
