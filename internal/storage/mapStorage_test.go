package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	m := NewMapStore()

	if _, ok, _ := m.Get("missing"); ok {
		t.Errorf("Get() found a key that was never set")
	}

	m.Set("key1", "value1", 0)

	val, ok, err := m.Get("key1")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v after Set", ok, err)
	}
	if val != "value1" {
		t.Errorf("Get() = %q, want %q", val, "value1")
	}

	// a plain SET replaces the value and clears expiry
	m.Set("key1", "value2", time.Minute)
	m.Set("key1", "value3", 0)

	if got := m.TTL("key1"); got != TTLNoExpiry {
		t.Errorf("TTL after plain SET = %d, want %d", got, TTLNoExpiry)
	}
	if val, _, _ := m.Get("key1"); val != "value3" {
		t.Errorf("Get() = %q, want %q", val, "value3")
	}
}

func TestGetWrongType(t *testing.T) {
	m := NewMapStore()
	m.LPush("mylist", "a") //nolint:errcheck

	if _, _, err := m.Get("mylist"); !errors.Is(err, ErrWrongType) {
		t.Errorf("Get() on a list error = %v, want ErrWrongType", err)
	}
}

func TestTypeTagIsStable(t *testing.T) {
	m := NewMapStore()
	m.Set("s", "hi", 0)

	if _, err := m.LPush("s", "x"); !errors.Is(err, ErrWrongType) {
		t.Errorf("LPush on a string error = %v, want ErrWrongType", err)
	}
	if _, err := m.HSet("s", "f", "v"); !errors.Is(err, ErrWrongType) {
		t.Errorf("HSet on a string error = %v, want ErrWrongType", err)
	}
	if _, err := m.SAdd("s", "x"); !errors.Is(err, ErrWrongType) {
		t.Errorf("SAdd on a string error = %v, want ErrWrongType", err)
	}

	// the rejected writes must not have disturbed the value
	if val, _, _ := m.Get("s"); val != "hi" {
		t.Errorf("value changed by rejected writes: %q", val)
	}

	// deletion + re-insertion is the only type transition
	m.Delete("s")
	if _, err := m.LPush("s", "x"); err != nil {
		t.Errorf("LPush after Delete error = %v", err)
	}
}

func TestDeleteCountsOnlyLiveKeys(t *testing.T) {
	m := NewMapStore()
	m.Set("a", "1", 0)
	m.Set("b", "2", 0)
	m.Set("gone", "3", time.Nanosecond)

	time.Sleep(time.Millisecond)

	if got := m.Delete("a", "b", "gone", "never"); got != 2 {
		t.Errorf("Delete() = %d, want 2", got)
	}
}

func TestExistsCountsPerOccurrence(t *testing.T) {
	m := NewMapStore()
	m.Set("a", "1", 0)

	if got := m.Exists("a", "a", "missing"); got != 2 {
		t.Errorf("Exists() = %d, want 2", got)
	}
}

func TestExpiryCodes(t *testing.T) {
	m := NewMapStore()

	if got := m.TTL("missing"); got != TTLNotFound {
		t.Errorf("TTL(missing) = %d, want %d", got, TTLNotFound)
	}

	m.Set("forever", "v", 0)
	if got := m.TTL("forever"); got != TTLNoExpiry {
		t.Errorf("TTL(no expiry) = %d, want %d", got, TTLNoExpiry)
	}

	m.Set("short", "v", 5*time.Second)
	if got := m.TTL("short"); got != 5 {
		t.Errorf("TTL(5s) = %d, want 5", got)
	}

	m.Set("gone", "v", time.Nanosecond)
	time.Sleep(time.Millisecond)
	if got := m.TTL("gone"); got != TTLNotFound {
		t.Errorf("TTL(expired) = %d, want %d", got, TTLNotFound)
	}
}

func TestExpireCommandSemantics(t *testing.T) {
	m := NewMapStore()

	if got := m.Expire("missing", time.Second); got != 0 {
		t.Errorf("Expire(missing) = %d, want 0", got)
	}

	m.Set("k", "v", 0)
	if got := m.Expire("k", 5*time.Second); got != 1 {
		t.Errorf("Expire(present) = %d, want 1", got)
	}
	if got := m.TTL("k"); got != 5 {
		t.Errorf("TTL after Expire = %d, want 5", got)
	}
}

func TestExpiredKeyIsAbsentEverywhere(t *testing.T) {
	m := NewMapStore()
	m.Set("k", "v", time.Nanosecond)
	time.Sleep(time.Millisecond)

	if _, ok, _ := m.Get("k"); ok {
		t.Errorf("Get() returned an expired key")
	}
	if got := m.Exists("k"); got != 0 {
		t.Errorf("Exists(expired) = %d, want 0", got)
	}
	if got := m.Len(); got != 0 {
		t.Errorf("Len() counts an expired key")
	}

	// an expired list key auto-creates fresh
	m.LPush("l", "old") //nolint:errcheck
	m.Expire("l", time.Nanosecond)
	time.Sleep(time.Millisecond)
	length, err := m.RPush("l", "new")
	if err != nil || length != 1 {
		t.Errorf("RPush over expired list = %d, %v, want 1, nil", length, err)
	}
}

func TestListOrder(t *testing.T) {
	m := NewMapStore()

	m.RPush("r", "a", "b", "c") //nolint:errcheck
	if got := m.LRange("r", 0, -1); fmt.Sprint(got) != "[a b c]" {
		t.Errorf("RPUSH order = %v, want [a b c]", got)
	}

	m.LPush("l", "a", "b", "c") //nolint:errcheck
	if got := m.LRange("l", 0, -1); fmt.Sprint(got) != "[c b a]" {
		t.Errorf("LPUSH order = %v, want [c b a]", got)
	}
}

func TestListPops(t *testing.T) {
	m := NewMapStore()
	m.RPush("l", "a", "b", "c") //nolint:errcheck

	if val, ok := m.LPop("l"); !ok || val != "a" {
		t.Errorf("LPop = %q, %v, want a", val, ok)
	}
	if val, ok := m.RPop("l"); !ok || val != "c" {
		t.Errorf("RPop = %q, %v, want c", val, ok)
	}

	m.LPop("l")
	if _, ok := m.LPop("l"); ok {
		t.Errorf("LPop on empty list reported ok")
	}
	if _, ok := m.LPop("missing"); ok {
		t.Errorf("LPop on missing key reported ok")
	}
}

func TestLRangeNormalization(t *testing.T) {
	m := NewMapStore()
	m.RPush("l", "a", "b", "c", "d", "e") //nolint:errcheck

	tests := []struct {
		name        string
		start, stop int64
		want        string
	}{
		{"Full range", 0, -1, "[a b c d e]"},
		{"Middle", 1, 3, "[b c d]"},
		{"Negative start", -2, -1, "[d e]"},
		{"Stop clamped", 0, 99, "[a b c d e]"},
		{"Start clamped", -99, 1, "[a b]"},
		{"Inverted", 3, 1, "[]"},
		{"Beyond end", 7, 9, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmt.Sprint(m.LRange("l", tt.start, tt.stop)); got != tt.want {
				t.Errorf("LRange(%d, %d) = %v, want %v", tt.start, tt.stop, got, tt.want)
			}
		})
	}

	if got := m.LRange("missing", 0, -1); len(got) != 0 {
		t.Errorf("LRange(missing) = %v, want empty", got)
	}

	m.Set("s", "hi", 0)
	if got := m.LRange("s", 0, -1); len(got) != 0 {
		t.Errorf("LRange on a string = %v, want empty", got)
	}
}

func TestHashNewFieldCounting(t *testing.T) {
	m := NewMapStore()

	added, err := m.HSet("h", "f1", "v1")
	if err != nil || added != 1 {
		t.Fatalf("HSet = %d, %v, want 1", added, err)
	}

	// f1 updates, f2 is new
	added, _ = m.HSet("h", "f1", "v1b", "f2", "v2")
	if added != 1 {
		t.Errorf("HSet update+new = %d, want 1", added)
	}

	if val, ok := m.HGet("h", "f1"); !ok || val != "v1b" {
		t.Errorf("HGet(f1) = %q, %v, want v1b", val, ok)
	}
	if _, ok := m.HGet("h", "nope"); ok {
		t.Errorf("HGet on missing field reported ok")
	}
	if _, ok := m.HGet("missing", "f"); ok {
		t.Errorf("HGet on missing key reported ok")
	}
}

func TestHashDeleteAndGetAll(t *testing.T) {
	m := NewMapStore()
	m.HSet("h", "f1", "v1", "f2", "v2") //nolint:errcheck

	if got := m.HDel("h", "f1", "nope"); got != 1 {
		t.Errorf("HDel = %d, want 1", got)
	}
	if got := m.HDel("missing", "f"); got != 0 {
		t.Errorf("HDel(missing) = %d, want 0", got)
	}

	all := m.HGetAll("h")
	if len(all) != 2 || all[0] != "f2" || all[1] != "v2" {
		t.Errorf("HGetAll = %v, want [f2 v2]", all)
	}
	if got := m.HGetAll("missing"); len(got) != 0 {
		t.Errorf("HGetAll(missing) = %v, want empty", got)
	}
}

func TestSetDeduplication(t *testing.T) {
	m := NewMapStore()

	for i := 0; i < 3; i++ {
		m.SAdd("s", "x") //nolint:errcheck
	}
	if got := m.SCard("s"); got != 1 {
		t.Errorf("SCard after repeated SAdd = %d, want 1", got)
	}
	if got := m.SMembers("s"); len(got) != 1 || got[0] != "x" {
		t.Errorf("SMembers = %v, want [x]", got)
	}

	added, _ := m.SAdd("s", "x", "y", "z")
	if added != 2 {
		t.Errorf("SAdd = %d, want 2", added)
	}
	if got := m.SRem("s", "x", "nope"); got != 1 {
		t.Errorf("SRem = %d, want 1", got)
	}
}

func TestFlushAll(t *testing.T) {
	m := NewMapStore()
	m.Set("a", "1", 0)
	m.SAdd("s", "x") //nolint:errcheck

	m.FlushAll()

	if got := m.Len(); got != 0 {
		t.Errorf("Len after FlushAll = %d, want 0", got)
	}
}

func TestDeleteExpiredSweep(t *testing.T) {
	m := NewMapStore()
	m.Set("live", "v", time.Hour)
	m.Set("dead1", "v", time.Nanosecond)
	m.Set("dead2", "v", time.Nanosecond)

	time.Sleep(time.Millisecond)

	if got := m.DeleteExpired(); got != 2 {
		t.Errorf("DeleteExpired() = %d, want 2", got)
	}
	if got := m.Len(); got != 1 {
		t.Errorf("Len after sweep = %d, want 1", got)
	}
}

func TestConcurrentDisjointKeys(t *testing.T) {
	m := NewMapStore()

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d_k%d", w, i)
				want := fmt.Sprintf("v%d_%d", w, i)
				m.Set(key, want, 0)
				got, ok, err := m.Get(key)
				if err != nil || !ok || got != want {
					errs <- fmt.Errorf("worker %d: Get(%s) = %q, %v, %v", w, key, got, ok, err)
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
