package selector

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memo caches the last result of fn for a comparable key. The key holds
// the identity of every input, so a changed input always misses.
type memo[K comparable, R any] struct {
	mu    sync.Mutex
	valid bool
	key   K
	val   R
}

func (m *memo[K, R]) get(key K, fn func() R) R {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.key == key {
		return m.val
	}
	m.val = fn()
	m.key = key
	m.valid = true
	return m.val
}

// keyedSize bounds how many parameter values keep a memo.
const keyedSize = 256

// keyed holds one memo per parameter value (room id, folder id). The least
// recently used memos are evicted past keyedSize.
type keyed[P comparable, K comparable, R any] struct {
	once  sync.Once
	memos *lru.Cache[P, *memo[K, R]]
}

func (k *keyed[P, K, R]) get(param P, key K, fn func() R) R {
	k.once.Do(func() {
		// lru.New only fails for a non-positive size.
		k.memos, _ = lru.New[P, *memo[K, R]](keyedSize)
	})
	m, ok := k.memos.Get(param)
	if !ok {
		m = &memo[K, R]{}
		if prev, found, _ := k.memos.PeekOrAdd(param, m); found {
			m = prev
		}
	}
	return m.get(key, fn)
}

func (k *keyed[P, K, R]) len() int {
	if k.memos == nil {
		return 0
	}
	return k.memos.Len()
}
