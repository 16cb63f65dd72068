package cache

import "container/list"

// lru tracks path recency for bounded caches. It is not safe for
// concurrent use; Cache guards it with its own mutex.
type lru struct {
	max   int
	ll    *list.List
	items map[string]*list.Element
}

func newLRU(max int) *lru {
	return &lru{
		max:   max,
		ll:    list.New(),
		items: make(map[string]*list.Element),
	}
}

// Touch marks key as most recently used if it is tracked.
func (l *lru) Touch(key string) {
	if el, ok := l.items[key]; ok {
		l.ll.MoveToFront(el)
	}
}

// Add tracks key as most recently used and returns the key that fell off
// the end, if any.
func (l *lru) Add(key string) (string, bool) {
	if el, ok := l.items[key]; ok {
		l.ll.MoveToFront(el)
		return "", false
	}

	l.items[key] = l.ll.PushFront(key)

	if l.ll.Len() > l.max {
		last := l.ll.Back()
		if last == nil {
			return "", false
		}
		l.ll.Remove(last)
		evicted := last.Value.(string)
		delete(l.items, evicted)
		return evicted, true
	}
	return "", false
}

// Remove stops tracking key.
func (l *lru) Remove(key string) {
	if el, ok := l.items[key]; ok {
		l.ll.Remove(el)
		delete(l.items, key)
	}
}

func (l *lru) Len() int {
	return l.ll.Len()
}
