package state

import (
	"fmt"

	"github.com/Wyydra/huddle/internal/core/domain"
)

// Entity is anything stored in a List.
type Entity[K comparable] interface {
	Key() K
}

// List is a normalized collection: an unordered lookup map plus the
// authoritative ordering of its ids. allIDs always holds exactly the keys
// of byID, without duplicates.
type List[K comparable, T Entity[K]] struct {
	name   string
	byID   map[K]T
	allIDs []K
}

func NewList[K comparable, T Entity[K]](name string) *List[K, T] {
	return &List[K, T]{
		name: name,
		byID: make(map[K]T),
	}
}

func (l *List[K, T]) Name() string { return l.name }

func (l *List[K, T]) Len() int { return len(l.allIDs) }

func (l *List[K, T]) Has(id K) bool {
	_, ok := l.byID[id]
	return ok
}

func (l *List[K, T]) Get(id K) (T, bool) {
	v, ok := l.byID[id]
	return v, ok
}

// IDs returns a copy of the ordered ids.
func (l *List[K, T]) IDs() []K {
	out := make([]K, len(l.allIDs))
	copy(out, l.allIDs)
	return out
}

// Upsert inserts or replaces item. A new id is appended, an existing one
// keeps its position.
func (l *List[K, T]) Upsert(item T) {
	id := item.Key()
	if _, ok := l.byID[id]; !ok {
		l.allIDs = append(l.allIDs, id)
	}
	l.byID[id] = item
}

// RemoveByID deletes id and reports whether it was present.
func (l *List[K, T]) RemoveByID(id K) bool {
	if _, ok := l.byID[id]; !ok {
		return false
	}
	delete(l.byID, id)
	for i, v := range l.allIDs {
		if v == id {
			l.allIDs = append(l.allIDs[:i:i], l.allIDs[i+1:]...)
			break
		}
	}
	return true
}

// Move places id at index, shifting the others. The index is clamped to
// the list bounds.
func (l *List[K, T]) Move(id K, index int) error {
	from := -1
	for i, v := range l.allIDs {
		if v == id {
			from = i
			break
		}
	}
	if from < 0 {
		return &domain.NotFoundError{Collection: l.name, ID: fmt.Sprint(id)}
	}
	if index < 0 {
		index = 0
	}
	if index >= len(l.allIDs) {
		index = len(l.allIDs) - 1
	}
	if index == from {
		return nil
	}

	ids := make([]K, 0, len(l.allIDs))
	for i, v := range l.allIDs {
		if i != from {
			ids = append(ids, v)
		}
	}
	ids = append(ids[:index], append([]K{id}, ids[index:]...)...)
	l.allIDs = ids
	return nil
}

// GetAll returns the items in order.
func (l *List[K, T]) GetAll() ([]T, error) {
	out := make([]T, 0, len(l.allIDs))
	for _, id := range l.allIDs {
		v, ok := l.byID[id]
		if !ok {
			return nil, &domain.ConsistencyError{
				Collection: l.name,
				ID:         fmt.Sprint(id),
				Reason:     "ordered id missing from lookup",
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// Check verifies that allIDs and byID hold the same ids, once each.
func (l *List[K, T]) Check() error {
	seen := make(map[K]struct{}, len(l.allIDs))
	for _, id := range l.allIDs {
		if _, dup := seen[id]; dup {
			return &domain.ConsistencyError{Collection: l.name, ID: fmt.Sprint(id), Reason: "duplicate ordered id"}
		}
		if _, ok := l.byID[id]; !ok {
			return &domain.ConsistencyError{Collection: l.name, ID: fmt.Sprint(id), Reason: "ordered id missing from lookup"}
		}
		seen[id] = struct{}{}
	}
	if len(seen) != len(l.byID) {
		for id := range l.byID {
			if _, ok := seen[id]; !ok {
				return &domain.ConsistencyError{Collection: l.name, ID: fmt.Sprint(id), Reason: "lookup id missing from order"}
			}
		}
	}
	return nil
}

// Clone returns an independent copy. Items are copied by value.
func (l *List[K, T]) Clone() *List[K, T] {
	c := &List[K, T]{
		name:   l.name,
		byID:   make(map[K]T, len(l.byID)),
		allIDs: make([]K, len(l.allIDs)),
	}
	for k, v := range l.byID {
		c.byID[k] = v
	}
	copy(c.allIDs, l.allIDs)
	return c
}
