package fakeapi

import (
	"sync"

	"github.com/jrsteele09/fintrack-client/cards"
	"github.com/jrsteele09/fintrack-client/categories"
	"github.com/jrsteele09/fintrack-client/transactions"
)

// table holds one kind of entity per user in insertion order
type table[T any] struct {
	lock  sync.RWMutex
	rows  map[string]map[string]T // user id -> entity id -> entity
	order map[string][]string
}

func newTable[T any]() *table[T] {
	return &table[T]{
		rows:  make(map[string]map[string]T),
		order: make(map[string][]string),
	}
}

func (t *table[T]) insert(userID, id string, v T) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.rows[userID] == nil {
		t.rows[userID] = make(map[string]T)
	}
	if _, exists := t.rows[userID][id]; !exists {
		t.order[userID] = append(t.order[userID], id)
	}
	t.rows[userID][id] = v
}

func (t *table[T]) get(userID, id string) (T, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	v, ok := t.rows[userID][id]
	return v, ok
}

// update applies fn to a copy of the row and stores it unless fn fails
func (t *table[T]) update(userID, id string, fn func(*T) error) (T, bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	v, ok := t.rows[userID][id]
	if !ok {
		return v, false, nil
	}
	if err := fn(&v); err != nil {
		return v, true, err
	}
	t.rows[userID][id] = v
	return v, true, nil
}

func (t *table[T]) remove(userID, id string) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.rows[userID][id]; !ok {
		return false
	}
	delete(t.rows[userID], id)
	ids := t.order[userID]
	for i, existing := range ids {
		if existing == id {
			t.order[userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list(userID string) []T {
	t.lock.RLock()
	defer t.lock.RUnlock()

	out := make([]T, 0, len(t.order[userID]))
	for _, id := range t.order[userID] {
		out = append(out, t.rows[userID][id])
	}
	return out
}

func (t *table[T]) dropUser(userID string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.rows, userID)
	delete(t.order, userID)
}

// ledger is the fake API's finance data, partitioned by owner
type ledger struct {
	transactions *table[transactions.Transaction]
	categories   *table[categories.Category]
	cards        *table[cards.Card]
}

func newLedger() *ledger {
	return &ledger{
		transactions: newTable[transactions.Transaction](),
		categories:   newTable[categories.Category](),
		cards:        newTable[cards.Card](),
	}
}

func (l *ledger) dropUser(userID string) {
	l.transactions.dropUser(userID)
	l.categories.dropUser(userID)
	l.cards.dropUser(userID)
}
