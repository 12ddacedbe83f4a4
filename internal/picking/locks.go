package picking

import (
	"sync"

	"github.com/google/uuid"
)

// OrderLocks serializes writers per order. Different orders never contend.
// Entries are dropped once no goroutine holds or waits for them.
type OrderLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func NewOrderLocks() *OrderLocks {
	return &OrderLocks{locks: make(map[uuid.UUID]*orderLock)}
}

// Lock blocks until the caller is the only writer for orderID and returns
// the matching unlock func.
func (l *OrderLocks) Lock(orderID uuid.UUID) (unlock func()) {
	l.mu.Lock()
	ol, ok := l.locks[orderID]
	if !ok {
		ol = &orderLock{}
		l.locks[orderID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ol.mu.Unlock()
			l.mu.Lock()
			ol.refs--
			if ol.refs == 0 {
				delete(l.locks, orderID)
			}
			l.mu.Unlock()
		})
	}
}

// Len reports how many orders currently have a holder or waiter.
func (l *OrderLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
