// Package txn implements the engine's MVCC transaction core: a
// transaction status machine, sub-transactions that share their
// parent's id and database but track status independently, and a
// goroutine-local scope stack standing in for a thread-local
// transaction stack.
package txn

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/latticedb/lattice/pkg/events"
	"github.com/latticedb/lattice/pkg/trierr"
)

// Status is a transaction's lifecycle state.
type Status int

const (
	Ongoing Status = iota
	Committed
	RolledBack
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Transaction is one MVCC transaction. A sub-transaction shares its
// parent's ID and Database but owns an independent status: committing
// or rolling back a sub-transaction never touches the parent's state.
type Transaction struct {
	mu     sync.Mutex
	id     uuid.UUID
	database string
	status Status
	parent *Transaction
	manager *Manager
}

// ID returns the transaction's identifier. Sub-transactions return
// their parent's id.
func (t *Transaction) ID() uuid.UUID { return t.id }

// Database returns the vocbase name the transaction runs against.
func (t *Transaction) Database() string { return t.database }

// Status returns the transaction's current lifecycle state.
func (t *Transaction) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Parent returns the parent transaction, or nil for a top-level one.
func (t *Transaction) Parent() *Transaction { return t.parent }

// Commit transitions the transaction from Ongoing to Committed. It is
// a programming error to commit a transaction that is not Ongoing.
func (t *Transaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != Ongoing {
		trierr.Set(trierr.TransactionInternal)
		return trierr.AsError(trierr.TransactionInternal)
	}

	t.status = Committed
	t.manager.unregister(t)
	if t.parent == nil {
		t.manager.publish(events.TransactionCommitted, t, "transaction committed")
	}
	return nil
}

// Rollback transitions the transaction from Ongoing to RolledBack. It
// is a programming error to roll back a transaction that is not
// Ongoing.
func (t *Transaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != Ongoing {
		trierr.Set(trierr.TransactionInternal)
		return trierr.AsError(trierr.TransactionInternal)
	}

	t.status = RolledBack
	t.manager.unregister(t)
	if t.parent == nil {
		t.manager.publish(events.TransactionRolledBack, t, "transaction rolled back")
	}
	return nil
}

// BeginSub starts a sub-transaction sharing this transaction's id and
// database. A sub-transaction's own commit/rollback never changes the
// parent's status; only the parent's own Commit/Rollback does that.
func (t *Transaction) BeginSub() *Transaction {
	return &Transaction{
		id:       t.id,
		database: t.database,
		status:   Ongoing,
		parent:   t,
		manager:  t.manager,
	}
}

// Manager tracks the set of currently-registered ongoing transactions
// for a vocbase, assigning fresh ids to top-level transactions.
type Manager struct {
	// Events, when non-nil, receives a published event on every
	// top-level transaction commit/rollback. Wiring one in is
	// optional; the zero value publishes nothing.
	Events *events.Broker

	mu      sync.Mutex
	active  map[uuid.UUID]*Transaction
	started int64
}

// NewManager constructs an empty transaction manager.
func NewManager() *Manager {
	return &Manager{active: make(map[uuid.UUID]*Transaction)}
}

func (m *Manager) publish(evType events.EventType, t *Transaction, msg string) {
	if m.Events == nil {
		return
	}
	m.Events.Publish(&events.Event{
		Type:    evType,
		Message: msg,
		Metadata: map[string]string{
			"txn_id":   t.id.String(),
			"database": t.database,
		},
	})
}

// Begin starts a new top-level transaction against database.
func (m *Manager) Begin(database string) *Transaction {
	atomic.AddInt64(&m.started, 1)

	t := &Transaction{
		id:       uuid.New(),
		database: database,
		status:   Ongoing,
		manager:  m,
	}

	m.mu.Lock()
	m.active[t.id] = t
	m.mu.Unlock()

	return t
}

func (m *Manager) unregister(t *Transaction) {
	if t.parent != nil {
		return // sub-transactions are never individually registered
	}
	m.mu.Lock()
	delete(m.active, t.id)
	m.mu.Unlock()
}

// ActiveCount returns the number of top-level transactions currently
// Ongoing.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Lookup returns the active top-level transaction with the given id.
func (m *Manager) Lookup(id uuid.UUID) (*Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.active[id]
	return t, ok
}
