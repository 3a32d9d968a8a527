package txn

import (
	"sync"

	"github.com/latticedb/lattice/internal/gid"
)

// threadStacks models TransactionScope.h's thread_local vector of
// started top-level transactions: one stack per goroutine, keyed by
// the goroutine id extracted via internal/gid since Go has no native
// thread-local storage.
var (
	threadStacksMu sync.Mutex
	threadStacks   = map[uint64][]*Transaction{}
)

func pushThreadStack(t *Transaction) {
	threadStacksMu.Lock()
	defer threadStacksMu.Unlock()
	key := gid.Current()
	threadStacks[key] = append(threadStacks[key], t)
}

func popThreadStack(t *Transaction) {
	threadStacksMu.Lock()
	defer threadStacksMu.Unlock()
	key := gid.Current()
	stack := threadStacks[key]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == t {
			threadStacks[key] = append(stack[:i], stack[i+1:]...)
			return
		}
	}
}

func topOfThreadStack() *Transaction {
	threadStacksMu.Lock()
	defer threadStacksMu.Unlock()
	stack := threadStacks[gid.Current()]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// Scope joins an already-running transaction on the calling
// goroutine's stack, or starts a new one, automatically freeing it
// when the scope is left. Mirrors TransactionScope: Commit is a no-op
// when the scope re-used an outer transaction, and Close rolls back
// an owned, still-Ongoing transaction (the original's destructor
// behavior).
type Scope struct {
	manager     *Manager
	transaction *Transaction
	isOur       bool
	pushed      bool
}

// NewScope joins the calling goroutine's current transaction if
// allowNesting is true and one is active; otherwise it starts a new
// top-level transaction and pushes it onto the goroutine's stack.
func NewScope(manager *Manager, database string, allowNesting bool) *Scope {
	if allowNesting {
		if existing := topOfThreadStack(); existing != nil && existing.Status() == Ongoing {
			return &Scope{manager: manager, transaction: existing, isOur: false}
		}
	}

	t := manager.Begin(database)
	pushThreadStack(t)
	return &Scope{manager: manager, transaction: t, isOur: true, pushed: true}
}

// Transaction returns the scope's transaction, owned or borrowed.
func (s *Scope) Transaction() *Transaction { return s.transaction }

// Commit commits the scope's transaction if the scope started it;
// joining an outer scope's transaction makes Commit a no-op, since
// only the owning scope may finalize it.
func (s *Scope) Commit() error {
	if !s.isOur {
		return nil
	}
	return s.transaction.Commit()
}

// Close ends the scope. If the scope owns its transaction, Close pops
// it from the goroutine's stack and, if it is still Ongoing (Commit
// was never called), rolls it back.
func (s *Scope) Close() {
	if !s.isOur {
		return
	}
	if s.pushed {
		popThreadStack(s.transaction)
	}
	if s.transaction.Status() == Ongoing {
		_ = s.transaction.Rollback()
	}
}
