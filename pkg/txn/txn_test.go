package txn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/pkg/events"
)

func TestCommitTransitionsStatus(t *testing.T) {
	m := NewManager()
	tx := m.Begin("db")
	require.Equal(t, Ongoing, tx.Status())
	require.NoError(t, tx.Commit())
	require.Equal(t, Committed, tx.Status())
	require.Equal(t, 0, m.ActiveCount())
}

func TestDoubleCommitIsIllegalState(t *testing.T) {
	m := NewManager()
	tx := m.Begin("db")
	require.NoError(t, tx.Commit())
	err := tx.Commit()
	require.Error(t, err)
}

func TestRollbackAfterCommitIsIllegalState(t *testing.T) {
	m := NewManager()
	tx := m.Begin("db")
	require.NoError(t, tx.Commit())
	err := tx.Rollback()
	require.Error(t, err)
}

// TestSubTransactionIndependentFromParent verifies
// rolling back a sub-transaction leaves its parent Ongoing and
// committable.
func TestSubTransactionIndependentFromParent(t *testing.T) {
	m := NewManager()
	parent := m.Begin("db")
	sub := parent.BeginSub()

	require.Equal(t, parent.ID(), sub.ID())
	require.Equal(t, parent.Database(), sub.Database())

	require.NoError(t, sub.Rollback())
	require.Equal(t, RolledBack, sub.Status())
	require.Equal(t, Ongoing, parent.Status())

	require.NoError(t, parent.Commit())
	require.Equal(t, Committed, parent.Status())
}

// TestScopeJoinsOuterTransaction verifies a nested
// scope with allowNesting=true reuses the outer transaction, and only
// the outer scope's Commit actually finalizes it.
func TestScopeJoinsOuterTransaction(t *testing.T) {
	m := NewManager()

	outer := NewScope(m, "db", true)
	defer outer.Close()

	inner := NewScope(m, "db", true)
	require.Equal(t, outer.Transaction(), inner.Transaction())

	require.NoError(t, inner.Commit())
	require.Equal(t, Ongoing, outer.Transaction().Status(), "inner commit on a borrowed transaction must be a no-op")
	inner.Close()
	require.Equal(t, Ongoing, outer.Transaction().Status(), "closing a borrowed scope must not roll back the shared transaction")

	require.NoError(t, outer.Commit())
	require.Equal(t, Committed, outer.Transaction().Status())
}

func TestScopeRollsBackOwnedOngoingTransactionOnClose(t *testing.T) {
	m := NewManager()

	scope := NewScope(m, "db", true)
	tx := scope.Transaction()
	scope.Close()

	require.Equal(t, RolledBack, tx.Status())
}

func TestScopeWithoutNestingAlwaysStartsNew(t *testing.T) {
	m := NewManager()

	outer := NewScope(m, "db", true)
	defer outer.Close()

	inner := NewScope(m, "db", false)
	defer inner.Close()

	require.NotEqual(t, outer.Transaction().ID(), inner.Transaction().ID())
}

func TestCommitPublishesEventWhenBrokerWired(t *testing.T) {
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	m := NewManager()
	m.Events = broker

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	tx := m.Begin("db")
	require.NoError(t, tx.Commit())

	ev := <-sub
	require.Equal(t, events.TransactionCommitted, ev.Type)
}

func TestSubTransactionCommitDoesNotPublish(t *testing.T) {
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	m := NewManager()
	m.Events = broker

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	parent := m.Begin("db")
	child := parent.BeginSub()
	require.NoError(t, child.Commit())
	require.NoError(t, parent.Commit())

	ev := <-sub
	require.Equal(t, events.TransactionCommitted, ev.Type, "only the parent's own commit publishes")
}
