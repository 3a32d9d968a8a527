/*
Package events provides an in-memory pub/sub broker for catalog and
transaction state changes.

A Broker decouples the catalog and transaction manager from anything
that wants to observe their state changes — a CLI --watch command, an
audit log, a metrics subscriber — without those components importing
each other.

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)
	go func() {
		for ev := range sub {
			fmt.Printf("[%s] %s: %s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Message)
		}
	}()

Publish is non-blocking: a full subscriber buffer drops the event
rather than stalling the publisher, so a slow subscriber never slows
down a collection create or a transaction commit.

A Vocbase or txn.Manager with a nil Events field publishes nothing —
wiring a Broker in is opt-in, done by the embedding application.
*/
package events
