/*
Package log provides structured logging for the engine using zerolog.

Init configures the global Logger from a Config (level, JSON vs.
console output, destination writer). WithComponent and the other
With* helpers derive child loggers carrying a fixed field so call
sites don't repeat themselves:

	catalogLog := log.WithComponent("catalog")
	catalogLog.Debug().Int64("cid", cid).Msg("collection created")

	txnLog := log.WithTransaction(txn.ID().String())
	txnLog.Warn().Msg("rollback on ongoing transaction during scope close")

# Fields

  - WithComponent: tags the subsystem emitting the log line (catalog
    and shaper log through it)
  - WithDatabase: tags the vocbase a log line concerns
  - WithCollection: tags cid and collection name
  - WithTransaction: tags a transaction id

Package-level Info/Debug/Warn/Error/Errorf/Fatal log against the
global Logger directly, for call sites with no narrower context to
attach.
*/
package log
