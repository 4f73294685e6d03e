// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they work identically
// against a *sql.DB or an open *sql.Tx; WithTx rebinds a store to a
// caller-managed transaction.
//
// Database errors are translated through MapError into the sentinel
// errors defined in the store package so callers never depend on
// driver-specific error types.
package postgres
