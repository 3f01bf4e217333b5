// Package database provides the Postgres persistence adapter.
//
// One table, one row per trading date: the daily aggregate is stored as
// JSONB columns keyed by date, written with an upsert so a cycle's save is
// a single statement.
package database
