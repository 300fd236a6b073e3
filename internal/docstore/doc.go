// Package docstore defines the key-value repository used for every persisted
// record, and a typed whole-document view on top of it.
//
// # Storage Model
//
// Each record collection lives under one fixed string key as a single JSON
// document that is rewritten in full on every change. There is no partial
// update, no versioning and no migration. Readers tolerate:
//   - a missing key, read as the collection default
//   - a value that is not valid JSON, read as the default and logged
//
// # Backends
//
// Store is implemented by inmemorystore (ephemeral), badgerstore (embedded
// LSM store on disk) and sqlitestore (a single table in a SQLite file). Callers
// only see the Store interface so the backend can change without touching them.
package docstore
