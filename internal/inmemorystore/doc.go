// Package inmemorystore provides a thread-safe, in-memory implementation
// of the docstore.Store interface. It is suitable for development, testing,
// or any run where records do not need to outlive the process.
package inmemorystore
