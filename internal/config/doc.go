// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface implemented by concrete
// formats.
//
// The `config.Model` is the single source of truth for the sequencer, the
// storage backend and the HTTP server. Concrete loaders, such as the one for
// HCL, are provided in separate packages.
package config
