// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, expression
// evaluation and translation of the decoded blocks into the
// format-agnostic config.Model.
//
// # Blocks
//
//	grid { size = 8 }
//	sequence {
//	  holds = ["1800ms", "1800ms", "1600ms"]
//	  level = "zone"
//	}
//	aggregation "zone" { indices = [6, 11, 33] }
//	storage { driver = "badger"  path = "data/badger" }
//	server  { listen = ":8080" }
//
// Every block and attribute is optional; absent values keep their defaults.
// Later files override earlier ones block by block.
//
// # Expressions
//
// Expressions may reference the process environment through the `env`
// object and call the functions upper, lower, coalesce, min, max, try and
// can:
//
//	server { listen = try(env.EDNA_LISTEN, ":8080") }
package hcl
