// Package hwdb provides the hardware database: a read-only mapping from
// bus/vendor/product identifiers to known physical type, capability
// overrides, and the grouping rule that associates sibling kernel nodes
// of one physical unit.
//
// The database is layered. A lookup walks, in order:
//
//  1. the exact (bus, vendor, product) triple
//  2. the (vendor, product) pair, ignoring bus
//  3. the bus-only default
//
// and reports the first hit; a miss is not an error, the caller
// degrades to heuristics.
//
// The built-in table ships in builtin.go. Deployments extend it with
// YAML override fragments (LoadDir) merged over the built-ins at load
// time — on a key collision the override always wins. The merged table
// can also be compiled into a SQLite artifact (Compile) and loaded back
// (LoadStore) so field installations ship one binary file instead of a
// fragment directory.
//
// After New the database is immutable: lookups take no locks and are
// safe from any number of goroutines.
package hwdb
