// Package source defines the adapter interface every event source implements and
// runs a set of adapters in order.
//
// Adapters never fail the run: network and parse problems are logged where they
// happen and the adapter returns whatever it managed to collect, possibly nothing.
// Collect adds a second line of isolation by recovering panics and by enforcing an
// overall wall-clock budget across all adapters.
package source
