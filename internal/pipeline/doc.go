// Package pipeline drives one complete feed build.
//
// A run collects records from every source adapter under a shared time budget,
// folds them into the previous output, filters the result and writes it
// atomically. Mirrors, the iCalendar export and the metrics textfile follow the
// primary write and never fail the run.
//
// FromConfig assembles Options from a loaded configuration; tests usually build
// Options directly with fake adapters.
package pipeline
