// Package storage reads and writes the events output document.
//
// Output is always written in the wrapped form {"generated": ..., "events": [...]}
// through a temporary file and rename, so readers never see a half-written file.
// On input a bare array of records is accepted too, and legacy rows that carry only
// a "generated" key are dropped. A missing output file reads as no events.
package storage
