// Package normalize cleans scraped text and derives identifiers and address parts from it.
//
// Clean unifies the many dash, bullet and space characters the listing page uses so the
// segmenter and extractor only ever see "-" as a separator and "*" as a bullet. Slug turns
// venue and artist names into bounded, collision-resistant identifier segments.
package normalize
