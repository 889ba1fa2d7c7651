// Package scraper is the primary event source: it obtains the LiveNotesSB listing,
// segments it into units and extracts event records.
//
// The page comes from the first Provider that succeeds and yields units. Providers
// are a local input file, an HTTP Fetcher with connect and read timeouts and
// exponential backoff, and an optional headless Chromium Renderer for when the
// static HTML carries no listing. Every failure is logged and the adapter returns
// an empty result rather than an error.
package scraper
