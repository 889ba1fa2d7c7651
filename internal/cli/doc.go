// Package cli implements the command-line interface for svb-events.
//
// The root command runs one feed build: it scrapes the listing page, queries the
// ticketing API, merges the results into the previous output and writes the feed.
// The schedule subcommand repeats the build on a cron schedule until interrupted.
//
// Exit codes: 0 on success, 1 on error, 2 when no source produced an event and
// --allow-empty was not given.
package cli
