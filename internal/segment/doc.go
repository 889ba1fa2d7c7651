// Package segment splits a listing page into candidate per-event text units.
//
// The listing layout changes often, so Segment runs an ordered cascade of strategies
// and keeps the first one that yields anything:
//
//  1. selector: calendar-widget markup, one unit per event card
//  2. header: day-header lines followed by bulleted or dash-separated event lines
//  3. delimiter: the page text split on bullet markers, when it has no day headers
//  4. heuristic: any block holding both a date and a time
//
// Units that are too short, boilerplate or region headers are dropped before they
// reach the extractor. Every strategy's output goes to the configured trace sink.
package segment
