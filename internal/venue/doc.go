// Package venue provides the static venue directory used to enrich scraped listings
// with a street address, city and zip.
//
// The directory is ordered: lookups that fall back to substring matching return the
// first entry that matches, so results stay stable from run to run. A Directory never
// fails a lookup; unknown venues resolve to a town keyword default or to the regional
// default of Santa Barbara, 93101.
package venue
