// Package ticketing is the secondary event source: the Ticketmaster Discovery API.
//
// The adapter pages through music and arts events for each configured city or zip
// code and maps them onto event records. It needs an API key (TM_API_KEY or the
// ticketmaster.api_key setting) and quietly contributes nothing without one.
package ticketing
