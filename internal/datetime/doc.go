// Package datetime resolves the natural-language dates and times found on the
// listing page into concrete timestamps.
//
// Day headers carry a month and day but no year; ResolveDate infers the year from
// "today" with a small backward grace window. Time text such as "5-8 pm" or
// "9 pm-1 am" is parsed by ParseTimeRange and combined with a date by Compose, which
// applies meridiem inheritance, midnight rollover and the default event duration.
//
// All timestamps carry a fixed UTC offset for the Santa Barbara region: -07:00 from
// March through November and -08:00 otherwise.
package datetime
