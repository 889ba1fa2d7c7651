// Package config loads the YAML run configuration.
//
// Every setting has a default, so an empty path or a missing file is a valid
// configuration. Values read from the file overlay DefaultConfig, Normalize fills
// zero values back in, and Validate rejects settings the pipeline cannot honor.
// The TM_API_KEY environment variable overrides ticketmaster.api_key.
package config
