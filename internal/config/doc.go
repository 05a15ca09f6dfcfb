// Package config loads and validates the chainfeed daemon configuration.
//
// Configuration is a YAML file with ${VAR} environment variable expansion,
// so secrets like the database password stay out of the file itself.
package config
