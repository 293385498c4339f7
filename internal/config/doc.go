// ABOUTME: Package documentation for configuration loading
// ABOUTME: Describes the YAML format and environment variable expansion

// Package config loads the gateway configuration from a YAML file.
//
// Values of the form ${VAR_NAME} anywhere in the file are expanded from
// the environment before parsing; unset variables expand to the empty
// string. Missing sections fall back to the development defaults from
// Default, and Load rejects configurations that fail Validate.
package config
