// Package config loads catalogctl settings from a TOML file and CATALOG_*
// environment variables.
package config
