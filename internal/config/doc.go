// Package config provides YAML configuration loading and validation for the
// audio bridge. Every value has a default so the binary runs without a file.
package config
