// Package config defines OnionWatch configuration: defaults, the YAML
// config file, seed and keyword list loading, and validation.
package config
