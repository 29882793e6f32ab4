// Package config defines sitecheck's configuration: defaults, the flat
// Config struct populated from CLI flags, validation, and the optional
// .sitecheck YAML override file.
package config
