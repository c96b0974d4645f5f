// Package config loads and validates the padimg.json configuration.
//
// Resolution order: built-in defaults, then the configuration file,
// then PADIMG_* environment variables (used mainly to keep storage
// credentials out of the file). The resulting Config is immutable for
// the lifetime of the process.
package config
