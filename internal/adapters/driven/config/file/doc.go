// Package file provides the TOML file implementation of driven.ConfigStore.
//
// Nested tables are flattened to dot-notation keys on load ("source.url") and
// nested again on save. Watch reloads the store when the file changes.
package file
