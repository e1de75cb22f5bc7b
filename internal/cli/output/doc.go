// Package output renders command results on stdout.
//
//   - formatter.go: Formatter interface, format parsing and factory
//   - table.go: aligned key/value and list tables
//   - json.go: indented JSON
//   - yaml.go: YAML via gopkg.in/yaml.v3
package output
