// Package confloader loads configuration from layered sources.
//
// It wraps koanf so that the CLI can merge a YAML file, .env files,
// environment variables and explicitly set flags into one typed struct.
//
// Priority (highest to lowest):
//
//  1. Overrides (repeated --set section.key=value flags, see WithOverrides)
//  2. Environment variables, including those read from .env files
//  3. Configuration file
//  4. Default values
package confloader
