// Package buildinfo exposes the version, commit and build time of the
// curvectl binary for the version command and the --version flag.
package buildinfo
