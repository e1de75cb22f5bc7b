// Package command defines the curvectl command line.
//
// Ledger commands (config, launch, addWl, removeWl, swap, simulate,
// withdraw, transferFee, migrate) share the -e/-r/-k flags and run
// through the service pipeline. quote, profile and version run locally;
// shell runs any of them line by line.
package command
