// Package cli constructs the scssmigrate command-line interface. It wires the
// migration command to the Viper configuration loader, which merges the embedded
// migration plan with user configuration files and SCSSMIGRATE_* environment
// variables, and to the zap logger factory.
package cli
