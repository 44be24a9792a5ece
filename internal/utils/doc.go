// Package utils holds the configuration and logging plumbing shared by the scssmigrate commands.
//
// ConfigurationLoader layers the embedded defaults, an optional config.yaml and
// SCSSMIGRATE_* environment variables through Viper. LoggerFactory builds the zap
// logger used by every step of a migration run.
package utils
