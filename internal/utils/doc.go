// Package utils exposes ambient helpers shared by story_branch commands.
//
// ConfigurationLoader reads the application configuration (log level and
// format) through Viper, and LoggerFactory turns those settings into zap
// loggers.
package utils
