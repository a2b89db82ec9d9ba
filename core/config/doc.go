// Package config provides configuration management for the attendance reconciler.
//
// It loads an optional .env file with godotenv and then reads environment
// variables through Viper. Defaults come from the `default` struct tags of each
// section, so every key is registered for AutomaticEnv.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP server settings (port, API key, upload limit)
//   - Storage: S3/MinIO credentials, bucket and the input and report prefixes
//   - Log: Logging level and format
//   - Database: MySQL connection for run history
//   - Reconcile: input folder, report path, worker count, pass timeout
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Reconcile.InputDir)
package config
