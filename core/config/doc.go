// Package config provides configuration management for the record collection
// service.
//
// It uses Viper for loading configuration, lowest precedence first, from the
// `default` struct tags of every section, an optional config.yaml (or .json,
// .toml) file, an optional .env file (godotenv) and the environment. Every key
// is registered with a default so AutomaticEnv sees it. LoadConfig validates
// the transport kind, attribute kinds and directions before returning.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key, shutdown deadline
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials and bucket
//   - Log: logging level and format
//   - Collection: identity attribute, kinds, comparator, direction, locale
//   - Transport: none, http, storage or database
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Collection.Comparator)
package config
