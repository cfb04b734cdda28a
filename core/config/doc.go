// Package config provides configuration management for the dialog collator.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections, one per package:
//   - Server: HTTP operations API (port, API key)
//   - Log: logging level, format and output
//   - Database: watcher and entity store connection and table names
//   - Redis: shared connection for the bus and the subscription registry
//   - Storage: MinIO/S3 document archive
//   - SIP: NOTIFY listener, server address, outbound proxy, registry backend
//   - Collator: provider name and parameters
//   - Cycle: check and collate passes
//   - SharedLine: shared-line polling and NOTIFY relay
//   - Bus: registration message bus (redis or kafka)
//   - Metrics: Prometheus endpoint
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cycle.CheckPeriodSeconds)
package config
