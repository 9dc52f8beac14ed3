// Package config loads runtime configuration for the ChronoKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   data directory for the local database
//	-a string   base URL of the remote event API
//	-n string   base URL of the assistant service
//	-i int      online status check interval (seconds)
//	-t int      remote call timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "data_dir": ".",
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "assistant_endpoint_addr": "http://127.0.0.1:8090",
//	  "online_check_interval": "3s",
//	  "remote_timeout": "5s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
