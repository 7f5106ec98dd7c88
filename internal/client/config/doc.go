// Package config loads runtime configuration for the Medi Mate CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags -a, -t and -d.
//
// JSON example:
//
//	{
//	  "server_base_url": "http://127.0.0.1:5000",
//	  "request_timeout": "10m",
//	  "download_dir": "downloads"
//	}
package config
