// Package config provides loading and environment overlay for the logger
// daemon's configuration. It exposes a Default() baseline, Load() for JSON or
// YAML files, and FromEnv() to overlay UMOD4_* environment variables.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/umod4.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
