// Package config loads and validates homesignal configuration.
//
// Configuration comes from a YAML file with hardcoded defaults underneath
// and HOMESIGNAL_* environment variables on top. Secrets (broker password,
// metrics token) should always come from the environment.
//
//	cfg, err := config.Load("configs/config.yaml")
package config
