// Package config handles loading and validating Bookshelf configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Reading a dotenv file into the process environment
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The JWT secret and admin password should be set via environment variables
//   - The dotenv file never overrides variables already present in the environment
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
