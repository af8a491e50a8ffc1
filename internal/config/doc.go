// Package config manages the registry of hosting-service integrations.
//
// It handles:
//   - Loading the integration registry from YAML
//   - Resolving a repository URL to an API base URL and a credential
package config
