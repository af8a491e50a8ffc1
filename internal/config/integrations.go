package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"repopush.dev/repopush/internal/errors"
	"repopush.dev/repopush/internal/github"
)

// Integration is a hosting service repopush can push to
type Integration struct {
	Host    string `yaml:"host"`
	BaseURL string `yaml:"base_url,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// Registry is the set of configured integrations
type Registry struct {
	Integrations []Integration `yaml:"integrations"`
}

// DefaultRegistry contains github.com without a token
func DefaultRegistry() *Registry {
	return &Registry{Integrations: []Integration{{Host: github.PublicHost}}}
}

// DefaultPath returns the registry location: $REPOPUSH_CONFIG if set,
// otherwise ~/.repopush/integrations.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("REPOPUSH_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".repopush", "integrations.yaml"), nil
}

// LoadRegistry reads the registry at path. A missing file yields the default registry.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRegistry(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i := range registry.Integrations {
		integration := &registry.Integrations[i]
		integration.Host = normalizeHost(integration.Host)
		if integration.Host == "" {
			return nil, fmt.Errorf("failed to parse %s: integration %d has no host", path, i+1)
		}
	}

	return &registry, nil
}

// Lookup returns the integration for host
func (r *Registry) Lookup(host string) (Integration, bool) {
	host = normalizeHost(host)
	for _, integration := range r.Integrations {
		if integration.Host == host {
			return integration, true
		}
	}
	return Integration{}, false
}

// normalizeHost accepts "github.com", "GitHub.com" or "https://github.com/"
func normalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return strings.TrimSuffix(host, "/")
}

// RedactedToken hides all but the last four characters of the token
func (i Integration) RedactedToken() string {
	if i.Token == "" {
		return ""
	}
	if len(i.Token) <= 4 {
		return "****"
	}
	return "****" + i.Token[len(i.Token)-4:]
}

// Resolved is everything needed to talk to the repository's API
type Resolved struct {
	Repo       github.RepoInfo
	BaseURL    string
	Credential github.Credential
}

// Resolve matches repoURL against the registry and picks a credential. A
// caller-supplied token wins and is sent as a plain token; otherwise the
// integration's configured token is sent as an OAuth token. All failures are
// *errors.ConfigError and happen before any network access.
func Resolve(repoURL string, registry *Registry, callerToken string) (*Resolved, error) {
	repo, err := github.ParseRemoteURL(repoURL)
	if err != nil {
		return nil, errors.NewConfigError("", err)
	}

	integration, ok := registry.Lookup(repo.Hostname)
	if !ok {
		return nil, errors.NewConfigError(repo.Hostname, errors.ErrNoIntegration)
	}

	var cred github.Credential
	switch {
	case callerToken != "":
		cred = github.Credential{Token: callerToken, Kind: github.TokenPlain}
	case integration.Token != "":
		cred = github.Credential{Token: integration.Token, Kind: github.TokenOAuth}
	default:
		return nil, errors.NewConfigError(repo.Hostname, errors.ErrNoToken)
	}

	baseURL := integration.BaseURL
	if baseURL == "" && repo.Hostname != github.PublicHost {
		baseURL = github.EnterpriseBaseURL(repo.Hostname)
	}

	return &Resolved{
		Repo:       *repo,
		BaseURL:    baseURL,
		Credential: cred,
	}, nil
}
