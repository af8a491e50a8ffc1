package actions

import (
	"fmt"

	"repopush.dev/repopush/internal/github"
	"repopush.dev/repopush/internal/output"
	"repopush.dev/repopush/internal/runtime"
)

// IntegrationsAction lists the configured integrations with their tokens redacted
func IntegrationsAction(ctx *runtime.Context) error {
	splog := ctx.Splog

	if len(ctx.Registry.Integrations) == 0 {
		splog.Info("No integrations configured.")
		return nil
	}

	for _, integration := range ctx.Registry.Integrations {
		baseURL := integration.BaseURL
		if baseURL == "" {
			if integration.Host == github.PublicHost {
				baseURL = "https://api.github.com/"
			} else {
				baseURL = github.EnterpriseBaseURL(integration.Host)
			}
		}
		token := integration.RedactedToken()
		if token == "" {
			token = output.ColorDim("(no token)")
		}
		splog.Info("%s", fmt.Sprintf("%-24s %-40s %s", integration.Host, baseURL, token))
	}

	return nil
}
