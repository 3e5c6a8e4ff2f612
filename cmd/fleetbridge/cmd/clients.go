package cmd

import (
	"context"

	"github.com/relayops/fleetbridge/internal/clients/source"
	"github.com/relayops/fleetbridge/internal/clients/target"
	"github.com/relayops/fleetbridge/internal/config"
	"github.com/relayops/fleetbridge/pkg/status"
	"github.com/relayops/fleetbridge/pkg/token"
)

// newSourceClient builds the telemetry platform client from configuration.
func newSourceClient() (*source.Client, error) {
	baseURL, err := config.Require(config.KeySourceAPIURL)
	if err != nil {
		return nil, err
	}
	apiKey, err := config.Require(config.KeySourceAPIKey)
	if err != nil {
		return nil, err
	}
	return source.New(baseURL, apiKey), nil
}

// newTokenManager builds the target token manager from configuration.
func newTokenManager() (*token.Manager, error) {
	baseURL, err := config.Require(config.KeyTargetAPIURL)
	if err != nil {
		return nil, err
	}
	apiKey, err := config.Require(config.KeyTargetAPIKey)
	if err != nil {
		return nil, err
	}
	apiToken, err := config.Require(config.KeyTargetAPIToken)
	if err != nil {
		return nil, err
	}

	login := func(ctx context.Context) (token.Credential, error) {
		return target.Login(ctx, baseURL, apiKey, apiToken)
	}
	return token.NewManager(config.TokenCachePath(), login), nil
}

// newTargetClient builds the asset-management platform client from
// configuration, with its token manager.
func newTargetClient() (*target.Client, *token.Manager, error) {
	baseURL, err := config.Require(config.KeyTargetAPIURL)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := newTokenManager()
	if err != nil {
		return nil, nil, err
	}
	return target.New(baseURL, tokens), tokens, nil
}

// statusStore returns the shared run status store.
func statusStore() *status.Store {
	return status.NewStore(config.StatusPath())
}
