// Package target talks to the asset-management platform: login, the
// customer and equipment registries, and the equipment create/update calls
// the dispatcher drives.
package target

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/relayops/fleetbridge/internal/transport"
	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/logging"
	"github.com/relayops/fleetbridge/pkg/payload"
	"github.com/relayops/fleetbridge/pkg/token"
)

// TokenSource supplies the access token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the target platform API.
type Client struct {
	base   string
	tokens TokenSource
	http   *transport.Client

	mu      sync.Mutex
	current string
}

// New creates a target client. Calls go out with the bearer token the
// source hands back at request time, so mid-run refreshes are picked up.
func New(baseURL string, tokens TokenSource) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		tokens: tokens,
	}
	c.http = transport.New(&transport.BearerAuth{Token: c.currentToken}).
		WithTimeout(constants.DispatchHTTPTimeout)
	return c
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Client) refreshCurrent(ctx context.Context) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.current = tok
	c.mu.Unlock()
	return nil
}

// Login authenticates with the platform API key pair and returns the issued
// credential. Used as the login call behind the token manager.
func Login(ctx context.Context, baseURL, apiKey, apiToken string) (token.Credential, error) {
	client := transport.New(&transport.QueryAuth{Params: map[string]string{
		"apiKey":   apiKey,
		"apiToken": apiToken,
	}}).WithTimeout(constants.LoginHTTPTimeout)

	resp, err := client.Get(ctx, strings.TrimRight(baseURL, "/")+"/login/")
	if err != nil {
		return token.Credential{}, err
	}

	var body struct {
		Result struct {
			Authenticated bool   `json:"authenticated"`
			AccessToken   string `json:"accessToken"`
			Expiration    string `json:"expiration"`
		} `json:"result"`
	}
	if err := transport.DecodeResponse("target", resp, &body); err != nil {
		return token.Credential{}, err
	}
	if !body.Result.Authenticated || body.Result.AccessToken == "" {
		return token.Credential{}, &errors.AuthenticationError{
			Platform: "target",
			Message:  "login rejected the API key pair",
		}
	}

	return token.Credential{
		AccessToken: body.Result.AccessToken,
		ExpiresAt:   token.ParseExpiration(body.Result.Expiration),
	}, nil
}

// Customers pages through the customer registry.
func (c *Client) Customers(ctx context.Context) ([]inventory.TargetCustomer, error) {
	var all []inventory.TargetCustomer
	err := c.paginate(ctx, "/customers/", func(page json.RawMessage) (int, error) {
		var items []inventory.TargetCustomer
		if err := json.Unmarshal(page, &items); err != nil {
			return 0, err
		}
		all = append(all, items...)
		return len(items), nil
	})
	if err != nil {
		return nil, err
	}
	logging.Info().Int("customers", len(all)).Msg("Collected customer registry")
	return all, nil
}

// Equipment pages through the equipment registry.
func (c *Client) Equipment(ctx context.Context) ([]inventory.TargetEquipment, error) {
	var all []inventory.TargetEquipment
	err := c.paginate(ctx, "/equipments/", func(page json.RawMessage) (int, error) {
		var items []inventory.TargetEquipment
		if err := json.Unmarshal(page, &items); err != nil {
			return 0, err
		}
		all = append(all, items...)
		return len(items), nil
	})
	if err != nil {
		return nil, err
	}
	logging.Info().Int("equipment", len(all)).Msg("Collected equipment registry")
	return all, nil
}

// CreateEquipment registers a new equipment record.
func (c *Client) CreateEquipment(ctx context.Context, item payload.Create) error {
	if err := c.refreshCurrent(ctx); err != nil {
		return err
	}
	resp, err := c.http.Post(ctx, c.base+"/equipments/", item)
	if err != nil {
		return err
	}
	return transport.DecodeResponse("target", resp, nil)
}

// UpdateEquipment applies an update's patch list to an existing record.
// The platform expects the bare patch array as the request body.
func (c *Client) UpdateEquipment(ctx context.Context, item payload.Update) error {
	if err := c.refreshCurrent(ctx); err != nil {
		return err
	}
	resp, err := c.http.Patch(ctx, fmt.Sprintf("%s/equipments/%d", c.base, item.ID), item.Patch)
	if err != nil {
		return err
	}
	return transport.DecodeResponse("target", resp, nil)
}

// paginate walks a paged listing endpoint until it returns a short page.
// Entity lists arrive under result.entityList, with a bare entityList
// fallback some endpoints use.
func (c *Client) paginate(ctx context.Context, path string, consume func(json.RawMessage) (int, error)) error {
	for page := 1; page <= constants.MaxPages; page++ {
		if err := c.refreshCurrent(ctx); err != nil {
			return err
		}

		u := fmt.Sprintf("%s%s?paramFilter=&page=%d&pageSize=%d&order=0",
			c.base, path, page, constants.DefaultPageSize)
		resp, err := c.http.Get(ctx, u)
		if err != nil {
			return err
		}

		var body struct {
			Result struct {
				EntityList json.RawMessage `json:"entityList"`
			} `json:"result"`
			EntityList json.RawMessage `json:"entityList"`
		}
		if err := transport.DecodeResponse("target", resp, &body); err != nil {
			return err
		}

		list := body.Result.EntityList
		if len(list) == 0 {
			list = body.EntityList
		}
		if len(list) == 0 || string(list) == "null" {
			return nil
		}

		n, err := consume(list)
		if err != nil {
			return errors.WrapParse("json", u, err)
		}
		if n < constants.DefaultPageSize {
			return nil
		}
	}
	return nil
}
