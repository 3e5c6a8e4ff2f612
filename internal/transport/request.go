package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/logging"
)

// DecodeResponse decodes a JSON response into the target structure.
// Non-2xx statuses are reported as an APIError carrying the status code
// and response body, so callers can match 401/403 with errors.Is.
func DecodeResponse(platform string, resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Platform:   platform,
			StatusCode: resp.StatusCode,
			Endpoint:   endpointOf(resp),
			Message:    string(body),
		}
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}

func endpointOf(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.Path
}

// Drain discards and closes a response body so the connection can be reused.
func Drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
