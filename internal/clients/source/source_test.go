package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayops/fleetbridge/pkg/inventory"
)

func TestDevicesPaginates(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("x-api-key"))
		skip := r.URL.Query().Get("skip")

		w.Header().Set("Content-Type", "application/json")
		switch skip {
		case "0":
			devices := make([]map[string]string, 100)
			for i := range devices {
				devices[i] = map[string]string{"id": fmt.Sprintf("dev-%d", i)}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": devices})
		case "100":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"id": "dev-100"}}})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	devices, err := client.Devices(context.Background())
	require.NoError(t, err)

	assert.Len(t, devices, 101)
	assert.Equal(t, "dev-0", devices[0].ID)
	assert.Equal(t, "dev-100", devices[100].ID)
	for _, key := range keys {
		assert.Equal(t, "secret", key)
	}
}

func TestDevicesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	_, err := client.Devices(context.Background())
	require.Error(t, err)
}

func TestCountersSkipsUnknownAndSurvivesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/devices/v1/printers/ok-1/counters":
			_, _ = w.Write([]byte(`[{"type":"general","totalCount":1234}]`))
		case "/devices/v1/printers/flaky/counters":
			w.WriteHeader(http.StatusBadGateway)
		case "/devices/v1/printers/wrapped/counters":
			_, _ = w.Write([]byte(`{"counters":[{"type":"general","count":55}]}`))
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	devices := []inventory.Device{
		{ID: "ok-1", Type: "laser"},
		{ID: "skipped", Type: "Unknown"},
		{ID: "", Type: "laser"},
		{ID: "flaky", Type: "laser"},
		{ID: "wrapped", Type: "laser"},
	}

	client := New(server.URL, "secret")
	sets, err := client.Counters(context.Background(), devices)
	require.NoError(t, err)

	require.Len(t, sets, 2)
	assert.Equal(t, "ok-1", sets[0].DeviceID)
	total, ok := sets[0].Counters[0].Total()
	require.True(t, ok)
	assert.Equal(t, int64(1234), total)

	assert.Equal(t, "wrapped", sets[1].DeviceID)
	total, ok = sets[1].Counters[0].Total()
	require.True(t, ok)
	assert.Equal(t, int64(55), total)
}

func TestSupplies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/devices/v1/printers/p1/current-supplies", r.URL.Path)
		_, _ = w.Write([]byte(`[[{"type":"Toner","color":"Black","level":{"description":"90%"}}]]`))
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	sets, err := client.Supplies(context.Background(), []inventory.Device{{ID: "p1", Type: "laser"}})
	require.NoError(t, err)

	require.Len(t, sets, 1)
	require.Len(t, sets[0].Supplies, 1)
	assert.Equal(t, "Toner", sets[0].Supplies[0][0].Type)
	assert.Equal(t, "90%", sets[0].Supplies[0][0].Level.Description.String())
}
