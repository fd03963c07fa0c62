package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartbin-backend/internal/fill"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLatestComputesPercentages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"bin1": {"height": 23, "weight": 2500},
			"bin2": {"height": 11, "weight": 5000},
			"bin3": {"height": 35, "weight": 0}
		}`))
	}))
	defer server.Close()

	client := NewDeviceClientWithURL(server.URL, fill.DefaultCalibration())
	data, err := client.FetchLatest()
	require.NoError(t, err)

	assert.Equal(t, BinData{Weight: 50, Height: 50, Average: 50}, data.Bins["bin1"])
	assert.Equal(t, BinData{Weight: 100, Height: 100, Average: 100}, data.Bins["bin2"])
	assert.Equal(t, BinData{Weight: 0, Height: 0, Average: 0}, data.Bins["bin3"])
	assert.NotEmpty(t, data.Timestamp)
	assert.Equal(t, [2]float64{23, 2500}, data.Raw["bin1"])
}

func TestFetchLatestMissingFieldsReadAsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bin1": {}}`))
	}))
	defer server.Close()

	client := NewDeviceClientWithURL(server.URL, fill.DefaultCalibration())
	data, err := client.FetchLatest()
	require.NoError(t, err)
	assert.Equal(t, BinData{}, data.Bins["bin1"])
}

func TestFetchLatestDeviceOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewDeviceClientWithURL(server.URL, fill.DefaultCalibration())
	_, err := client.FetchLatest()
	assert.True(t, errors.Is(err, ErrDeviceOffline))
}

func TestFetchLatestUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewDeviceClientWithURL(server.URL, fill.DefaultCalibration())
	_, err := client.FetchLatest()
	assert.True(t, errors.Is(err, ErrDeviceOffline))
}

func TestFetchLatestParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewDeviceClientWithURL(server.URL, fill.DefaultCalibration())
	_, err := client.FetchLatest()
	assert.True(t, errors.Is(err, ErrBadPayload))
}

func TestFetchLatestEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewDeviceClientWithURL(server.URL, fill.DefaultCalibration())
	_, err := client.FetchLatest()
	assert.True(t, errors.Is(err, ErrNoData))
}
