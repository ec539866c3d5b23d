package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymaster/eld-planner/internal/geocode"
	"github.com/draymaster/eld-planner/pkg/logger"
)

func TestReverseGeocode_PrimaryProviderSucceeds(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":{"city":"Springfield","county":"Greene"}}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("fallback provider should not be called when the primary succeeds")
	}))
	defer fallback.Close()

	client := geocode.New(geocode.Config{BaseURL: primary.URL, FallbackBaseURL: fallback.URL}, logger.Default())

	result, err := client.ReverseGeocode(context.Background(), 37.2, -93.3)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", result.Name)
	assert.Equal(t, "maps.co", result.Provider)
	assert.Equal(t, 37.2, result.Lat)
	assert.Equal(t, -93.3, result.Lon)
}

func TestReverseGeocode_FallsBackWhenPrimaryUnreachable(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":{"town":"Ozark"}}`))
	}))
	defer fallback.Close()

	client := geocode.New(geocode.Config{BaseURL: "http://127.0.0.1:0", FallbackBaseURL: fallback.URL}, logger.Default())

	result, err := client.ReverseGeocode(context.Background(), 37.0, -93.2)
	require.NoError(t, err)
	assert.Equal(t, "Ozark", result.Name)
	assert.Equal(t, "nominatim", result.Provider)
}

func TestReverseGeocode_BothProvidersFail(t *testing.T) {
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer badServer.Close()

	client := geocode.New(geocode.Config{BaseURL: badServer.URL, FallbackBaseURL: badServer.URL}, logger.Default())

	_, err := client.ReverseGeocode(context.Background(), 0, 0)
	require.Error(t, err)
}

func TestReverseGeocode_AddressPreferenceOrder(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":{"suburb":"Downtown","county":"Greene","village":"Smallville"}}`))
	}))
	defer primary.Close()

	client := geocode.New(geocode.Config{BaseURL: primary.URL, FallbackBaseURL: primary.URL}, logger.Default())

	result, err := client.ReverseGeocode(context.Background(), 1, 1)
	require.NoError(t, err)
	// village outranks suburb and county in the preference order.
	assert.Equal(t, "Smallville", result.Name)
}
