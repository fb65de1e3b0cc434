package matrixio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMatrixParsesOSRMTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := tableResponse{
			Code: "Ok",
			Durations: [][]float64{
				{0, 100, 200},
				{100, 0, 150},
				{200, 150, 0},
			},
			Distances: [][]float64{
				{0, 1000, 2000},
				{1000, 0, 1500},
				{2000, 1500, 0},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host := u.Hostname()
	port, _ := strconv.Atoi(u.Port())

	c := NewClient(RouterOSRM, map[string]HostPort{"car": {Host: host, Port: port}})
	m, err := c.FetchMatrix(context.Background(), "car", [][2]float64{{1, 1}, {2, 2}, {3, 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(100), m.Duration(0, 1))
	assert.Equal(t, int64(1500), m.Distance(1, 2))
}

func TestFetchMatrixRejectsErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tableResponse{Code: "NoRoute"})
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	c := NewClient(RouterOSRM, map[string]HostPort{"car": {Host: u.Hostname(), Port: port}})
	_, err := c.FetchMatrix(context.Background(), "car", [][2]float64{{1, 1}, {2, 2}})
	assert.Error(t, err)
}

func TestFetchMatrixEmptyCoordsSkipsRequest(t *testing.T) {
	c := NewClient(RouterOSRM, nil)
	m, err := c.FetchMatrix(context.Background(), "car", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Size)
}

func TestBuildURLEncodesCoordinates(t *testing.T) {
	c := NewClient(RouterOSRM, nil)
	u, err := c.buildURL("http://localhost:5000", [][2]float64{{1.5, 2.5}, {3.5, 4.5}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(u, "1.500000,2.500000"))
	assert.True(t, strings.Contains(u, "3.500000,4.500000"))
}
