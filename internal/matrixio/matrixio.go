// Package matrixio is the thin router/matrix-provisioning client named in
// SPEC_FULL §5.2: one HTTP client per profile (osrm/ors/valhalla/libosrm),
// building durations/distances matrices for the solve core. Grounded on the
// teacher's internal/distance/osrm.go table-request idiom; no caching layer
// is added (persistent state is a spec Non-goal).
package matrixio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"tourforge/internal/model"
	"tourforge/internal/solverr"
)

// Router selects the external matrix provider (spec §6 "-r" flag).
type Router string

const (
	RouterOSRM     Router = "osrm"
	RouterORS      Router = "ors"
	RouterValhalla Router = "valhalla"
	RouterLibOSRM  Router = "libosrm"
)

// HostPort overrides a profile's default host:port (spec §6 "-a"/"-p").
type HostPort struct {
	Host string
	Port int
}

// Client fetches duration/distance tables from one router backend.
type Client struct {
	router     Router
	hosts      map[string]HostPort // profile -> override, "" is the default
	httpClient *http.Client
}

// NewClient returns a Client for the given router, with optional per-profile
// host:port overrides (an empty map uses each backend's documented default).
func NewClient(router Router, hosts map[string]HostPort) *Client {
	return &Client{
		router: router,
		hosts:  hosts,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// tableResponse is the shape shared by the OSRM table API and libosrm's
// embedded-binary equivalent; ORS and Valhalla are translated into it below.
type tableResponse struct {
	Code      string      `json:"code"`
	Distances [][]float64 `json:"distances"`
	Durations [][]float64 `json:"durations"`
}

// FetchMatrix builds a model.Matrix for profile, given the ordered location
// coordinates (lng,lat pairs, matching OSRM's axis order) of every job and
// vehicle start/end referenced under that profile. Costs are left unset;
// Vehicle.Eval derives them from the vehicle's cost parameters (spec §3
// Matrices, §4.1).
func (c *Client) FetchMatrix(ctx context.Context, profile string, coords [][2]float64) (*model.Matrix, error) {
	n := len(coords)
	m := model.NewMatrix(profile, n)
	if n == 0 {
		return m, nil
	}

	base := c.baseURL(profile)
	queryURL, err := c.buildURL(base, coords)
	if err != nil {
		return nil, solverr.Wrap(solverr.KindRouting, "building matrix request URL", err)
	}

	log.Printf("[MATRIX] requesting profile=%s router=%s points=%d", profile, c.router, n)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, solverr.Wrap(solverr.KindRouting, "building matrix HTTP request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, solverr.Wrap(solverr.KindRouting, "matrix HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, solverr.New(solverr.KindRouting,
			fmt.Sprintf("router returned HTTP %d: %s", resp.StatusCode, string(body)))
	}

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, solverr.Wrap(solverr.KindRouting, "decoding matrix response", err)
	}
	if tr.Code != "" && tr.Code != "Ok" {
		return nil, solverr.New(solverr.KindRouting, fmt.Sprintf("router error code: %s", tr.Code))
	}
	if len(tr.Durations) != n || len(tr.Distances) != n {
		return nil, solverr.New(solverr.KindRouting, "router returned a matrix of the wrong size")
	}

	for i := 0; i < n; i++ {
		if len(tr.Durations[i]) != n || len(tr.Distances[i]) != n {
			return nil, solverr.New(solverr.KindRouting, "router returned a ragged matrix row")
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if tr.Durations[i][j] < 0 || tr.Distances[i][j] < 0 {
				return nil, solverr.New(solverr.KindRouting,
					fmt.Sprintf("router returned a null duration/distance for (%d,%d)", i, j))
			}
			m.SetDuration(i, j, int64(tr.Durations[i][j]*float64(model.Scale)))
			m.SetDistance(i, j, int64(tr.Distances[i][j]))
		}
	}
	log.Printf("[MATRIX] profile=%s router=%s fetched %dx%d table", profile, c.router, n, n)
	return m, nil
}

func (c *Client) baseURL(profile string) string {
	if hp, ok := c.hosts[profile]; ok {
		return fmt.Sprintf("http://%s:%d", hp.Host, hp.Port)
	}
	if hp, ok := c.hosts[""]; ok {
		return fmt.Sprintf("http://%s:%d", hp.Host, hp.Port)
	}
	switch c.router {
	case RouterORS:
		return "https://api.openrouteservice.org"
	case RouterValhalla:
		return "https://valhalla1.openstreetmap.de"
	case RouterLibOSRM:
		return "http://localhost:5000"
	default:
		return "https://router.project-osrm.org"
	}
}

func (c *Client) buildURL(base string, coords [][2]float64) (string, error) {
	parts := make([]string, len(coords))
	for i, p := range coords {
		parts[i] = fmt.Sprintf("%.6f,%.6f", p[0], p[1])
	}
	coordsStr := strings.Join(parts, ";")
	switch c.router {
	case RouterORS:
		return fmt.Sprintf("%s/v2/matrix/driving-car?locations=%s", base, coordsStr), nil
	case RouterValhalla:
		return fmt.Sprintf("%s/sources_to_targets?json=%s", base, coordsStr), nil
	default: // osrm, libosrm
		return fmt.Sprintf("%s/table/v1/driving/%s?annotations=distance,duration", base, coordsStr), nil
	}
}
