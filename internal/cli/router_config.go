// Package cli holds the solver's thin configuration-loading layer: the
// optional router host/port override table (spec §6 "-a"/"-p" flags),
// loaded with viper+yaml.v3 the way niceyeti-tabular's FromYaml does.
package cli

import (
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"tourforge/internal/matrixio"
)

// LoadRouterHosts reads a YAML host/port table from path, e.g.:
//
//	osrm: {host: localhost, port: 5000}
//	ors:  {host: localhost, port: 8080}
//
// and returns it in
// the shape matrixio.NewClient expects. An empty/missing path is not an
// error: callers fall back to each router's documented default.
func LoadRouterHosts(path string) (map[string]matrixio.HostPort, error) {
	if path == "" {
		return map[string]matrixio.HostPort{}, nil
	}

	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	raw := map[string]map[string]interface{}{}
	if err := vp.Unmarshal(&raw); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var table map[string]struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	}
	if err := yaml.Unmarshal(spec, &table); err != nil {
		return nil, err
	}

	hosts := make(map[string]matrixio.HostPort, len(table))
	for profile, hp := range table {
		hosts[profile] = matrixio.HostPort{Host: hp.Host, Port: hp.Port}
	}
	return hosts, nil
}
