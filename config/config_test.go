package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{Workers: 1}, cfg)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GTFSDURATIONS_FEED", "google_transit.zip")
	t.Setenv("GTFSDURATIONS_METHOD", "detailed")
	t.Setenv("GTFSDURATIONS_TRIPS", "T1, T2,,")
	t.Setenv("GTFSDURATIONS_WORKERS", "4")
	t.Setenv("GTFSDURATIONS_METRICS_TEXTFILE", "/var/lib/node_exporter/gtfsdurations.prom")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Feed:            "google_transit.zip",
		Method:          "detailed",
		Trips:           []string{"T1", "T2"},
		Workers:         4,
		MetricsTextfile: "/var/lib/node_exporter/gtfsdurations.prom",
	}, cfg)
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("GTFSDURATIONS_WORKERS", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "GTFSDURATIONS_WORKERS")
}

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	t.Setenv("GTFSDURATIONS_FEED", "from_env.zip")
	t.Setenv("GTFSDURATIONS_METHOD", "by.trip")
	path := writeFile(t, `
feed: from_file.zip
trips: [T1, T3]
service_patterns: patterns.csv
workers: 8
output: durations.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Feed:            "from_file.zip",
		Method:          "by.trip",
		Trips:           []string{"T1", "T3"},
		ServicePatterns: "patterns.csv",
		Workers:         8,
		Output:          "durations.csv",
	}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "workers: [1, 2")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		cfg     Config
		wantErr bool
	}{
		{
			desc: "valid",
			cfg:  Config{Feed: "google_transit.zip", Workers: 2},
		},
		{
			desc: "unknown method is left to the engine",
			cfg:  Config{Feed: "google_transit.zip", Method: "by.nonsense"},
		},
		{
			desc:    "missing feed",
			cfg:     Config{Workers: 1},
			wantErr: true,
		},
		{
			desc:    "negative workers",
			cfg:     Config{Feed: "google_transit.zip", Workers: -1},
			wantErr: true,
		},
		{
			desc:    "blank trip ID",
			cfg:     Config{Feed: "google_transit.zip", Trips: []string{"T1", ""}},
			wantErr: true,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a,b , "))
	assert.Nil(t, SplitList(""))
}
