package main

import (
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/pkg/configutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExampleConfig(t *testing.T) {
	cfg, err := configutil.ReadConfig[Config]("../../config.json5")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.listen())

	options, err := cfg.serviceOptions(chrono.NewFakeTime(time.Now()), &telemetry.RecordingAPI{})
	require.NoError(t, err)
	require.NotEmpty(t, options)
}

func TestListenDefault(t *testing.T) {
	require.Equal(t, "0.0.0.0:5000", Config{}.listen())
	require.Equal(t, "127.0.0.1:8080", Config{Listen: "127.0.0.1:8080"}.listen())
}

func TestServiceOptions(t *testing.T) {
	clock := chrono.NewFakeTime(time.Now())
	tel := &telemetry.RecordingAPI{}

	cfg := Config{Portal: PortalConfig{BaseURLs: map[string]string{"supreme-court": "http://localhost"}}}
	_, err := cfg.serviceOptions(clock, tel)
	require.ErrorContains(t, err, "portal.base_urls")

	dumps := filepath.Join(t.TempDir(), "dumps")
	cfg = Config{Portal: PortalConfig{
		BaseURLs: map[string]string{"district-case": "http://localhost:9000"},
		DumpDir:  dumps,
	}}
	_, err = cfg.serviceOptions(clock, tel)
	require.NoError(t, err)

	info, err := os.Stat(dumps)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
