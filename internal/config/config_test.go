package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker = "localhost:9092"
	testRiverURL  = "http://rivers.test"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "hazard-event-sets", cfg.KafkaRequestTopic)
	assert.Equal(t, "hazard-products", cfg.KafkaProductTopic)
	assert.Equal(t, "hazard-product-generator", cfg.KafkaGroupID)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Empty(t, cfg.SiteConfig)
	assert.Empty(t, cfg.MetadataDir)
	assert.Equal(t, 256, cfg.MetadataCacheSize)
	assert.Equal(t, "hazards.db", cfg.SQLitePath)
	assert.False(t, cfg.RiverEnabled)
	assert.Empty(t, cfg.RiverServiceURL)
	assert.Equal(t, 5*time.Second, cfg.RiverServiceTimeout)
	assert.Equal(t, 1000, cfg.RiverCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REQUEST_TOPIC", "custom-requests")
	t.Setenv("KAFKA_PRODUCT_TOPIC", "custom-products")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("SITE_CONFIG", "/etc/hazards/site.toml")
	t.Setenv("METADATA_DIR", "/etc/hazards/metadata")
	t.Setenv("METADATA_CACHE_SIZE", "64")
	t.Setenv("SQLITE_PATH", "/var/lib/hazards.db")
	t.Setenv("RIVER_SERVICE_URL", testRiverURL)
	t.Setenv("RIVER_SERVICE_TIMEOUT", "10s")
	t.Setenv("RIVER_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-requests", cfg.KafkaRequestTopic)
	assert.Equal(t, "custom-products", cfg.KafkaProductTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "/etc/hazards/site.toml", cfg.SiteConfig)
	assert.Equal(t, "/etc/hazards/metadata", cfg.MetadataDir)
	assert.Equal(t, 64, cfg.MetadataCacheSize)
	assert.Equal(t, "/var/lib/hazards.db", cfg.SQLitePath)
	assert.True(t, cfg.RiverEnabled)
	assert.Equal(t, testRiverURL, cfg.RiverServiceURL)
	assert.Equal(t, 10*time.Second, cfg.RiverServiceTimeout)
	assert.Equal(t, 500, cfg.RiverCacheSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidRiverTimeout(t *testing.T) {
	t.Setenv("RIVER_SERVICE_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RIVER_SERVICE_TIMEOUT")
}

func TestLoad_RiverEnabledWithoutURL(t *testing.T) {
	t.Setenv("RIVER_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RIVER_SERVICE_URL")
}

func TestLoad_RiverExplicitlyDisabled(t *testing.T) {
	t.Setenv("RIVER_SERVICE_URL", testRiverURL)
	t.Setenv("RIVER_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.RiverEnabled)
}

func TestLoad_KafkaDisabledSkipsTopicChecks(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", " ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoadSite_Default(t *testing.T) {
	site, err := LoadSite("")
	require.NoError(t, err)
	require.NoError(t, site.Validate())

	assert.Equal(t, "BOU", site.SiteID)
	assert.Equal(t, "KBOU", site.FullStationID)
	assert.Equal(t, "Denver", site.WFOCity)
	assert.Equal(t, "WGUS65", site.Products["FFA"].TTAAii)
	assert.Equal(t, "Arapahoe", site.Areas["COC005"].Name)
}

func TestLoadSite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
site_id = "PUB"
full_station_id = "KPUB"
ccc = "PUB"
wfo_city = "Pueblo"

[products.FFA]
ttaaii = "WGUS65"
purge_hours = 6
fixed_expire = true

[headlines_timing."FF.A"]
start = "EXPLICIT"
end = "FUZZY"

[areas.COC101]
name = "Pueblo"
full_state_name = "Colorado"
part_of_state = "south central"
cities = ["Pueblo"]
`), 0o600))

	site, err := LoadSite(path)
	require.NoError(t, err)

	assert.Equal(t, "PUB", site.SiteID)
	assert.Equal(t, "Pueblo", site.WFOCity)
	assert.Equal(t, "America/Denver", site.TimeZone, "unset keys keep defaults")
	assert.Equal(t, 6.0, site.Products["FFA"].PurgeHours)
	assert.True(t, site.Products["FFA"].FixedExpire)
	assert.Equal(t, TimingPair{Start: "EXPLICIT", End: "FUZZY"}, site.HeadlinesTiming["FF.A"])
	assert.Equal(t, "south central", site.Areas["COC101"].PartOfState)
	assert.Equal(t, []string{"Pueblo"}, site.Areas["COC101"].Cities)
}

func TestLoadSite_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`site_id = "TOOLONG"`+"\n"+`time_zone = "Mars/Olympus"`), 0o600))
	_, err := LoadSite(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site_id")
	assert.Contains(t, err.Error(), "time_zone")

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte(`site_id = `), 0o600))
	_, err = LoadSite(broken)
	require.Error(t, err)

	_, err = LoadSite(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}
