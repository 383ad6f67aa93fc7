package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avelasco-dev/inventario/internal/flagx"
	"github.com/avelasco-dev/inventario/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the idle timeout either as a string
// like "15m" or as integer nanoseconds.
type JsonConfig struct {
	Backend       string         `json:"backend"`
	AppID         string         `json:"app_id"`
	RedisAddr     string         `json:"redis_addr"`
	RedisPassword string         `json:"redis_password"`
	RedisDB       int            `json:"redis_db"`
	DatabaseDSN   string         `json:"database_dsn"`
	AuthEndpoint  string         `json:"auth_endpoint"`
	AuthAPIKey    string         `json:"auth_api_key"`
	IdleTimeout   timex.Duration `json:"idle_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flags. If no file is given the function returns without
// touching cfg. Read or unmarshal errors panic; intended usage is
// defaults -> parseJson -> parseFlags, where later stages override earlier
// ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.Backend = jc.Backend
	cfg.AppID = jc.AppID
	cfg.RedisAddr = jc.RedisAddr
	cfg.RedisPassword = jc.RedisPassword
	cfg.RedisDB = jc.RedisDB
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.AuthEndpoint = jc.AuthEndpoint
	cfg.AuthAPIKey = jc.AuthAPIKey
	cfg.IdleTimeout = time.Duration(jc.IdleTimeout.Duration)
}
