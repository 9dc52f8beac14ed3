package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/flagx"
	"github.com/dverbitsky/chronokeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DataDir               string         `json:"data_dir"`
	ServerEndpointAddr    string         `json:"server_endpoint_addr"`
	AssistantEndpointAddr string         `json:"assistant_endpoint_addr"`
	OnlineCheckInterval   timex.Duration `json:"online_check_interval"`
	RemoteTimeout         timex.Duration `json:"remote_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flag; when neither is set the function
// returns without touching cfg. Read or unmarshal errors panic; startup
// configuration has no caller to hand the error to.
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

	cfg.DataDir = jc.DataDir
	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.AssistantEndpointAddr = jc.AssistantEndpointAddr
	cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	cfg.RemoteTimeout = time.Duration(jc.RemoteTimeout.Duration)
}
