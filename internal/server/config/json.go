package config

import (
	"encoding/json"
	"os"

	"github.com/nytevibe/nytevibe/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Duration fields accept both strings such as "1h" and integer
// nanoseconds; absent fields leave the runtime Config untouched.
type JsonConfig struct {
	ListenAddr                  string          `json:"listen_addr"`
	PathPrefix                  string          `json:"path_prefix"`
	PublicURL                   string          `json:"public_url"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	RememberMeValidityDuration  *timex.Duration `json:"remember_me_validity_duration"`
	LinkValidityDuration        *timex.Duration `json:"link_validity_duration"`
	LoginRate                   int             `json:"login_rate"`
	LoginBurst                  int             `json:"login_burst"`
	LogLevel                    string          `json:"log_level"`
	LogFormat                   string          `json:"log_format"`
}

// parseJson overlays config with the JSON file at path. An empty path is a
// no-op. If the file cannot be read or contains invalid JSON, the function
// panics.
func parseJson(config *Config, path string) {
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.PathPrefix, c.PathPrefix)
	setString(&config.PublicURL, c.PublicURL)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RememberMeValidityDuration != nil {
		config.RememberMeValidityDuration = c.RememberMeValidityDuration.Duration
	}
	if c.LinkValidityDuration != nil {
		config.LinkValidityDuration = c.LinkValidityDuration.Duration
	}
	if c.LoginRate > 0 {
		config.LoginRate = c.LoginRate
	}
	if c.LoginBurst > 0 {
		config.LoginBurst = c.LoginBurst
	}
}
