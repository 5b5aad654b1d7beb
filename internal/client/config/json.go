package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Pointer fields distinguish "absent" from "zero" so that a partial file only
// overrides the keys it names.
type JsonConfig struct {
	ServerURL         *string         `json:"server_url"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	ExpiryLeeway      *timex.Duration `json:"expiry_leeway"`
	ExpiryWarning     *timex.Duration `json:"expiry_warning"`
	SignedOutRoute    *string         `json:"signed_out_route"`
	SessionCookieName *string         `json:"session_cookie_name"`
	SessionCookie     *string         `json:"session_cookie"`
	BearerToken       *string         `json:"bearer_token"`
	LogLevel          *string         `json:"log_level"`
	LogFormat         *string         `json:"log_format"`
	OTelEndpoint      *string         `json:"otel_endpoint"`
	OTelEnabled       *bool           `json:"otel_enabled"`
	OTelServiceName   *string         `json:"otel_service_name"`
	OTelSampleRatio   *float64        `json:"otel_sample_ratio"`
}

// parseJson overlays cfg with values loaded from the JSON file at path.
// An empty path is a no-op.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.ExpiryLeeway, jc.ExpiryLeeway)
	setDuration(&cfg.ExpiryWarning, jc.ExpiryWarning)
	setString(&cfg.SignedOutRoute, jc.SignedOutRoute)
	setString(&cfg.SessionCookieName, jc.SessionCookieName)
	setString(&cfg.SessionCookie, jc.SessionCookie)
	setString(&cfg.BearerToken, jc.BearerToken)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.OTelEndpoint, jc.OTelEndpoint)
	if jc.OTelEnabled != nil {
		cfg.OTelEnabled = *jc.OTelEnabled
	}
	setString(&cfg.OTelServiceName, jc.OTelServiceName)
	if jc.OTelSampleRatio != nil {
		cfg.OTelSampleRatio = *jc.OTelSampleRatio
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
