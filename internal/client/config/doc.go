// Package config loads runtime configuration for the sessionkeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via --config.
//  3. SESSIONKEEPER_* environment variables (see parseEnv).
//  4. Command-line flags (see Flags), which override earlier values when set.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds. Absent keys keep earlier values:
//
//	{
//	  "server_url": "https://app.example.com",
//	  "request_timeout": "10s",
//	  "expiry_leeway": "1m",
//	  "expiry_warning": "1h",
//	  "signed_out_route": "/signed-out",
//	  "session_cookie_name": "q_session",
//	  "log_level": "debug"
//	}
//
// Secrets (session cookie, bearer token) are better supplied through the
// environment than through the JSON file.
package config
