package config

import (
	"github.com/spf13/pflag"
)

// Flags binds command-line overrides for Config onto a pflag.FlagSet.
//
// Supported flags:
//
//	--config string            path to a JSON config file
//	--server string            base url of the session backend
//	--timeout duration         timeout for each backend request
//	--signed-out-route string  route shown after sign-out
//	--session-cookie string    value of the OIDC session cookie
//	--log-level string         debug, info, warn or error
//	--log-format string        text or json
//
// Only flags the user actually set override earlier sources.
type Flags struct {
	fs         *pflag.FlagSet
	ConfigPath string
}

func NewFlags(fs *pflag.FlagSet) *Flags {
	var d Config
	d.LoadDefaults()

	f := &Flags{fs: fs}
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "path to JSON config file")
	fs.StringP("server", "s", d.ServerURL, "base url of the session backend")
	fs.Duration("timeout", d.RequestTimeout, "timeout for each backend request")
	fs.String("signed-out-route", d.SignedOutRoute, "route shown after sign-out")
	fs.String("session-cookie", "", "value of the OIDC session cookie")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	fs.String("log-format", d.LogFormat, "log format: text or json")
	return f
}

// Apply copies every changed flag into cfg.
func (f *Flags) Apply(cfg *Config) error {
	var err error
	if f.fs.Changed("server") {
		if cfg.ServerURL, err = f.fs.GetString("server"); err != nil {
			return err
		}
	}
	if f.fs.Changed("timeout") {
		if cfg.RequestTimeout, err = f.fs.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if f.fs.Changed("signed-out-route") {
		if cfg.SignedOutRoute, err = f.fs.GetString("signed-out-route"); err != nil {
			return err
		}
	}
	if f.fs.Changed("session-cookie") {
		if cfg.SessionCookie, err = f.fs.GetString("session-cookie"); err != nil {
			return err
		}
	}
	if f.fs.Changed("log-level") {
		if cfg.LogLevel, err = f.fs.GetString("log-level"); err != nil {
			return err
		}
	}
	if f.fs.Changed("log-format") {
		if cfg.LogFormat, err = f.fs.GetString("log-format"); err != nil {
			return err
		}
	}
	return nil
}
