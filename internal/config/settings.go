package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Settings is the fully-resolved, typed configuration for one invocation:
// the shell-assignment config file's backend credentials, layered under
// environment and CLI-flag overrides bound through viper.
type Settings struct {
	Backend    string // "" or "dnsdb" selects DNSDB; "circl" selects CIRCL
	BaseURL    string
	APIKey     string
	Username   string
	Password   string
	TimeFormat string // "iso" or "" (default local-ish UTC form)
}

// backendKeys maps the recognized shell-assignment keys for each backend,
// per spec.md §6: keys are backend specific and missing ones are not fatal.
var backendKeys = map[string]struct{ apiKey, baseURL, username, password string }{
	"dnsdb": {apiKey: "DNSDB_API_KEY", baseURL: "DNSDB_SERVER"},
	"circl": {baseURL: "CIRCL_SERVER", username: "CIRCL_USERNAME", password: "CIRCL_PASSWORD"},
}

// Load resolves Settings from, in increasing priority: the discovered shell
// config file, the process environment, and explicit CLI flag values. viper
// layers the environment over the shell config file, which is merged in as
// viper defaults because viper has no reader for that grammar (see
// DESIGN.md); non-empty CLI flag values then override both.
func Load(backend string, flagBaseURL, flagAPIKey, flagUsername, flagPassword string) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("DNSDBQ")
	v.AutomaticEnv()
	v.SetDefault("time_format", "")

	if path := Discover(); path != "" {
		assignments, err := ParseShellAssignments(path)
		if err != nil {
			return Settings{}, err
		}
		for k, val := range assignments {
			v.SetDefault(strings.ToLower(k), val)
		}
	}

	s := Settings{
		Backend:    backend,
		TimeFormat: v.GetString("time_format"),
	}

	keys, ok := backendKeys[backend]
	if !ok {
		keys = backendKeys["dnsdb"]
	}
	s.BaseURL = firstNonEmpty(flagBaseURL, v.GetString(strings.ToLower(keys.baseURL)))
	s.APIKey = firstNonEmpty(flagAPIKey, v.GetString(strings.ToLower(keys.apiKey)))
	s.Username = firstNonEmpty(flagUsername, v.GetString(strings.ToLower(keys.username)))
	s.Password = firstNonEmpty(flagPassword, v.GetString(strings.ToLower(keys.password)))
	return s, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
