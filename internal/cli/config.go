package cli

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr      string `yaml:"listen_addr"       mapstructure:"listen_addr"`
	PrefsListenAddr string `yaml:"prefs_listen_addr" mapstructure:"prefs_listen_addr"` // empty mounts prefs on the gateway

	Backend string `yaml:"backend" mapstructure:"backend"` // opa | openfga | mock

	OPAEndpoint       string `yaml:"opa_endpoint"        mapstructure:"opa_endpoint"`
	OPAAllowPath      string `yaml:"opa_allow_path"      mapstructure:"opa_allow_path"`
	OPADNCPath        string `yaml:"opa_dnc_path"        mapstructure:"opa_dnc_path"`
	DecisionTimeoutMS int    `yaml:"decision_timeout_ms" mapstructure:"decision_timeout_ms"`
	DecisionRetries   int    `yaml:"decision_retries"    mapstructure:"decision_retries"`

	FGAEndpoint string `yaml:"fga_endpoint" mapstructure:"fga_endpoint"`
	FGAStoreID  string `yaml:"fga_store_id" mapstructure:"fga_store_id"`
	FGAModelID  string `yaml:"fga_model_id" mapstructure:"fga_model_id"`

	PrefsToken      string `yaml:"prefs_token"      mapstructure:"prefs_token"`
	BlocklistPath   string `yaml:"blocklist_path"   mapstructure:"blocklist_path"`
	PreferencesPath string `yaml:"preferences_path" mapstructure:"preferences_path"`

	EnableCORS bool `yaml:"enable_cors" mapstructure:"enable_cors"`
}

func (c *Config) DecisionTimeout() time.Duration {
	return time.Duration(c.DecisionTimeoutMS) * time.Millisecond
}

func loadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	v.SetDefault("listen_addr", ":8181")
	v.SetDefault("prefs_listen_addr", "")
	v.SetDefault("backend", "opa")
	v.SetDefault("opa_endpoint", "http://localhost:8282")
	v.SetDefault("opa_allow_path", "")
	v.SetDefault("opa_dnc_path", "")
	v.SetDefault("decision_timeout_ms", 3000)
	v.SetDefault("decision_retries", 0)
	v.SetDefault("fga_endpoint", "")
	v.SetDefault("fga_store_id", "")
	v.SetDefault("fga_model_id", "")
	v.SetDefault("prefs_token", "mock-token")
	v.SetDefault("blocklist_path", "")
	v.SetDefault("preferences_path", "")
	v.SetDefault("enable_cors", true)

	// Env overrides: PEPGATE_LISTEN_ADDR, PEPGATE_OPA_ENDPOINT, etc.
	v.SetEnvPrefix("PEPGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Read file if it exists, otherwise return defaults without error
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
