package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tcfw/nostrkeys/internal/utils/logging"
)

const (
	Cfg_verbose    = "verbose"
	Cfg_passphrase = "passphrase"
)

var (
	defaults = map[string]interface{}{
		Cfg_verbose:    false,
		Cfg_passphrase: "",
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// GetConfig reads nostrkeys.yaml from the usual locations, overlays
// NOSTRKEYS_* environment variables and builds the typed config.
func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("nostrkeys")
	viper.AddConfigPath("/etc/nostrkeys/")
	viper.AddConfigPath("$HOME/.nostrkeys")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("NOSTRKEYS")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logging.Entry().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	if viper.GetBool(Cfg_verbose) {
		logging.SetLevel(logrus.DebugLevel)
		logging.WithField("level", "debug").Debug("setting log level")
	}

	return Build()
}

// Build creates the typed config from the current viper state without
// reading any file.
func Build() (*Config, error) {
	c := &Config{
		passphrase: viper.GetString(Cfg_passphrase),
	}

	var err error

	c.store, err = buildStoreConfig()
	if err != nil {
		return nil, errors.Wrap(err, "store config")
	}

	c.identity, err = buildIdentityConfig()
	if err != nil {
		return nil, errors.Wrap(err, "identity config")
	}

	return c, nil
}

type Config struct {
	store      *Store
	identity   *Identity
	passphrase string
}

func (c *Config) Store() *Store {
	return c.store
}

func (c *Config) Identity() *Identity {
	return c.identity
}

// Passphrase is the non-interactive passphrase, if one was configured.
func (c *Config) Passphrase() string {
	return c.passphrase
}
