package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Backend string

const (
	BackendPebble Backend = "pebble"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

type Store struct {
	Backend Backend
	Path    string
}

const (
	Cfg_store_backend = "store.backend"
	Cfg_store_path    = "store.path"
)

var (
	envReplacer = strings.NewReplacer(".", "_")

	storeDefaults = map[string]interface{}{
		Cfg_store_backend: string(BackendPebble),
		Cfg_store_path:    defaultStorePath(),
	}
)

func init() {
	for k, v := range storeDefaults {
		viper.SetDefault(k, v)
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nostrkeys"
	}

	return filepath.Join(home, ".nostrkeys", "data")
}

func buildStoreConfig() (*Store, error) {
	c := &Store{
		Backend: Backend(strings.ToLower(viper.GetString(Cfg_store_backend))),
		Path:    viper.GetString(Cfg_store_path),
	}

	switch c.Backend {
	case BackendPebble, BackendFile:
		if c.Path == "" {
			return nil, errors.Errorf("%s requires %s", c.Backend, Cfg_store_path)
		}
	case BackendMemory:
	default:
		return nil, errors.Errorf("unknown store backend %q", c.Backend)
	}

	return c, nil
}
