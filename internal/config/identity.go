package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tcfw/nostrkeys/pkg/identity"
	"github.com/tcfw/nostrkeys/pkg/ncrypt"
)

type Identity struct {
	LogN        uint8
	KeySecurity ncrypt.KeySecurity

	Duplicates identity.DuplicatePolicy
	Forget     identity.ForgetPolicy

	UnlockRate  float64
	UnlockBurst int
}

const (
	Cfg_ncrypt_logN         = "ncrypt.log_n"
	Cfg_ncrypt_keySecurity  = "ncrypt.key_security"
	Cfg_registry_duplicates = "registry.duplicates"
	Cfg_registry_forget     = "registry.forget"
	Cfg_unlock_rate         = "unlock.rate"
	Cfg_unlock_burst        = "unlock.burst"
)

var (
	identityDefaults = map[string]interface{}{
		Cfg_ncrypt_logN:         int(ncrypt.DefaultLogN),
		Cfg_ncrypt_keySecurity:  int(ncrypt.KeySecurityUnknown),
		Cfg_registry_duplicates: identity.DuplicateReject.String(),
		Cfg_registry_forget:     identity.ForgetKeepUnlocked.String(),
		Cfg_unlock_rate:         0.0,
		Cfg_unlock_burst:        0,
	}
)

func init() {
	for k, v := range identityDefaults {
		viper.SetDefault(k, v)
	}
}

func buildIdentityConfig() (*Identity, error) {
	c := &Identity{
		UnlockRate:  viper.GetFloat64(Cfg_unlock_rate),
		UnlockBurst: viper.GetInt(Cfg_unlock_burst),
	}

	logN := viper.GetInt(Cfg_ncrypt_logN)
	if logN < 1 || logN > int(ncrypt.MaxLogN) {
		return nil, errors.Errorf("%s must be between 1 and %d", Cfg_ncrypt_logN, ncrypt.MaxLogN)
	}
	c.LogN = uint8(logN)

	ks := viper.GetInt(Cfg_ncrypt_keySecurity)
	if ks < 0 || ks > int(ncrypt.KeySecurityUnknown) {
		return nil, errors.Errorf("%s must be 0, 1 or 2", Cfg_ncrypt_keySecurity)
	}
	c.KeySecurity = ncrypt.KeySecurity(ks)

	var err error

	c.Duplicates, err = identity.ParseDuplicatePolicy(viper.GetString(Cfg_registry_duplicates))
	if err != nil {
		return nil, err
	}

	c.Forget, err = identity.ParseForgetPolicy(viper.GetString(Cfg_registry_forget))
	if err != nil {
		return nil, err
	}

	if c.UnlockRate < 0 || c.UnlockBurst < 0 {
		return nil, errors.New("unlock rate and burst must not be negative")
	}

	return c, nil
}
