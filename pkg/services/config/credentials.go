package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/spf13/viper"
)

const (
	DefaultCredentialsFile = "access.json"
	EnvPrefix              = "SFREPORTS"
	CredentialsProfile     = "default"
)

type Credentials struct {
	AccessToken string `mapstructure:"access_token"`
	InstanceURL string `mapstructure:"instance_url"`
	APIVersion  string `mapstructure:"api_version"`
}

func (c Credentials) Profile(name string) domain.Profile {
	return domain.Profile{
		Name:        name,
		InstanceURL: c.InstanceURL,
		AccessToken: c.AccessToken,
		APIVersion:  c.APIVersion,
	}
}

// LoadCredentials reads an access.json style file. SFREPORTS_ACCESS_TOKEN,
// SFREPORTS_INSTANCE_URL and SFREPORTS_API_VERSION override its values, and
// a missing file is fine as long as the environment supplies both.
func LoadCredentials(path string) (*Credentials, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("api_version", domain.DefaultAPIVersion)
	for _, key := range []string{"access_token", "instance_url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	}

	var creds Credentials
	if err := v.Unmarshal(&creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.AccessToken == "" || creds.InstanceURL == "" {
		return nil, fmt.Errorf("credentials in %s: access_token and instance_url are required", path)
	}
	return &creds, nil
}
