package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

const DefaultRegistryFile = ".sfreports"

var ErrProfileNotFound = errors.New("profile not found")

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (domain.Profile, error)
}

// DefaultRegistryPath is ~/.sfreports.
func DefaultRegistryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultRegistryFile), nil
}

type iniRegistry struct {
	cfg *ini.File
}

// NewRegistry loads an ini file with one section per Salesforce org:
//
//	[prod]
//	instance_url = https://acme.my.salesforce.com
//	access_token = 00D...
//	api_version  = 60.0
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (domain.Profile, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return domain.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	profile := domain.Profile{
		Name:        name,
		InstanceURL: section.Key("instance_url").String(),
		AccessToken: section.Key("access_token").String(),
		APIVersion:  section.Key("api_version").MustString(domain.DefaultAPIVersion),
	}
	if profile.InstanceURL == "" || profile.AccessToken == "" {
		return domain.Profile{}, fmt.Errorf("profile %s: instance_url and access_token are required", name)
	}
	return profile, nil
}

// StaticRegistry serves profiles held in memory, e.g. one built from access.json.
type StaticRegistry map[string]domain.Profile

func (s StaticRegistry) GetProfiles(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s StaticRegistry) GetProfile(_ context.Context, name string) (domain.Profile, error) {
	p, ok := s[name]
	if !ok {
		return domain.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

type chainRegistry []Registry

// Chain merges registries; the first one that knows a profile wins.
func Chain(registries ...Registry) Registry {
	return chainRegistry(registries)
}

func (c chainRegistry) GetProfiles(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var profiles []string
	for _, r := range c {
		names, err := r.GetProfiles(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			profiles = append(profiles, name)
		}
	}
	return profiles, nil
}

func (c chainRegistry) GetProfile(ctx context.Context, name string) (domain.Profile, error) {
	for _, r := range c {
		p, err := r.GetProfile(ctx, name)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrProfileNotFound) {
			return domain.Profile{}, err
		}
	}
	return domain.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// Discover combines the profile file at registryPath, when it exists, with the
// credentials file exposed as the "default" profile. An empty registryPath
// means $HOME/.sfreports.
func Discover(registryPath, credentialsPath string) (Registry, error) {
	var registries []Registry

	if registryPath == "" {
		if p, err := DefaultRegistryPath(); err == nil {
			registryPath = p
		}
	}
	if registryPath != "" {
		if _, err := os.Stat(registryPath); err == nil {
			registry, err := NewRegistry(registryPath)
			if err != nil {
				return nil, err
			}
			registries = append(registries, registry)
		}
	}

	creds, err := LoadCredentials(credentialsPath)
	if err == nil {
		registries = append(registries, StaticRegistry{CredentialsProfile: creds.Profile(CredentialsProfile)})
	} else if len(registries) == 0 {
		return nil, fmt.Errorf("no salesforce profiles configured: %w", err)
	}

	return Chain(registries...), nil
}
