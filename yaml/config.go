// Package yaml reads the legacy opdscli.yaml configuration file using
// gopkg.in/yaml.v3 and imports it into the catalog and setting services.
package yaml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/fwojciec/opdscli"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the legacy configuration file name.
const DefaultFileName = "opdscli.yaml"

// DefaultPath returns the legacy configuration path under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, DefaultFileName)
}

// Config is the legacy configuration file.
type Config struct {
	DefaultCatalog string         `yaml:"default_catalog"`
	Catalogs       CatalogList    `yaml:"catalogs"`
	Settings       map[string]any `yaml:"settings"`

	// WorldReadable is set by LoadFile when other users can read the file.
	WorldReadable bool `yaml:"-"`
}

// NamedCatalog is one entry of the catalogs mapping.
type NamedCatalog struct {
	Name string      `yaml:"-"`
	URL  string      `yaml:"url"`
	Auth *AuthConfig `yaml:"auth"`
}

// AuthConfig is a catalog's credentials. Type defaults to basic.
type AuthConfig struct {
	Type     string `yaml:"type"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
}

// CatalogList is the catalogs mapping in document order.
type CatalogList []NamedCatalog

// UnmarshalYAML decodes a name-keyed mapping while keeping document order.
func (l *CatalogList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: catalogs must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var c NamedCatalog
		if err := node.Content[i+1].Decode(&c); err != nil {
			return err
		}
		c.Name = node.Content[i].Value
		*l = append(*l, c)
	}
	return nil
}

// Catalog converts the entry into a domain catalog.
func (c NamedCatalog) Catalog() *opdscli.Catalog {
	catalog := &opdscli.Catalog{Name: c.Name, URL: c.URL}
	if c.Auth != nil {
		auth := opdscli.Auth{
			Type:     c.Auth.Type,
			Username: c.Auth.Username,
			Password: c.Auth.Password,
			Token:    c.Auth.Token,
		}
		if auth.Type == "" {
			auth.Type = opdscli.AuthBasic
		}
		catalog.Auth = &auth
	}
	return catalog
}

// LoadFile reads the configuration at path.
// Returns ENOTFOUND if the file does not exist and EINVALID if it cannot be decoded.
func LoadFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, opdscli.Errorf(opdscli.ENOTFOUND, "config file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &opdscli.Error{
			Code:    opdscli.EINVALID,
			Message: fmt.Sprintf("invalid config %s: %v", path, err),
			Err:     err,
		}
	}
	cfg.WorldReadable = info.Mode().Perm()&0o004 != 0
	return &cfg, nil
}
