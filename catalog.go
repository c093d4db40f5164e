package opdscli

import (
	"context"
	"net/url"
	"time"
)

// Authentication types.
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// SettingDefaultFormat names the setting holding the preferred download format.
const SettingDefaultFormat = "default_format"

// Auth holds the credentials configured for a catalog.
type Auth struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Validate returns an error if the auth configuration is incomplete.
func (a *Auth) Validate() error {
	switch a.Type {
	case AuthBasic:
		if a.Username == "" || a.Password == "" {
			return Errorf(EINVALID, "basic auth requires username and password")
		}
	case AuthBearer:
		if a.Token == "" {
			return Errorf(EINVALID, "bearer auth requires a token")
		}
	default:
		return Errorf(EINVALID, "unknown auth type %q, use %q or %q", a.Type, AuthBasic, AuthBearer)
	}
	return nil
}

// Catalog is a configured OPDS catalog.
type Catalog struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Auth      *Auth     `json:"auth,omitempty"`
	Default   bool      `json:"default"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the catalog contains invalid fields.
func (c *Catalog) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "catalog name required")
	}
	if c.URL == "" {
		return Errorf(EINVALID, "catalog URL required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Errorf(EINVALID, "catalog URL must be absolute: %q", c.URL)
	}
	if c.Auth != nil {
		return c.Auth.Validate()
	}
	return nil
}

// CatalogService represents a service for managing catalogs.
type CatalogService interface {
	// CreateCatalog stores a new catalog. The first catalog becomes the default.
	// Returns ECONFLICT if a catalog with the same name exists.
	CreateCatalog(ctx context.Context, catalog *Catalog) error

	// FindCatalogByName retrieves a catalog by name.
	// Returns ENOTFOUND if the catalog does not exist.
	FindCatalogByName(ctx context.Context, name string) (*Catalog, error)

	// FindCatalogs retrieves all catalogs ordered by creation time.
	FindCatalogs(ctx context.Context) ([]*Catalog, error)

	// DeleteCatalog removes a catalog. If it was the default, the oldest
	// remaining catalog becomes the default.
	// Returns ENOTFOUND if the catalog does not exist.
	DeleteCatalog(ctx context.Context, name string) error

	// SetDefaultCatalog marks a catalog as the default.
	// Returns ENOTFOUND if the catalog does not exist.
	SetDefaultCatalog(ctx context.Context, name string) error

	// FindDefaultCatalog retrieves the default catalog.
	// Returns ENOTFOUND if no catalog is configured.
	FindDefaultCatalog(ctx context.Context) (*Catalog, error)
}

// SettingService stores simple key/value settings.
type SettingService interface {
	// Setting returns the value for key.
	// Returns ENOTFOUND if the setting is unset.
	Setting(ctx context.Context, key string) (string, error)

	// SetSetting stores value under key.
	SetSetting(ctx context.Context, key, value string) error
}
