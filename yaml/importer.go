package yaml

import (
	"context"
	"fmt"
	"sort"

	"github.com/fwojciec/opdscli"
)

// Importer writes a legacy configuration into the catalog and setting services.
type Importer struct {
	Catalogs opdscli.CatalogService
	Settings opdscli.SettingService
}

// ImportResult lists what an import changed.
type ImportResult struct {
	Imported []string // Catalog names created.
	Skipped  []string // Catalog names that already existed.
	Settings []string // Setting keys written.
}

// Import creates every catalog in cfg that does not already exist, in
// document order, and copies its settings. The configured default catalog
// is made the default when it is imported.
func (i *Importer) Import(ctx context.Context, cfg *Config) (*ImportResult, error) {
	result := &ImportResult{}

	for _, c := range cfg.Catalogs {
		_, err := i.Catalogs.FindCatalogByName(ctx, c.Name)
		if err == nil {
			result.Skipped = append(result.Skipped, c.Name)
			continue
		}
		if opdscli.ErrorCode(err) != opdscli.ENOTFOUND {
			return result, err
		}

		catalog := c.Catalog()
		catalog.Default = c.Name == cfg.DefaultCatalog
		if err := i.Catalogs.CreateCatalog(ctx, catalog); err != nil {
			return result, fmt.Errorf("import catalog %q: %w", c.Name, err)
		}
		result.Imported = append(result.Imported, c.Name)
	}

	keys := make([]string, 0, len(cfg.Settings))
	for key := range cfg.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := cfg.Settings[key]
		if value == nil {
			continue
		}
		if err := i.Settings.SetSetting(ctx, key, fmt.Sprint(value)); err != nil {
			return result, err
		}
		result.Settings = append(result.Settings, key)
	}

	return result, nil
}
