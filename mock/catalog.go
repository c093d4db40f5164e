package mock

import (
	"context"

	"github.com/fwojciec/opdscli"
)

var _ opdscli.CatalogService = (*CatalogService)(nil)

// CatalogService is a mock implementation of opdscli.CatalogService.
type CatalogService struct {
	CreateCatalogFn      func(ctx context.Context, catalog *opdscli.Catalog) error
	FindCatalogByNameFn  func(ctx context.Context, name string) (*opdscli.Catalog, error)
	FindCatalogsFn       func(ctx context.Context) ([]*opdscli.Catalog, error)
	DeleteCatalogFn      func(ctx context.Context, name string) error
	SetDefaultCatalogFn  func(ctx context.Context, name string) error
	FindDefaultCatalogFn func(ctx context.Context) (*opdscli.Catalog, error)
}

func (s *CatalogService) CreateCatalog(ctx context.Context, catalog *opdscli.Catalog) error {
	return s.CreateCatalogFn(ctx, catalog)
}

func (s *CatalogService) FindCatalogByName(ctx context.Context, name string) (*opdscli.Catalog, error) {
	return s.FindCatalogByNameFn(ctx, name)
}

func (s *CatalogService) FindCatalogs(ctx context.Context) ([]*opdscli.Catalog, error) {
	return s.FindCatalogsFn(ctx)
}

func (s *CatalogService) DeleteCatalog(ctx context.Context, name string) error {
	return s.DeleteCatalogFn(ctx, name)
}

func (s *CatalogService) SetDefaultCatalog(ctx context.Context, name string) error {
	return s.SetDefaultCatalogFn(ctx, name)
}

func (s *CatalogService) FindDefaultCatalog(ctx context.Context) (*opdscli.Catalog, error) {
	return s.FindDefaultCatalogFn(ctx)
}

var _ opdscli.SettingService = (*SettingService)(nil)

// SettingService is a mock implementation of opdscli.SettingService.
type SettingService struct {
	SettingFn    func(ctx context.Context, key string) (string, error)
	SetSettingFn func(ctx context.Context, key, value string) error
}

func (s *SettingService) Setting(ctx context.Context, key string) (string, error) {
	return s.SettingFn(ctx, key)
}

func (s *SettingService) SetSetting(ctx context.Context, key, value string) error {
	return s.SetSettingFn(ctx, key, value)
}
