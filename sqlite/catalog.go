package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/opdscli"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ opdscli.CatalogService = (*CatalogService)(nil)

const catalogColumns = `id, name, url, auth_type, username, password, token, is_default, created_at, updated_at`

// CatalogService implements opdscli.CatalogService using SQLite.
type CatalogService struct {
	db *DB
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *DB) *CatalogService {
	return &CatalogService{db: db}
}

// CreateCatalog stores a new catalog. The first catalog, or one created
// with Default set, becomes the default.
func (s *CatalogService) CreateCatalog(ctx context.Context, catalog *opdscli.Catalog) error {
	if err := catalog.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists, total int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(name = ?), 0) FROM catalogs
	`, catalog.Name).Scan(&total, &exists); err != nil {
		return err
	}
	if exists > 0 {
		return opdscli.Errorf(opdscli.ECONFLICT, "catalog %q already exists", catalog.Name)
	}

	if total == 0 {
		catalog.Default = true
	}
	if catalog.Default {
		if _, err := tx.ExecContext(ctx, `UPDATE catalogs SET is_default = 0`); err != nil {
			return err
		}
	}

	catalog.ID = uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)
	catalog.CreatedAt = now
	catalog.UpdatedAt = now

	var auth opdscli.Auth
	if catalog.Auth != nil {
		auth = *catalog.Auth
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalogs (`+catalogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, catalog.ID, catalog.Name, catalog.URL, auth.Type, auth.Username, auth.Password, auth.Token,
		boolToInt(catalog.Default), catalog.CreatedAt.Format(time.RFC3339), catalog.UpdatedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// FindCatalogByName retrieves a catalog by name.
func (s *CatalogService) FindCatalogByName(ctx context.Context, name string) (*opdscli.Catalog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM catalogs WHERE name = ?`, name)
	catalog, err := scanCatalog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, opdscli.Errorf(opdscli.ENOTFOUND, "catalog %q not found", name)
	}
	return catalog, err
}

// FindCatalogs retrieves all catalogs, oldest first.
func (s *CatalogService) FindCatalogs(ctx context.Context) ([]*opdscli.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+catalogColumns+` FROM catalogs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var catalogs []*opdscli.Catalog
	for rows.Next() {
		catalog, err := scanCatalog(rows)
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, catalog)
	}
	return catalogs, rows.Err()
}

// DeleteCatalog removes a catalog. If it was the default, the oldest
// remaining catalog becomes the default.
func (s *CatalogService) DeleteCatalog(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var isDefault int
	err = tx.QueryRowContext(ctx, `SELECT is_default FROM catalogs WHERE name = ?`, name).Scan(&isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return opdscli.Errorf(opdscli.ENOTFOUND, "catalog %q not found", name)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalogs WHERE name = ?`, name); err != nil {
		return err
	}

	if isDefault == 1 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE catalogs SET is_default = 1, updated_at = ?
			WHERE rowid = (SELECT rowid FROM catalogs ORDER BY created_at, rowid LIMIT 1)
		`, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetDefaultCatalog marks a catalog as the default.
func (s *CatalogService) SetDefaultCatalog(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE catalogs SET is_default = 0 WHERE name != ?`, name); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE catalogs SET is_default = 1, updated_at = ? WHERE name = ?
	`, time.Now().UTC().Format(time.RFC3339), name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return opdscli.Errorf(opdscli.ENOTFOUND, "catalog %q not found", name)
	}

	return tx.Commit()
}

// FindDefaultCatalog retrieves the default catalog.
func (s *CatalogService) FindDefaultCatalog(ctx context.Context) (*opdscli.Catalog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM catalogs WHERE is_default = 1 LIMIT 1`)
	catalog, err := scanCatalog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, opdscli.Errorf(opdscli.ENOTFOUND, "no catalogs configured, add one with 'opdscli catalog add'")
	}
	return catalog, err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCatalog(row scanner) (*opdscli.Catalog, error) {
	var catalog opdscli.Catalog
	var auth opdscli.Auth
	var isDefault int
	var createdAt, updatedAt string

	if err := row.Scan(&catalog.ID, &catalog.Name, &catalog.URL,
		&auth.Type, &auth.Username, &auth.Password, &auth.Token,
		&isDefault, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if auth.Type != "" {
		catalog.Auth = &auth
	}
	catalog.Default = isDefault == 1

	var err error
	if catalog.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if catalog.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &catalog, nil
}
