// internal/repository/postgres/asset_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"auction-house/internal/domain"
	"auction-house/internal/repository"
	"auction-house/internal/util"
)

// AssetRepository implements repository.AssetRepository for PostgreSQL.
type AssetRepository struct{}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(db *sqlx.DB) repository.AssetRepository {
	return &AssetRepository{}
}

// CreateAsset inserts a new asset using the provided DBExecutor.
func (r *AssetRepository) CreateAsset(ctx context.Context, q repository.DBExecutor, asset *domain.Asset) error {
	query := `INSERT INTO assets (owner_id, title, description, retail_value, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query, asset.OwnerID, asset.Title, asset.Description, asset.RetailValue,
		asset.Status, asset.CreatedAt, asset.UpdatedAt).Scan(&asset.ID)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetAssetByID retrieves an asset by its ID using the provided DBExecutor.
func (r *AssetRepository) GetAssetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Asset, error) {
	var asset domain.Asset
	query := `SELECT id, owner_id, title, description, retail_value, status, created_at, updated_at
              FROM assets WHERE id = $1`
	err := q.GetContext(ctx, &asset, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get asset by ID %d: %w", id, err)
	}
	return &asset, nil
}

// GetAssetsByOwnerID retrieves all assets owned by the given user.
func (r *AssetRepository) GetAssetsByOwnerID(ctx context.Context, q repository.DBExecutor, ownerID int64) ([]domain.Asset, error) {
	var assets []domain.Asset
	query := `SELECT id, owner_id, title, description, retail_value, status, created_at, updated_at
              FROM assets WHERE owner_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &assets, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to get assets for owner %d: %w", ownerID, err)
	}
	return assets, nil
}

// UpdateAsset persists the asset's mutable fields.
func (r *AssetRepository) UpdateAsset(ctx context.Context, q repository.DBExecutor, asset *domain.Asset) error {
	query := `UPDATE assets SET owner_id = $1, title = $2, description = $3, retail_value = $4, status = $5, updated_at = $6
              WHERE id = $7`
	result, err := q.ExecContext(ctx, query, asset.OwnerID, asset.Title, asset.Description, asset.RetailValue,
		asset.Status, time.Now().UTC(), asset.ID)
	if err != nil {
		return fmt.Errorf("failed to update asset %d: %w", asset.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating asset %d: %w", asset.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating asset %d: %w", asset.ID, util.ErrNotFound)
	}
	return nil
}

// DeleteAsset removes the asset.
func (r *AssetRepository) DeleteAsset(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting asset %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
