// internal/repository/asset_repo.go
package repository

import (
	"context"

	"auction-house/internal/domain"
)

// AssetRepository defines the interface for asset data operations.
type AssetRepository interface {
	// CreateAsset adds a new asset using the provided DBExecutor.
	CreateAsset(ctx context.Context, q DBExecutor, asset *domain.Asset) error
	// GetAssetByID retrieves an asset by its ID using the provided DBExecutor.
	GetAssetByID(ctx context.Context, q DBExecutor, id int64) (*domain.Asset, error)
	// GetAssetsByOwnerID retrieves all assets owned by the given user.
	GetAssetsByOwnerID(ctx context.Context, q DBExecutor, ownerID int64) ([]domain.Asset, error)
	// UpdateAsset persists the asset's title, description, retail value,
	// owner and status.
	UpdateAsset(ctx context.Context, q DBExecutor, asset *domain.Asset) error
	// DeleteAsset removes the asset.
	DeleteAsset(ctx context.Context, q DBExecutor, id int64) error
}
