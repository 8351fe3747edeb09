// internal/domain/asset.go
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"auction-house/internal/util"
)

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	AssetStatusDraft            AssetStatus = "DRAFT"
	AssetStatusOpen             AssetStatus = "OPEN"
	AssetStatusActive           AssetStatus = "ACTIVE" // reserved, no transition sets it
	AssetStatusClosedForAuction AssetStatus = "CLOSED_FOR_AUCTION"
)

// Asset is an item a user can put up for auction.
// Lifecycle: Draft -> Open -> ClosedForAuction -> Open (possibly new owner).
type Asset struct {
	ID          int64       `db:"id" json:"id"`
	OwnerID     int64       `db:"owner_id" json:"owner_id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	RetailValue int64       `db:"retail_value" json:"retail_value"`
	Status      AssetStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

var titlePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// NormalizeTitle trims the title and collapses internal whitespace runs into
// single spaces.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// ValidateListing checks title, description and retail value against the
// listing rules. Title and description are expected to be normalized/trimmed
// already.
func ValidateListing(title, description string, retailValue int64) error {
	if len(title) < 10 || len(title) > 150 {
		return fmt.Errorf("%w: title must be between 10 and 150 characters", util.ErrValidation)
	}
	if !titlePattern.MatchString(title) {
		return fmt.Errorf("%w: title must contain only letters, digits and spaces", util.ErrValidation)
	}
	if len(description) < 10 || len(description) > 1000 {
		return fmt.Errorf("%w: description must be between 10 and 1000 characters", util.ErrValidation)
	}
	if retailValue <= 0 {
		return fmt.Errorf("%w: retail value must be a positive integer", util.ErrValidation)
	}
	return nil
}

// NewAsset creates a Draft asset owned by ownerID after normalizing and
// validating the listing details.
func NewAsset(ownerID int64, title, description string, retailValue int64) (*Asset, error) {
	title = NormalizeTitle(title)
	description = strings.TrimSpace(description)
	if err := ValidateListing(title, description, retailValue); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Asset{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		RetailValue: retailValue,
		Status:      AssetStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateDetails replaces the listing details. Callers must ensure the asset is
// still in Draft.
func (a *Asset) UpdateDetails(title, description string, retailValue int64) error {
	title = NormalizeTitle(title)
	description = strings.TrimSpace(description)
	if err := ValidateListing(title, description, retailValue); err != nil {
		return err
	}
	a.Title = title
	a.Description = description
	a.RetailValue = retailValue
	return nil
}

// Deletable reports whether the asset may be removed by its owner. Assets tied
// to an auction (ClosedForAuction) must not be deleted.
func (a *Asset) Deletable() bool {
	return a.Status == AssetStatusDraft || a.Status == AssetStatusOpen
}
