// internal/api/handler/asset.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"auction-house/internal/service"
	"auction-house/internal/util"
)

// AssetHandler handles HTTP requests for assets.
type AssetHandler struct {
	service service.AssetService
	logger  *zap.Logger
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(svc service.AssetService, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{service: svc, logger: logger}
}

func assetIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "assetID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrValidation
	}
	return id, nil
}

// actingUserID reads the acting user from the X-User-ID header. The auth layer
// in front of this service is expected to set it; there is no ambient user.
func actingUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrValidation
	}
	return id, nil
}

// AssetRequest represents the request body for creating or updating an asset.
type AssetRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RetailValue int64  `json:"retail_value"`
}

// CreateAsset handles asset creation.
// POST /assets
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	ownerID, err := actingUserID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	var req AssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrValidation)
		return
	}

	asset, err := h.service.CreateAsset(r.Context(), ownerID, req.Title, req.Description, req.RetailValue)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusCreated, asset)
}

// UpdateAsset handles updating a Draft asset.
// PUT /assets/{assetID}
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	requesterID, err := actingUserID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	var req AssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrValidation)
		return
	}

	asset, err := h.service.UpdateAsset(r.Context(), assetID, requesterID, req.Title, req.Description, req.RetailValue)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, asset)
}

// DeleteAsset handles asset deletion.
// DELETE /assets/{assetID}
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	requesterID, err := actingUserID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	if err := h.service.DeleteAsset(r.Context(), assetID, requesterID); err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]string{"message": "Asset deleted"})
}

// OpenToAuction flips a Draft asset to Open.
// POST /assets/{assetID}/open
func (h *AssetHandler) OpenToAuction(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	requesterID, err := actingUserID(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	asset, err := h.service.OpenToAuction(r.Context(), assetID, requesterID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, asset)
}

// GetAsset returns one asset.
// GET /assets/{assetID}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	asset, err := h.service.GetAsset(r.Context(), assetID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, asset)
}

// GetAssetsByOwner returns all assets of one user.
// GET /users/{userID}/assets
func (h *AssetHandler) GetAssetsByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	assets, err := h.service.GetAssetsByOwner(r.Context(), ownerID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, assets)
}
