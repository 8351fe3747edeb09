// internal/api/handler/wallet.go
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

// WalletHandler handles HTTP requests for users and wallets.
type WalletHandler struct {
	service service.WalletService
	logger  *zap.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{service: svc, logger: logger}
}

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrValidation
	}
	return id, nil
}

// CreateUserRequest represents the request body for user registration.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUser handles user registration.
// POST /users
func (h *WalletHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrValidation)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusCreated, user)
}

// AmountRequest represents the request body for deposits and withdrawals.
type AmountRequest struct {
	Amount int64 `json:"amount"`
}

// Deposit handles the deposit money request.
// POST /users/{userID}/wallet/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrValidation)
		return
	}

	user, err := h.service.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message":       "Deposit successful",
		"user_id":       user.ID,
		"total_balance": user.TotalBalance,
	})
}

// Withdraw handles the withdraw money request.
// POST /users/{userID}/wallet/withdraw
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrValidation)
		return
	}

	user, err := h.service.Withdraw(r.Context(), userID, req.Amount)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message":       "Withdrawal successful",
		"user_id":       user.ID,
		"total_balance": user.TotalBalance,
	})
}

// GetWalletBalance returns the reconciled balance view.
// GET /users/{userID}/wallet
func (h *WalletHandler) GetWalletBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	balance, err := h.service.GetWalletBalance(r.Context(), userID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	respondWithJSON(h.logger, w, http.StatusOK, balance)
}
