package server

import (
	// Go Internal Packages
	"net/http"

	// Local Packages
	errors "tx-pipeline/errors"
	models "tx-pipeline/models"

	// External Packages
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handlers struct {
	submitter TransactionSubmitter
	status    StatusProvider
	assets    AssetLister
	logger    *zap.Logger
}

func newHandlers(submitter TransactionSubmitter, status StatusProvider, assets AssetLister, logger *zap.Logger) *handlers {
	return &handlers{submitter: submitter, status: status, assets: assets, logger: logger}
}

type transactionBody struct {
	WalletID string `json:"wallet_id"`
	Symbol   string `json:"symbol"`
	Amount   string `json:"amount"`
}

func (h *handlers) deposit(c *gin.Context) {
	h.submit(c, models.TypeDeposit, "Deposit process initiated.")
}

func (h *handlers) withdraw(c *gin.Context) {
	h.submit(c, models.TypeWithdraw, "Withdrawal process initiated.")
}

// submit rejects only outright malformed requests synchronously;
// business validation belongs to the pipeline and surfaces via the
// status query.
func (h *handlers) submit(c *gin.Context, txType, ack string) {
	var body transactionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}
	if body.WalletID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Wallet ID is required."})
		return
	}

	input := models.TransactionRequest{
		WalletID: body.WalletID,
		Symbol:   body.Symbol,
		Amount:   body.Amount,
		Type:     txType,
	}
	id, err := h.submitter.Submit(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("failed to submit transaction", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":        ack,
		"transaction_id": id,
	})
}

func (h *handlers) transactionStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Transaction ID is required."})
		return
	}

	status, err := h.status.Project(c.Request.Context(), id)
	if err != nil {
		if errors.KindOf(err) == errors.NotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Transaction not found."})
			return
		}
		h.logger.Error("failed to query transaction status", zap.String("transaction_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *handlers) walletAssets(c *gin.Context) {
	walletID := c.Param("id")

	assets, err := h.assets.Balances(c.Request.Context(), walletID)
	if err != nil {
		h.logger.Error("failed to list assets", zap.String("wallet_id", walletID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}
	if len(assets) == 0 {
		c.JSON(http.StatusOK, gin.H{"assets": []models.Asset{}, "message": "No assets found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets, "message": "Assets fetched successfully"})
}
