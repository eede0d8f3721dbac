package server

import (
	// Go Internal Packages
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	// Local Packages
	models "tx-pipeline/models"

	// External Packages
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TransactionSubmitter interface {
	Submit(ctx context.Context, input models.TransactionRequest) (string, error)
}

type StatusProvider interface {
	Project(ctx context.Context, id string) (*models.StatusResponse, error)
}

type AssetLister interface {
	Balances(ctx context.Context, walletID string) ([]models.Asset, error)
}

// Server is the HTTP front end of the pipeline: it submits
// transactions, answers status queries and lists wallet assets.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger *zap.Logger
}

func New(submitter TransactionSubmitter, status StatusProvider, assets AssetLister, logger *zap.Logger, port int, prodMode bool) *Server {
	if prodMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		srv:    &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: engine},
		logger: logger,
	}

	h := newHandlers(submitter, status, assets, logger)
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/transactions/deposit", h.deposit)
		v1.POST("/transactions/withdraw", h.withdraw)
		v1.GET("/transactions/:id", h.transactionStatus)
		v1.GET("/wallets/:id/assets", h.walletAssets)
	}
	return s
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
