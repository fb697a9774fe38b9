// Package httpserver manages server creation and api routing.
package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/alerting"
	"github.com/go-petr/pet-ledger/internal/balanceservice"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/store"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/internal/transactionservice"
	"github.com/go-petr/pet-ledger/internal/transferdelivery"
	"github.com/go-petr/pet-ledger/internal/transferservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

// Server holds the storage, handlers router and configuration.
type Server struct {
	Store        store.Store
	Engine       *gin.Engine
	Config       configpkg.Config
	TokenMaker   tokenpkg.Maker
	Transactions *transactionservice.Service
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
// Internal processing errors are logged and counted, and passed to the extra observers.
func New(st store.Store, logger zerolog.Logger, config configpkg.Config, observers ...transactionservice.ErrorObserver) (*Server, error) {
	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	metricsObserver, err := alerting.NewMetricsObserver(nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create metrics observer: %w", err)
	}

	observers = append([]transactionservice.ErrorObserver{
		alerting.NewLogObserver(logger),
		metricsObserver,
	}, observers...)

	accountService := accountservice.New(st)
	balanceService := balanceservice.New(st)
	transactionService := transactionservice.New(st, accountService, transactionservice.WithObservers(observers...))
	transferService := transferservice.New(st, transactionService, balanceService)

	accountHandler := accountdelivery.NewHandler(accountService, balanceService)
	transferHandler := transferdelivery.NewHandler(transferService)
	transactionHandler := transactiondelivery.NewHandler(transactionService, accountService)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.GET("/accounts/:id/balance", accountHandler.WorkingBalance)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/accounts/:id/transactions", accountHandler.Transactions)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.POST("/transfers/external", transferHandler.CreateExternal)
	authRoutes.POST("/deposits", transferHandler.Deposit)
	authRoutes.POST("/withdrawals", transferHandler.Withdraw)

	authRoutes.GET("/transactions/:id", transactionHandler.Get)
	authRoutes.POST("/transactions/:id/process", transactionHandler.Process)

	operatorRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker), middleware.RequireOperator(config.Operators))

	operatorRoutes.POST("/sweeps", transactionHandler.ProcessAll)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("money", moneypkg.ValidAmount)
		if err != nil {
			return nil, fmt.Errorf("cannot register money validator: %w", err)
		}
	}

	server := &Server{
		Store:        st,
		Engine:       engine,
		Config:       config,
		TokenMaker:   tokenMaker,
		Transactions: transactionService,
	}

	return server, nil
}
