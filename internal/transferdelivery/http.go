// Package transferdelivery manages delivery layer of money movements requested by account owners.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, username string, arg domain.CreateTransferParams) (domain.Transaction, error)
	TransferExternal(ctx context.Context, username string, arg domain.CreateTransferParams) (domain.Transaction, error)
	Deposit(ctx context.Context, username string, arg domain.CreateOperationParams) (domain.Transaction, error)
	Withdraw(ctx context.Context, username string, arg domain.CreateOperationParams) (domain.Transaction, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type transferRequest struct {
	FromAccountID int32  `json:"from_account_id" binding:"required,min=1"`
	ToIBAN        string `json:"to_iban" binding:"required,min=15,max=34,alphanum"`
	Amount        string `json:"amount" binding:"required,money"`
	Title         string `json:"title" binding:"max=140"`
}

type operationRequest struct {
	AccountID int32  `json:"account_id" binding:"required,min=1"`
	Amount    string `json:"amount" binding:"required,money"`
	Title     string `json:"title" binding:"max=140"`
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}

type response struct {
	Data  *data  `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// statusCode maps a service error onto an http status.
func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOwner):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAccountConflict),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransactionPending),
		errors.Is(err, domain.ErrTransactionFinalized):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respond writes the registered transaction along with the error of its
// processing, if any. Internal causes are never exposed.
func respond(gctx *gin.Context, t domain.Transaction, err error) {
	if err == nil {
		gctx.JSON(http.StatusOK, response{Data: &data{t}})
		return
	}

	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Int64("transaction_id", t.ID).Send()

	code := statusCode(err)
	if code == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	res := response{Error: err.Error()}
	if t.ID != 0 {
		res.Data = &data{t}
	}

	gctx.JSON(code, res)
}

func (h *Handler) transfer(gctx *gin.Context, run func(context.Context, string, domain.CreateTransferParams) (domain.Transaction, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateTransferParams{
		FromAccountID: req.FromAccountID,
		ToIBAN:        req.ToIBAN,
		Amount:        req.Amount,
		Title:         req.Title,
	}

	t, err := run(ctx, authPayload.Username, arg)
	respond(gctx, t, err)
}

func (h *Handler) operation(gctx *gin.Context, run func(context.Context, string, domain.CreateOperationParams) (domain.Transaction, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req operationRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateOperationParams{
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Title:     req.Title,
	}

	t, err := run(ctx, authPayload.Username, arg)
	respond(gctx, t, err)
}

// Create handles http request to create a transfer between two accounts of the bank.
func (h *Handler) Create(gctx *gin.Context) {
	h.transfer(gctx, h.service.Transfer)
}

// CreateExternal handles http request to create a transfer to an account outside the bank.
func (h *Handler) CreateExternal(gctx *gin.Context) {
	h.transfer(gctx, h.service.TransferExternal)
}

// Deposit handles http request to deposit money into an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.operation(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw money from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.operation(gctx, h.service.Withdraw)
}
