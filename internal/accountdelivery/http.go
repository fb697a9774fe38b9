// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, owner, iban string) (domain.Account, error)
	Get(ctx context.Context, id int32) (domain.Account, error)
	List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Account, error)
	Transactions(ctx context.Context, accountID int32, pageSize, pageID int32) ([]domain.Transaction, error)
}

// BalanceService computes the funds an account may still spend.
type BalanceService interface {
	WorkingBalance(ctx context.Context, accountID int32) (decimal.Decimal, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service  Service
	balances BalanceService
}

// NewHandler returns account handler.
func NewHandler(as Service, bs BalanceService) Handler {
	return Handler{service: as, balances: bs}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	IBAN string `json:"iban" binding:"omitempty,min=15,max=34,alphanum"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	createdAccount, err := h.service.Create(ctx, authPayload.Username, req.IBAN)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIBANAlreadyExists):
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case errors.Is(err, domain.ErrValidation):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{createdAccount},
	}

	gctx.JSON(http.StatusOK, res)
}

type getRequest struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

// ownedAccount binds the account id from the uri and returns the account when
// it belongs to the authorized user. It writes the error response otherwise.
func (h *Handler) ownedAccount(gctx *gin.Context) (domain.Account, bool) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return domain.Account{}, false
	}

	acc, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return domain.Account{}, false
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return domain.Account{}, false
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)
	if acc.Owner != authPayload.Username {
		l.Warn().Int32("account_id", acc.ID).Str("username", authPayload.Username).Msg("foreign account requested")
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrInvalidOwner))

		return domain.Account{}, false
	}

	return acc, true
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	acc, ok := h.ownedAccount(gctx)
	if !ok {
		return
	}

	res := response{
		Data: data{acc},
	}

	gctx.JSON(http.StatusOK, res)
}

type dataBalance struct {
	AccountID      int32           `json:"account_id"`
	Balance        decimal.Decimal `json:"balance"`
	WorkingBalance decimal.Decimal `json:"working_balance"`
}
type responseBalance struct {
	Data dataBalance `json:"data,omitempty"`
}

// WorkingBalance handles http request to get the settled and the working balance of account.
func (h *Handler) WorkingBalance(gctx *gin.Context) {
	acc, ok := h.ownedAccount(gctx)
	if !ok {
		return
	}

	working, err := h.balances.WorkingBalance(gctx.Request.Context(), acc.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseBalance{
		Data: dataBalance{
			AccountID:      acc.ID,
			Balance:        acc.Balance,
			WorkingBalance: working,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	accounts, err := h.service.List(ctx, authPayload.Username, req.PageSize, req.PageID)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseAccounts{
		Data: dataAccounts{accounts},
	}

	gctx.JSON(http.StatusOK, res)
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// Transactions handles http request to list the transaction history of account.
func (h *Handler) Transactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	acc, ok := h.ownedAccount(gctx)
	if !ok {
		return
	}

	transactions, err := h.service.Transactions(ctx, acc.ID, req.PageSize, req.PageID)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseTransactions{
		Data: dataTransactions{transactions},
	}

	gctx.JSON(http.StatusOK, res)
}
