// Package transactiondelivery exposes transaction lookups and processing over http.
package transactiondelivery

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

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	ProcessByID(ctx context.Context, id int64) (domain.Transaction, error)
	ProcessAllNew(ctx context.Context) (domain.BatchSummary, error)
}

// AccountService resolves the accounts a transaction touches.
type AccountService interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service  Service
	accounts AccountService
}

// NewHandler returns transaction handler.
func NewHandler(ts Service, as AccountService) *Handler {
	return &Handler{service: ts, accounts: as}
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}

type response struct {
	Data  *data  `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type dataSummary struct {
	Summary domain.BatchSummary `json:"summary"`
}

// involves reports whether username owns one of the accounts of t.
func (h *Handler) involves(ctx context.Context, t domain.Transaction, username string) (bool, error) {
	for _, id := range t.AccountIDs() {
		account, err := h.accounts.Get(ctx, id)
		if err != nil {
			return false, err
		}

		if account.Owner == username {
			return true, nil
		}
	}

	return false, nil
}

// ownedTransaction binds the transaction id from the uri and returns the
// transaction when the authorized user owns one of its accounts. It writes
// the error response otherwise.
func (h *Handler) ownedTransaction(gctx *gin.Context) (domain.Transaction, bool) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return domain.Transaction{}, false
	}

	t, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return domain.Transaction{}, false
		}

		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return domain.Transaction{}, false
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	ok, err := h.involves(ctx, t, authPayload.Username)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return domain.Transaction{}, false
	}

	if !ok {
		l.Warn().Int64("transaction_id", t.ID).Str("username", authPayload.Username).Msg("foreign transaction requested")
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrInvalidOwner))

		return domain.Transaction{}, false
	}

	return t, true
}

// Get handles http request to get a transaction.
func (h *Handler) Get(gctx *gin.Context) {
	t, ok := h.ownedTransaction(gctx)
	if !ok {
		return
	}

	gctx.JSON(http.StatusOK, response{Data: &data{t}})
}

// Process handles http request to process a single NEW transaction.
// The recorded outcome is returned along with the error that ended it.
func (h *Handler) Process(gctx *gin.Context) {
	t, ok := h.ownedTransaction(gctx)
	if !ok {
		return
	}

	ctx := gctx.Request.Context()

	processed, err := h.service.ProcessByID(ctx, t.ID)
	if err == nil {
		gctx.JSON(http.StatusOK, response{Data: &data{processed}})
		return
	}

	zerolog.Ctx(ctx).Info().Err(err).Int64("transaction_id", t.ID).Send()

	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrTransactionPending),
		errors.Is(err, domain.ErrTransactionFinalized):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrAccountNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAccountConflict),
		errors.Is(err, domain.ErrInsufficientFunds):
		code = http.StatusUnprocessableEntity
	default:
		err = errorspkg.ErrInternal
	}

	res := response{Error: err.Error()}
	if processed.ID != 0 {
		res.Data = &data{processed}
	}

	gctx.JSON(code, res)
}

// ProcessAll handles http request to sweep all NEW transactions.
func (h *Handler) ProcessAll(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	summary, err := h.service.ProcessAllNew(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataSummary{summary}})
}
