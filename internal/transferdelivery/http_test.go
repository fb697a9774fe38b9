package transferdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/test"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("money", moneypkg.ValidAmount); err != nil {
			fmt.Fprintf(os.Stderr, "v.RegisterValidation returned error: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

type testCase struct {
	name          string
	requestBody   gin.H
	withoutAuth   bool
	buildStubs    func(transferService *MockService)
	checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
}

func runCases(t *testing.T, method, url string, route func(h *Handler) gin.HandlerFunc, username string, testCases []testCase) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transferService := NewMockService(ctrl)
			transferHandler := NewHandler(transferService)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.Handle(method, url, route(transferHandler))

			tc.buildStubs(transferService)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			request, err := http.NewRequest(method, url, bytes.NewReader(body))
			require.NoError(t, err)

			if !tc.withoutAuth {
				err = middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, username, time.Minute)
				require.NoError(t, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			tc.checkResponse(t, recorder)
		})
	}
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) response {
	t.Helper()

	var res response
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))

	return res
}

func requireTransaction(t *testing.T, want domain.Transaction, res response) {
	t.Helper()

	require.NotNil(t, res.Data)

	if diff := cmp.Diff(want, res.Data.Transaction, test.EquateDecimals); diff != "" {
		t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate(t *testing.T) {
	username := randompkg.Owner()
	from := test.RandomAccount(username)
	to := test.RandomAccount(randompkg.Owner())
	transfer := test.RandomTransfer(from, to)
	amount := transfer.Amount.String()

	arg := domain.CreateTransferParams{
		FromAccountID: from.ID,
		ToIBAN:        to.IBAN,
		Amount:        amount,
		Title:         transfer.Title,
	}

	body := gin.H{
		"from_account_id": from.ID,
		"to_iban":         to.IBAN,
		"amount":          amount,
		"title":           transfer.Title,
	}

	badRequest := func(wantError string) func(t *testing.T, recorder *httptest.ResponseRecorder) {
		return func(t *testing.T, recorder *httptest.ResponseRecorder) {
			require.Equal(t, http.StatusBadRequest, recorder.Code)
			require.Equal(t, wantError, decodeResponse(t, recorder).Error)
		}
	}

	withBody := func(key string, value any) gin.H {
		h := gin.H{}
		for k, v := range body {
			h[k] = v
		}
		h[key] = value

		return h
	}

	testCases := []testCase{
		{
			name:        "OK",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(transfer, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				res := decodeResponse(t, recorder)
				require.Empty(t, res.Error)
				requireTransaction(t, transfer, res)
			},
		},
		{
			name:        "NoAuthorization",
			requestBody: body,
			withoutAuth: true,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name:        "InvalidBindFromAccountID",
			requestBody: withBody("from_account_id", 0),
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: badRequest("FromAccountID field is required"),
		},
		{
			name:        "InvalidBindToIBAN",
			requestBody: withBody("to_iban", "PL-1"),
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: badRequest("ToIBAN field should be at least 15"),
		},
		{
			name:        "InvalidAmountPrecision",
			requestBody: withBody("amount", "10.001"),
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: badRequest("Amount field should be a positive amount with at most 2 decimal places"),
		},
		{
			name:        "NegativeAmount",
			requestBody: withBody("amount", "-10"),
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: badRequest("Amount field should be a positive amount with at most 2 decimal places"),
		},
		{
			name:        "InvalidOwner",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrInvalidOwner)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
				require.Equal(t, domain.ErrInvalidOwner.Error(), decodeResponse(t, recorder).Error)
			},
		},
		{
			name:        "DestinationNotFound",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name:        "InsufficientFunds",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrInsufficientFunds)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				res := decodeResponse(t, recorder)
				require.Equal(t, domain.ErrInsufficientFunds.Error(), res.Error)
				require.Nil(t, res.Data)
			},
		},
		{
			name:        "ProcessedWithFailure",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				failed := transfer
				failed.Type = domain.TypeTransferOwn
				failed.Status = domain.StatusInsufficientFunds
				failed.Error = domain.ErrInsufficientFunds.Error()

				transferService.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(failed, domain.ErrInsufficientFunds)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				res := decodeResponse(t, recorder)
				require.Equal(t, domain.ErrInsufficientFunds.Error(), res.Error)
				require.NotNil(t, res.Data)
				require.Equal(t, domain.StatusInsufficientFunds, res.Data.Transaction.Status)
			},
		},
		{
			name:        "InternalError",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, fmt.Errorf("%w: connection reset", errorspkg.ErrInternal))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
				require.Equal(t, errorspkg.ErrInternal.Error(), decodeResponse(t, recorder).Error)
			},
		},
	}

	runCases(t, http.MethodPost, "/transfers", func(h *Handler) gin.HandlerFunc { return h.Create }, username, testCases)
}

func TestCreateExternal(t *testing.T) {
	username := randompkg.Owner()
	from := test.RandomAccount(username)
	iban := randompkg.IBAN()
	external := domain.NewExternalTransfer(from, iban, decimal.NewFromInt(250), "rent")
	external.ID = 7

	arg := domain.CreateTransferParams{
		FromAccountID: from.ID,
		ToIBAN:        iban,
		Amount:        "250",
		Title:         "rent",
	}

	body := gin.H{
		"from_account_id": from.ID,
		"to_iban":         iban,
		"amount":          "250",
		"title":           "rent",
	}

	testCases := []testCase{
		{
			name:        "OK",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					TransferExternal(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(external, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				res := decodeResponse(t, recorder)
				requireTransaction(t, external, res)
				require.Equal(t, domain.StatusNew, res.Data.Transaction.Status)
			},
		},
		{
			name:        "MissingIBAN",
			requestBody: gin.H{"from_account_id": from.ID, "amount": "250"},
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().TransferExternal(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				require.Equal(t, "ToIBAN field is required", decodeResponse(t, recorder).Error)
			},
		},
	}

	runCases(t, http.MethodPost, "/transfers/external", func(h *Handler) gin.HandlerFunc { return h.CreateExternal }, username, testCases)
}

func TestDeposit(t *testing.T) {
	username := randompkg.Owner()
	account := test.RandomAccount(username)
	deposit := domain.NewDeposit(account, decimal.RequireFromString("99.99"), "salary")
	deposit.ID = 11
	deposit.Status = domain.StatusDone

	arg := domain.CreateOperationParams{
		AccountID: account.ID,
		Amount:    "99.99",
		Title:     "salary",
	}

	body := gin.H{"account_id": account.ID, "amount": "99.99", "title": "salary"}

	testCases := []testCase{
		{
			name:        "OK",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(deposit, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireTransaction(t, deposit, decodeResponse(t, recorder))
			},
		},
		{
			name:        "MissingAmount",
			requestBody: gin.H{"account_id": account.ID},
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				require.Equal(t, "Amount field is required", decodeResponse(t, recorder).Error)
			},
		},
		{
			name:        "Pending",
			requestBody: body,
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransactionPending)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
	}

	runCases(t, http.MethodPost, "/deposits", func(h *Handler) gin.HandlerFunc { return h.Deposit }, username, testCases)
}

func TestWithdraw(t *testing.T) {
	username := randompkg.Owner()
	account := test.RandomAccount(username)

	arg := domain.CreateOperationParams{
		AccountID: account.ID,
		Amount:    "10",
	}

	withdrawal := domain.NewWithdrawal(account, decimal.NewFromInt(10), "")
	withdrawal.ID = 12
	withdrawal.Status = domain.StatusDone

	testCases := []testCase{
		{
			name:        "OK",
			requestBody: gin.H{"account_id": account.ID, "amount": "10"},
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(withdrawal, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				requireTransaction(t, withdrawal, decodeResponse(t, recorder))
			},
		},
		{
			name:        "ZeroAmount",
			requestBody: gin.H{"account_id": account.ID, "amount": "0"},
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "InsufficientFunds",
			requestBody: gin.H{"account_id": account.ID, "amount": "10"},
			buildStubs: func(transferService *MockService) {
				transferService.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(username), gomock.Eq(arg)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrInsufficientFunds)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				require.Equal(t, domain.ErrInsufficientFunds.Error(), decodeResponse(t, recorder).Error)
			},
		},
	}

	runCases(t, http.MethodPost, "/withdrawals", func(h *Handler) gin.HandlerFunc { return h.Withdraw }, username, testCases)
}
