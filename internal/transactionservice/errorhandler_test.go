package transactionservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

func TestHandleFailedUpdate(t *testing.T) {
	stored := domain.Transaction{
		ID:     7,
		Type:   domain.TypeWithdrawal,
		Status: domain.StatusNew,
		Amount: dec("10.00"),
	}

	testCases := []struct {
		name       string
		updateErr  error
		reloaded   domain.Transaction
		reloadErr  error
		wantStatus domain.Status
	}{
		{
			name:       "StoreUnavailableKeepsStoredStatus",
			updateErr:  errorspkg.ErrInternal,
			reloaded:   stored,
			wantStatus: domain.StatusNew,
		},
		{
			name:      "AlreadyFinalizedReturnsStoredRow",
			updateErr: domain.ErrTransactionFinalized,
			reloaded: func() domain.Transaction {
				done := stored
				done.Status = domain.StatusDone
				return done
			}(),
			wantStatus: domain.StatusDone,
		},
		{
			name:       "ReloadFailsReturnsInput",
			updateErr:  errorspkg.ErrInternal,
			reloadErr:  errorspkg.ErrInternal,
			wantStatus: domain.StatusNew,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			updater := NewMockStatusUpdater(ctrl)

			updater.EXPECT().
				UpdateTransactionStatus(gomock.Any(), stored.ID, domain.StatusInsufficientFunds, gomock.Any()).
				Times(1).
				Return(domain.Transaction{}, tc.updateErr)
			updater.EXPECT().
				GetTransaction(gomock.Any(), stored.ID).
				Times(1).
				Return(tc.reloaded, tc.reloadErr)

			got := NewErrorHandler(updater).Handle(context.Background(), stored, domain.ErrInsufficientFunds)

			require.Equal(t, stored.ID, got.ID)
			require.Equal(t, tc.wantStatus, got.Status)
		})
	}
}

func TestHandlePersistsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	updater := NewMockStatusUpdater(ctrl)

	tr := domain.Transaction{ID: 3, Type: domain.TypeDeposit, Status: domain.StatusNew, Amount: dec("5.00")}
	saved := tr
	saved.Status = domain.StatusValidationError
	saved.Error = domain.ErrAccountNotFound.Error()

	updater.EXPECT().
		UpdateTransactionStatus(gomock.Any(), tr.ID, domain.StatusValidationError, domain.ErrAccountNotFound.Error()).
		Times(1).
		Return(saved, nil)
	updater.EXPECT().GetTransaction(gomock.Any(), gomock.Any()).Times(0)

	got := NewErrorHandler(updater).Handle(context.Background(), tr, domain.ErrAccountNotFound)
	require.Equal(t, saved, got)
}
