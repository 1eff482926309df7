//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/service"
)

func TestCreatePurchase_DebitsAndPends(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Silver: 2, Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Silver: 1, Bronze: 3}, 5, true)
	svc := newSettlementService()

	purchase, err := svc.CreatePurchase(context.Background(), "student_001", "prod_001")

	require.NoError(t, err)
	assert.Equal(t, model.PurchasePending, purchase.Status)
	assert.Equal(t, model.Medals{Silver: 1, Bronze: 3}, purchase.MedalsPaid)
	assert.Equal(t, model.Medals{Silver: 1, Bronze: 7}, balanceFromDB(t, "student_001"))
	// Stock is only consumed at approval.
	assert.Equal(t, 5, quantityFromDB(t, "prod_001"))
}

func TestCreatePurchase_InsufficientFundsLeavesBalance(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 2})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 5, true)
	svc := newSettlementService()

	_, err := svc.CreatePurchase(context.Background(), "student_001", "prod_001")

	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	assert.Equal(t, model.Medals{Bronze: 2}, balanceFromDB(t, "student_001"))
}

func TestApprove_DecrementsStock(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 2, true)
	svc := newSettlementService()
	ctx := context.Background()

	purchase, err := svc.CreatePurchase(ctx, "student_001", "prod_001")
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, "admin_001", purchase.ID)

	require.NoError(t, err)
	assert.Equal(t, model.PurchaseApproved, approved.Status)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, "admin_001", *approved.ApprovedByID)
	assert.Equal(t, 1, quantityFromDB(t, "prod_001"))
	// The debit from creation stands.
	assert.Equal(t, model.Medals{Bronze: 7}, balanceFromDB(t, "student_001"))
}

func TestReject_RefundsSnapshotNotLivePrice(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 2, true)
	svc := newSettlementService()
	ctx := context.Background()

	purchase, err := svc.CreatePurchase(ctx, "student_001", "prod_001")
	require.NoError(t, err)

	// Price change between creation and rejection must not affect the refund.
	_, err = testPool.Exec(ctx, "UPDATE products SET cost_bronze = 8 WHERE id = 'prod_001'")
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, "admin_001", purchase.ID, "out of budget this term")

	require.NoError(t, err)
	assert.Equal(t, model.PurchaseRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "out of budget this term", *rejected.RejectionReason)
	assert.Equal(t, model.Medals{Bronze: 10}, balanceFromDB(t, "student_001"))
	assert.Equal(t, 2, quantityFromDB(t, "prod_001"))
}

func TestSettle_SecondTransitionRejected(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 2, true)
	svc := newSettlementService()
	ctx := context.Background()

	purchase, err := svc.CreatePurchase(ctx, "student_001", "prod_001")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "admin_001", purchase.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, "admin_001", purchase.ID, "changed my mind")
	assert.ErrorIs(t, err, service.ErrNotPending)

	// No refund happened and stock stayed decremented.
	assert.Equal(t, model.Medals{Bronze: 7}, balanceFromDB(t, "student_001"))
	assert.Equal(t, 1, quantityFromDB(t, "prod_001"))
}

func TestApprove_OutOfStockKeepsPurchasePending(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 10})
	createTestAccount(t, "student_002", model.Medals{Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 1, true)
	svc := newSettlementService()
	ctx := context.Background()

	first, err := svc.CreatePurchase(ctx, "student_001", "prod_001")
	require.NoError(t, err)
	second, err := svc.CreatePurchase(ctx, "student_002", "prod_001")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "admin_001", first.ID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "admin_001", second.ID)
	assert.ErrorIs(t, err, service.ErrProductUnavailable)

	// The losing purchase stays pending so the admin can reject and refund it.
	stuck, err := svc.ListPurchasesByStatus(ctx, model.PurchasePending)
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, second.ID, stuck[0].ID)
	assert.Equal(t, 0, quantityFromDB(t, "prod_001"))
}

// Two admins settling the same purchase concurrently: exactly one transition
// commits.
func TestSettle_ConcurrentTransitionRace(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 2, true)
	ctx := context.Background()

	purchase, err := newSettlementService().CreatePurchase(ctx, "student_001", "prod_001")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = newSettlementService().Approve(ctx, "admin_001", purchase.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = newSettlementService().Reject(ctx, "admin_002", purchase.ID, "duplicate request")
	}()
	wg.Wait()

	succeeded, denied := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrNotPending):
			denied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one settlement should win the row lock")
	assert.Equal(t, 1, denied)

	// The balance is consistent with whichever transition won: the debit stands
	// if approved, or is fully refunded if rejected.
	balance := balanceFromDB(t, "student_001")
	if errs[0] == nil {
		assert.Equal(t, model.Medals{Bronze: 7}, balance)
		assert.Equal(t, 1, quantityFromDB(t, "prod_001"))
	} else {
		assert.Equal(t, model.Medals{Bronze: 10}, balance)
		assert.Equal(t, 2, quantityFromDB(t, "prod_001"))
	}
}

// A name-only catalog update racing an approval: the update rewrites the full
// product row, so it must not resurrect the unit the approval sold.
func TestUpdateProduct_ConcurrentWithApproval(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 5, true)
	ctx := context.Background()

	purchase, err := newSettlementService().CreatePurchase(ctx, "student_001", "prod_001")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := newSettlementService().Approve(ctx, "admin_001", purchase.ID)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		name := "Sticker pack (large)"
		_, err := newSettlementService().UpdateProduct(ctx, "prod_001", &model.UpdateProductRequest{Name: &name})
		assert.NoError(t, err)
	}()
	wg.Wait()

	assert.Equal(t, 4, quantityFromDB(t, "prod_001"), "the rename must not undo the sold unit")
}

// Concurrent purchases of the last unit: both debits may commit, but only one
// approval wins the stock.
func TestApprove_LastUnitRace(t *testing.T) {
	cleanupTables(t)
	createTestAccount(t, "student_001", model.Medals{Bronze: 10})
	createTestAccount(t, "student_002", model.Medals{Bronze: 10})
	createTestProduct(t, "prod_001", "Sticker pack", model.Medals{Bronze: 3}, 1, true)
	ctx := context.Background()
	svc := newSettlementService()

	first, err := svc.CreatePurchase(ctx, "student_001", "prod_001")
	require.NoError(t, err)
	second, err := svc.CreatePurchase(ctx, "student_002", "prod_001")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = newSettlementService().Approve(ctx, "admin_001", first.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = newSettlementService().Approve(ctx, "admin_002", second.ID)
	}()
	wg.Wait()

	succeeded, outOfStock := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrProductUnavailable):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "only one approval should get the last unit")
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, 0, quantityFromDB(t, "prod_001"))
}
