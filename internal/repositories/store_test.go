package repositories_test

import (
	"errors"
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestUnitOfWorkCommitAppliesInOrder(t *testing.T) {
	store := repositories.NewMemoryStore()
	var applied []string

	uow := repositories.NewUnitOfWork()
	uow.Add("first", func(repositories.Store) error {
		applied = append(applied, "first")
		return nil
	})
	uow.Add("second", func(repositories.Store) error {
		applied = append(applied, "second")
		return nil
	})

	assert.Equal(t, 2, uow.Len())
	assert.NoError(t, uow.Commit(store))
	assert.Equal(t, []string{"first", "second"}, applied)
}

func TestUnitOfWorkRollsBackOnFailure(t *testing.T) {
	store := repositories.NewMemoryStore()
	product := &models.Product{ID: "prod-1", Name: "Keyboard", Price: 75.0, Stock: 10}
	assert.NoError(t, store.Products().Create(product))

	boom := errors.New("broken mutation")
	uow := repositories.NewUnitOfWork()
	uow.Add("take stock", func(tx repositories.Store) error {
		return tx.Products().DecrementStock("prod-1", 4)
	})
	uow.Add("fail", func(repositories.Store) error {
		return boom
	})

	err := uow.Commit(store)
	assert.ErrorIs(t, err, boom)

	// The decrement before the failing step must not stick.
	got, getErr := store.Products().GetByID("prod-1")
	assert.NoError(t, getErr)
	assert.Equal(t, 10, got.Stock)
}

func TestDecrementStockGuard(t *testing.T) {
	store := repositories.NewMemoryStore()
	assert.NoError(t, store.Products().Create(&models.Product{ID: "prod-1", Name: "Mouse", Price: 25.0, Stock: 2}))

	err := store.Products().DecrementStock("prod-1", 5)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	got, _ := store.Products().GetByID("prod-1")
	assert.Equal(t, 2, got.Stock)

	assert.NoError(t, store.Products().DecrementStock("prod-1", 2))
	got, _ = store.Products().GetByID("prod-1")
	assert.Equal(t, 0, got.Stock)
}

func TestMarkCheckedOutIsAtMostOnce(t *testing.T) {
	store := repositories.NewMemoryStore()
	cart := &models.Cart{CustomerID: "cust-1"}
	assert.NoError(t, store.Carts().Create(cart))

	assert.NoError(t, store.Carts().MarkCheckedOut(cart.ID))

	err := store.Carts().MarkCheckedOut(cart.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// A checked-out cart is no longer anyone's active cart.
	_, err = store.Carts().GetActiveByCustomer("cust-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoActiveCart))
}

func TestCartCreateRejectsSecondOpenCart(t *testing.T) {
	store := repositories.NewMemoryStore()
	first := &models.Cart{CustomerID: "cust-1"}
	assert.NoError(t, store.Carts().Create(first))

	// A second open cart for the same customer must not be accepted at the
	// storage layer, regardless of what the caller checked beforehand.
	err := store.Carts().Create(&models.Cart{CustomerID: "cust-1"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// Other customers are unaffected.
	assert.NoError(t, store.Carts().Create(&models.Cart{CustomerID: "cust-2"}))

	// Once the cart is spent, the customer can open a new one.
	assert.NoError(t, store.Carts().MarkCheckedOut(first.ID))
	assert.NoError(t, store.Carts().Create(&models.Cart{CustomerID: "cust-1"}))
}

func TestCartLinesSurviveRoundTrip(t *testing.T) {
	store := repositories.NewMemoryStore()
	cart := &models.Cart{CustomerID: "cust-1"}
	assert.NoError(t, store.Carts().Create(cart))
	assert.NoError(t, store.Carts().AddLine(&models.CartLine{CartID: cart.ID, ProductID: "prod-1", Quantity: 1}))
	assert.NoError(t, store.Carts().AddLine(&models.CartLine{CartID: cart.ID, ProductID: "prod-2", Quantity: 2}))

	got, err := store.Carts().GetActiveByCustomer("cust-1")
	assert.NoError(t, err)
	assert.Len(t, got.Lines, 2)
	assert.Equal(t, "prod-1", got.Lines[0].ProductID)
	assert.Equal(t, "prod-2", got.Lines[1].ProductID)

	assert.NoError(t, store.Carts().DeleteLine(got.Lines[0].ID))
	got, err = store.Carts().GetActiveByCustomer("cust-1")
	assert.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}
