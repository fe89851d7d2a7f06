package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/models"
	"eshop/store"
)

// recordingOrderStore counts PlaceOrder calls so tests can assert that
// failed placements never reach the store.
type recordingOrderStore struct {
	*store.Memory
	placeCalls int
}

func (r *recordingOrderStore) PlaceOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	r.placeCalls++
	return r.Memory.PlaceOrder(ctx, order, items)
}

func setupService(t *testing.T) (*OrderService, *store.Memory, *recordingOrderStore) {
	t.Helper()
	mem := store.NewMemory()
	rec := &recordingOrderStore{Memory: mem}
	svc := NewOrderService(rec, mem, mem, mem, nil)
	return svc, mem, rec
}

func seedCategory(t *testing.T, mem *store.Memory) models.Category {
	t.Helper()
	category := models.Category{Name: "Electronics", Icon: "bolt", Color: "#00f"}
	require.NoError(t, mem.InsertCategory(context.Background(), &category))
	return category
}

func seedProduct(t *testing.T, mem *store.Memory, name string, price float64, categoryID primitive.ObjectID) models.Product {
	t.Helper()
	product := models.Product{
		Name:         name,
		Description:  name + " description",
		Price:        price,
		CategoryID:   categoryID,
		CountInStock: 100,
		DateCreated:  time.Now().UTC(),
	}
	require.NoError(t, mem.InsertProduct(context.Background(), &product))
	return product
}

func seedUser(t *testing.T, mem *store.Memory, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email}
	require.NoError(t, mem.InsertUser(context.Background(), &user))
	return user
}

func placeInput(userID string, lines ...OrderLine) PlaceOrderInput {
	return PlaceOrderInput{
		OrderItems:      lines,
		ShippingAddress: "123 Main St",
		City:            "LA",
		Zip:             "90001",
		Country:         "US",
		Phone:           "555-1234",
		User:            userID,
	}
}

func TestPlaceOrderComputesTotalPrice(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	p1 := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	p2 := seedProduct(t, mem, "mouse", 5.50, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	order, err := svc.Place(ctx, placeInput(user.ID.Hex(),
		OrderLine{Product: p1.ID.Hex(), Quantity: 2},
		OrderLine{Product: p2.ID.Hex(), Quantity: 1},
	))
	require.NoError(t, err)

	assert.InDelta(t, 25.50, order.TotalPrice, 1e-9)
	assert.Len(t, order.OrderItems, 2)
	assert.Equal(t, DefaultOrderStatus, order.Status)
	assert.Equal(t, user.ID, order.UserID)

	// Every line item was persisted.
	for _, itemID := range order.OrderItems {
		item, err := mem.GetOrderItem(ctx, itemID)
		require.NoError(t, err)
		assert.Positive(t, item.Quantity)
	}
}

func TestPlaceOrderTotalFrozenAfterPriceChange(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	order, err := svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 2}))
	require.NoError(t, err)
	require.InDelta(t, 20.00, order.TotalPrice, 1e-9)

	repriced := product
	repriced.Price = 99.99
	_, err = mem.UpdateProduct(ctx, product.ID, &repriced)
	require.NoError(t, err)

	detail, err := svc.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.InDelta(t, 20.00, detail.TotalPrice, 1e-9)
}

func TestPlaceOrderEmptyLines(t *testing.T) {
	svc, _, rec := setupService(t)

	_, err := svc.Place(context.Background(), placeInput(primitive.NewObjectID().Hex()))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, rec.placeCalls)
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	svc, mem, rec := setupService(t)

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	for _, quantity := range []int{0, -3} {
		_, err := svc.Place(context.Background(), placeInput(user.ID.Hex(),
			OrderLine{Product: product.ID.Hex(), Quantity: quantity}))
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Zero(t, rec.placeCalls)
}

func TestPlaceOrderUnknownProductPersistsNothing(t *testing.T) {
	svc, mem, rec := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	_, err := svc.Place(ctx, placeInput(user.ID.Hex(),
		OrderLine{Product: product.ID.Hex(), Quantity: 1},
		OrderLine{Product: primitive.NewObjectID().Hex(), Quantity: 1},
	))
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, rec.placeCalls)

	count, err := mem.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPlaceOrderInvalidIDs(t *testing.T) {
	svc, mem, rec := setupService(t)

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)

	_, err := svc.Place(context.Background(), placeInput("not-a-hex-id",
		OrderLine{Product: product.ID.Hex(), Quantity: 1}))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Place(context.Background(), placeInput(primitive.NewObjectID().Hex(),
		OrderLine{Product: "not-a-hex-id", Quantity: 1}))
	assert.ErrorIs(t, err, ErrValidation)

	// A bad line after valid ones still fails the whole request
	// before any pricing or persistence work happens.
	_, err = svc.Place(context.Background(), placeInput(primitive.NewObjectID().Hex(),
		OrderLine{Product: product.ID.Hex(), Quantity: 1},
		OrderLine{Product: product.ID.Hex(), Quantity: 1},
		OrderLine{Product: "not-a-hex-id", Quantity: 1}))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, rec.placeCalls)
}

func TestDeleteOrderCascadesToItems(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	p1 := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	p2 := seedProduct(t, mem, "mouse", 5.50, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	order, err := svc.Place(ctx, placeInput(user.ID.Hex(),
		OrderLine{Product: p1.ID.Hex(), Quantity: 1},
		OrderLine{Product: p2.ID.Hex(), Quantity: 2},
	))
	require.NoError(t, err)
	require.Len(t, order.OrderItems, 2)

	require.NoError(t, svc.Delete(ctx, order.ID.Hex()))

	_, err = svc.Get(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, store.ErrNotFound)
	for _, itemID := range order.OrderItems {
		_, err := mem.GetOrderItem(ctx, itemID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	svc, _, _ := setupService(t)
	err := svc.Delete(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCountOrdersAfterCreateAndDelete(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	var orders []*models.Order
	for i := 0; i < 3; i++ {
		order, err := svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 1}))
		require.NoError(t, err)
		orders = append(orders, order)
	}
	require.NoError(t, svc.Delete(ctx, orders[0].ID.Hex()))

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestTotalSales(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	p1 := seedProduct(t, mem, "keyboard", 20.00, category.ID)
	p2 := seedProduct(t, mem, "mouse", 5.50, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	_, err := svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: p1.ID.Hex(), Quantity: 1}))
	require.NoError(t, err)
	_, err = svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: p2.ID.Hex(), Quantity: 1}))
	require.NoError(t, err)

	total, err := svc.TotalSales(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25.50, total, 1e-9)
}

func TestTotalSalesEmptyIsZero(t *testing.T) {
	svc, _, _ := setupService(t)

	total, err := svc.TotalSales(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListOrdersNewestFirst(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	var placed []*models.Order
	for i := 0; i < 3; i++ {
		order, err := svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 1}))
		require.NoError(t, err)
		placed = append(placed, order)
		time.Sleep(5 * time.Millisecond)
	}

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, placed[2].ID, listed[0].ID)
	assert.Equal(t, placed[1].ID, listed[1].ID)
	assert.Equal(t, placed[0].ID, listed[2].ID)
	assert.Equal(t, "Alice", listed[0].User.Name)
}

func TestListForUserFiltersAndSorts(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	alice := seedUser(t, mem, "Alice", "alice@example.com")
	bob := seedUser(t, mem, "Bob", "bob@example.com")

	first, err := svc.Place(ctx, placeInput(alice.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 1}))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.Place(ctx, placeInput(bob.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 1}))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := svc.Place(ctx, placeInput(alice.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 2}))
	require.NoError(t, err)

	details, err := svc.ListForUser(ctx, alice.ID.Hex())
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, second.ID, details[0].ID)
	assert.Equal(t, first.ID, details[1].ID)
	for _, detail := range details {
		assert.Equal(t, alice.ID, detail.User.ID)
		require.NotEmpty(t, detail.OrderItems)
		require.NotNil(t, detail.OrderItems[0].Product)
		assert.Equal(t, "keyboard", detail.OrderItems[0].Product.Name)
	}
}

func TestUpdateOrderPatchSemantics(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	order, err := svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 1}))
	require.NoError(t, err)

	// Only status is present: everything else stays.
	shipped := "Shipped"
	updated, err := svc.Update(ctx, order.ID.Hex(), store.OrderPatch{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, "Shipped", updated.Status)
	assert.Equal(t, "123 Main St", updated.ShippingAddress)
	assert.Equal(t, "LA", updated.City)

	// An explicitly empty value is written, not skipped.
	empty := ""
	updated, err = svc.Update(ctx, order.ID.Hex(), store.OrderPatch{Phone: &empty})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Phone)
	assert.Equal(t, "Shipped", updated.Status)
}

func TestUpdateOrderNotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	status := "Shipped"
	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), store.OrderPatch{Status: &status})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetOrderExpandsReferences(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	order, err := svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 2}))
	require.NoError(t, err)

	detail, err := svc.Get(ctx, order.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, "Alice", detail.User.Name)
	require.Len(t, detail.OrderItems, 1)
	item := detail.OrderItems[0]
	assert.Equal(t, 2, item.Quantity)
	require.NotNil(t, item.Product)
	assert.Equal(t, "keyboard", item.Product.Name)
	assert.InDelta(t, 10.00, item.Product.Price, 1e-9)
	require.NotNil(t, item.Product.Category)
	assert.Equal(t, "Electronics", item.Product.Category.Name)
}

func TestGetOrderToleratesDeletedProduct(t *testing.T) {
	svc, mem, _ := setupService(t)
	ctx := context.Background()

	category := seedCategory(t, mem)
	product := seedProduct(t, mem, "keyboard", 10.00, category.ID)
	user := seedUser(t, mem, "Alice", "alice@example.com")

	order, err := svc.Place(ctx, placeInput(user.ID.Hex(), OrderLine{Product: product.ID.Hex(), Quantity: 1}))
	require.NoError(t, err)

	// Historical orders keep stale references; the expansion just
	// leaves the product empty.
	require.NoError(t, mem.DeleteProduct(ctx, product.ID))

	detail, err := svc.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	require.Len(t, detail.OrderItems, 1)
	assert.Nil(t, detail.OrderItems[0].Product)
	assert.InDelta(t, 10.00, detail.TotalPrice, 1e-9)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Get(context.Background(), "garbage")
	assert.True(t, errors.Is(err, ErrValidation))
}
