// Package services holds the order placement and lifecycle logic on
// top of the store interfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"eshop/models"
	"eshop/store"
)

var (
	// ErrValidation marks missing or invalid input.
	ErrValidation = errors.New("invalid input")
	// ErrPersistence marks a failed store write.
	ErrPersistence = errors.New("persistence failure")
)

// DefaultOrderStatus is applied when a placement request carries no
// status.
const DefaultOrderStatus = "Pending"

// Mailer sends the order confirmation after a successful placement.
type Mailer interface {
	SendOrderConfirmation(toEmail string, order *models.Order) error
}

// OrderLine is one requested (product, quantity) pair.
type OrderLine struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	OrderItems      []OrderLine
	ShippingAddress string
	City            string
	Zip             string
	Country         string
	Phone           string
	Status          string
	User            string
}

// OrderUser is the user projection attached to order reads.
type OrderUser struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// OrderItemDetail is a line item expanded with its product and the
// product's category. Product is nil when the product was deleted
// after the order was placed; historical orders keep their stale
// references.
type OrderItemDetail struct {
	ID       primitive.ObjectID `json:"id"`
	Quantity int                `json:"quantity"`
	Product  *ProductDetail     `json:"product"`
}

type ProductDetail struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Price    float64            `json:"price"`
	Image    string             `json:"image"`
	Category *models.Category   `json:"category"`
}

// OrderSummary is an order with the user's display name attached.
type OrderSummary struct {
	ID              primitive.ObjectID   `json:"id"`
	OrderItems      []primitive.ObjectID `json:"orderItems"`
	ShippingAddress string               `json:"shippingAddress"`
	City            string               `json:"city"`
	Zip             string               `json:"zip"`
	Country         string               `json:"country"`
	Phone           string               `json:"phone"`
	Status          string               `json:"status"`
	TotalPrice      float64              `json:"totalPrice"`
	User            OrderUser            `json:"user"`
	DateOrdered     time.Time            `json:"dateOrdered"`
}

// OrderDetail is an order with every reference expanded.
type OrderDetail struct {
	ID              primitive.ObjectID `json:"id"`
	OrderItems      []OrderItemDetail  `json:"orderItems"`
	ShippingAddress string             `json:"shippingAddress"`
	City            string             `json:"city"`
	Zip             string             `json:"zip"`
	Country         string             `json:"country"`
	Phone           string             `json:"phone"`
	Status          string             `json:"status"`
	TotalPrice      float64            `json:"totalPrice"`
	User            OrderUser          `json:"user"`
	DateOrdered     time.Time          `json:"dateOrdered"`
}

type OrderService struct {
	orders     store.OrderStore
	products   store.ProductStore
	users      store.UserStore
	categories store.CategoryStore
	mailer     Mailer
}

// NewOrderService wires the service. mailer may be nil, in which case
// no confirmation emails are sent.
func NewOrderService(orders store.OrderStore, products store.ProductStore, users store.UserStore, categories store.CategoryStore, mailer Mailer) *OrderService {
	return &OrderService{
		orders:     orders,
		products:   products,
		users:      users,
		categories: categories,
		mailer:     mailer,
	}
}

// Place validates the requested lines, resolves each product's current
// unit price, sums the line totals and persists the order together
// with its items in a single atomic write. Nothing is stored when any
// line fails.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if len(in.OrderItems) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	userID, err := primitive.ObjectIDFromHex(in.User)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id %q", ErrValidation, in.User)
	}

	// Every line is validated before any pricing work starts, so a bad
	// line never leaves goroutines behind.
	productIDs := make([]primitive.ObjectID, len(in.OrderItems))
	for i, line := range in.OrderItems {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
		}
		productID, err := primitive.ObjectIDFromHex(line.Product)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id %q", ErrValidation, line.Product)
		}
		productIDs[i] = productID
	}

	items := make([]models.OrderItem, len(in.OrderItems))
	lineTotals := make([]float64, len(in.OrderItems))

	// Lines are priced independently; the totals slice keeps one slot
	// per line so the sum counts every line exactly once.
	g, gctx := errgroup.WithContext(ctx)
	for i, line := range in.OrderItems {
		i, line := i, line
		productID := productIDs[i]
		g.Go(func() error {
			product, err := s.products.GetProduct(gctx, productID)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("product %s: %w", line.Product, store.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			items[i] = models.OrderItem{
				ID:        primitive.NewObjectID(),
				ProductID: productID,
				Quantity:  line.Quantity,
			}
			lineTotals[i] = product.Price * float64(line.Quantity)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var totalPrice float64
	itemIDs := make([]primitive.ObjectID, len(items))
	for i := range items {
		itemIDs[i] = items[i].ID
		totalPrice += lineTotals[i]
	}

	status := in.Status
	if status == "" {
		status = DefaultOrderStatus
	}

	order := &models.Order{
		ID:              primitive.NewObjectID(),
		OrderItems:      itemIDs,
		ShippingAddress: in.ShippingAddress,
		City:            in.City,
		Zip:             in.Zip,
		Country:         in.Country,
		Phone:           in.Phone,
		Status:          status,
		TotalPrice:      totalPrice,
		UserID:          userID,
		DateOrdered:     time.Now().UTC(),
	}

	if err := s.orders.PlaceOrder(ctx, order, items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.sendConfirmation(ctx, order)
	return order, nil
}

func (s *OrderService) sendConfirmation(ctx context.Context, order *models.Order) {
	if s.mailer == nil {
		return
	}
	user, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		return
	}
	go func(email string, o models.Order) {
		if err := s.mailer.SendOrderConfirmation(email, &o); err != nil {
			log.Printf("order confirmation email to %s failed: %v", email, err)
		}
	}(user.Email, *order)
}

// Get returns the order with the user's name and every line expanded
// with its product and the product's category.
func (s *OrderService) Get(ctx context.Context, id string) (*OrderDetail, error) {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id %q", ErrValidation, id)
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, order), nil
}

func (s *OrderService) expand(ctx context.Context, order *models.Order) *OrderDetail {
	detail := &OrderDetail{
		ID:              order.ID,
		OrderItems:      []OrderItemDetail{},
		ShippingAddress: order.ShippingAddress,
		City:            order.City,
		Zip:             order.Zip,
		Country:         order.Country,
		Phone:           order.Phone,
		Status:          order.Status,
		TotalPrice:      order.TotalPrice,
		User:            s.userProjection(ctx, order.UserID),
		DateOrdered:     order.DateOrdered,
	}

	for _, itemID := range order.OrderItems {
		item, err := s.orders.GetOrderItem(ctx, itemID)
		if err != nil {
			continue
		}
		itemDetail := OrderItemDetail{ID: item.ID, Quantity: item.Quantity}
		if product, err := s.products.GetProduct(ctx, item.ProductID); err == nil {
			productDetail := &ProductDetail{
				ID:    product.ID,
				Name:  product.Name,
				Price: product.Price,
				Image: product.Image,
			}
			if category, err := s.categories.GetCategory(ctx, product.CategoryID); err == nil {
				productDetail.Category = category
			}
			itemDetail.Product = productDetail
		}
		detail.OrderItems = append(detail.OrderItems, itemDetail)
	}
	return detail
}

func (s *OrderService) userProjection(ctx context.Context, userID primitive.ObjectID) OrderUser {
	projection := OrderUser{ID: userID}
	if user, err := s.users.GetUser(ctx, userID); err == nil {
		projection.Name = user.Name
	}
	return projection
}

// List returns all orders newest-first with user names attached.
func (s *OrderService) List(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, OrderSummary{
			ID:              order.ID,
			OrderItems:      order.OrderItems,
			ShippingAddress: order.ShippingAddress,
			City:            order.City,
			Zip:             order.Zip,
			Country:         order.Country,
			Phone:           order.Phone,
			Status:          order.Status,
			TotalPrice:      order.TotalPrice,
			User:            s.userProjection(ctx, order.UserID),
			DateOrdered:     order.DateOrdered,
		})
	}
	return summaries, nil
}

// ListForUser returns the user's orders newest-first, expanded like Get.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]OrderDetail, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id %q", ErrValidation, userID)
	}

	orders, err := s.orders.ListOrdersByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	details := make([]OrderDetail, 0, len(orders))
	for _, order := range orders {
		details = append(details, *s.expand(ctx, &order))
	}
	return details, nil
}

// Update applies the patch to the order. Fields absent from the patch
// are left unchanged; fields present are written even when empty.
func (s *OrderService) Update(ctx context.Context, id string, patch store.OrderPatch) (*models.Order, error) {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id %q", ErrValidation, id)
	}
	return s.orders.UpdateOrder(ctx, orderID, patch)
}

// Delete removes the order and cascades to all of its line items.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid order id %q", ErrValidation, id)
	}
	return s.orders.DeleteOrder(ctx, orderID)
}

// TotalSales sums totalPrice across all orders; 0 when there are none.
func (s *OrderService) TotalSales(ctx context.Context) (float64, error) {
	total, err := s.orders.TotalSales(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return total, nil
}

// Count returns the number of stored orders.
func (s *OrderService) Count(ctx context.Context) (int64, error) {
	count, err := s.orders.CountOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
