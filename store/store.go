// Package store defines the persistence interfaces for the catalog and
// order collections, with a MongoDB implementation and an in-memory one
// used by the tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/models"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a unique constraint,
// such as the users email index.
var ErrDuplicate = errors.New("duplicate record")

// OrderPatch carries a partial order update. A nil field is left
// untouched; a non-nil field is written even when it points at the
// zero value.
type OrderPatch struct {
	ShippingAddress *string
	City            *string
	Zip             *string
	Country         *string
	Phone           *string
	Status          *string
}

// UserPatch carries a partial user update with the same semantics as
// OrderPatch.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Phone        *string
	IsAdmin      *bool
	Street       *string
	Apartment    *string
	City         *string
	Zip          *string
	Country      *string
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	InsertCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, id primitive.ObjectID, category *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	// ListProducts returns all products, optionally filtered to the
	// given categories.
	ListProducts(ctx context.Context, categoryIDs []primitive.ObjectID) ([]models.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	InsertProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	CountProducts(ctx context.Context) (int64, error)
	ListFeatured(ctx context.Context, limit int64) ([]models.Product, error)
}

type OrderStore interface {
	// PlaceOrder persists the order header and all of its line items
	// atomically. Either everything is written or nothing is.
	PlaceOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetOrderItem(ctx context.Context, id primitive.ObjectID) (*models.OrderItem, error)
	// ListOrders returns all orders, newest first.
	ListOrders(ctx context.Context) ([]models.Order, error)
	// ListOrdersByUser returns the user's orders, newest first.
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, patch OrderPatch) (*models.Order, error)
	// DeleteOrder removes the order and every item it references.
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
	TotalSales(ctx context.Context) (float64, error)
	CountOrders(ctx context.Context) (int64, error)
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id primitive.ObjectID, patch UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	CountUsers(ctx context.Context) (int64, error)
}
