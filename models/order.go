package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a persisted (product, quantity) pair. Items are created
// only as part of order placement and belong to exactly one order.
type OrderItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Order references its items by id. TotalPrice is computed from the
// product prices in effect at placement time and never recomputed.
type Order struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrderItems      []primitive.ObjectID `bson:"orderItems" json:"orderItems"`
	ShippingAddress string               `bson:"shippingAddress" json:"shippingAddress"`
	City            string               `bson:"city" json:"city"`
	Zip             string               `bson:"zip" json:"zip"`
	Country         string               `bson:"country" json:"country"`
	Phone           string               `bson:"phone" json:"phone"`
	Status          string               `bson:"status" json:"status"`
	TotalPrice      float64              `bson:"totalPrice" json:"totalPrice"`
	UserID          primitive.ObjectID   `bson:"user" json:"user"`
	DateOrdered     time.Time            `bson:"dateOrdered" json:"dateOrdered"`
}
