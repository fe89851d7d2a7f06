package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo implements every store interface over a single database.
type Mongo struct {
	client     *mongo.Client
	categories *mongo.Collection
	products   *mongo.Collection
	orders     *mongo.Collection
	orderItems *mongo.Collection
	users      *mongo.Collection
}

func NewMongo(client *mongo.Client, dbName string) *Mongo {
	db := client.Database(dbName)
	return &Mongo{
		client:     client,
		categories: db.Collection("categories"),
		products:   db.Collection("products"),
		orders:     db.Collection("orders"),
		orderItems: db.Collection("orderitems"),
		users:      db.Collection("users"),
	}
}

var (
	_ CategoryStore = (*Mongo)(nil)
	_ ProductStore  = (*Mongo)(nil)
	_ OrderStore    = (*Mongo)(nil)
	_ UserStore     = (*Mongo)(nil)
)

// withTransaction runs fn inside a single session transaction so that
// multi-document writes are all-or-nothing.
func (m *Mongo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
