package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eshop/models"
)

var orderSortNewestFirst = options.Find().SetSort(bson.D{{Key: "dateOrdered", Value: -1}})

func (m *Mongo) PlaceOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return m.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if len(items) > 0 {
			docs := make([]interface{}, len(items))
			for i := range items {
				docs[i] = items[i]
			}
			if _, err := m.orderItems.InsertMany(sc, docs); err != nil {
				return err
			}
		}
		_, err := m.orders.InsertOne(sc, order)
		return err
	})
}

func (m *Mongo) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := m.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *Mongo) GetOrderItem(ctx context.Context, id primitive.ObjectID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := m.orderItems.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *Mongo) ListOrders(ctx context.Context) ([]models.Order, error) {
	return m.findOrders(ctx, bson.M{})
}

func (m *Mongo) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return m.findOrders(ctx, bson.M{"user": userID})
}

func (m *Mongo) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := m.orders.Find(ctx, filter, orderSortNewestFirst)
	if err != nil {
		return nil, err
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (m *Mongo) UpdateOrder(ctx context.Context, id primitive.ObjectID, patch OrderPatch) (*models.Order, error) {
	set := bson.M{}
	if patch.ShippingAddress != nil {
		set["shippingAddress"] = *patch.ShippingAddress
	}
	if patch.City != nil {
		set["city"] = *patch.City
	}
	if patch.Zip != nil {
		set["zip"] = *patch.Zip
	}
	if patch.Country != nil {
		set["country"] = *patch.Country
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if len(set) == 0 {
		return m.GetOrder(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Order
	err := m.orders.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (m *Mongo) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	return m.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var order models.Order
		err := m.orders.FindOneAndDelete(sc, bson.M{"_id": id}).Decode(&order)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if len(order.OrderItems) > 0 {
			filter := bson.M{"_id": bson.M{"$in": order.OrderItems}}
			if _, err := m.orderItems.DeleteMany(sc, filter); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *Mongo) TotalSales(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalsales": bson.M{"$sum": "$totalPrice"},
		}}},
	}

	cursor, err := m.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}

	var results []struct {
		TotalSales float64 `bson:"totalsales"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].TotalSales, nil
}

func (m *Mongo) CountOrders(ctx context.Context) (int64, error) {
	return m.orders.CountDocuments(ctx, bson.M{})
}
