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

func (m *Mongo) ListProducts(ctx context.Context, categoryIDs []primitive.ObjectID) ([]models.Product, error) {
	filter := bson.M{}
	if len(categoryIDs) > 0 {
		filter["category"] = bson.M{"$in": categoryIDs}
	}

	cursor, err := m.products.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (m *Mongo) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := m.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (m *Mongo) InsertProduct(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	_, err := m.products.InsertOne(ctx, product)
	return err
}

func (m *Mongo) UpdateProduct(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":            product.Name,
		"description":     product.Description,
		"richDescription": product.RichDescription,
		"image":           product.Image,
		"brand":           product.Brand,
		"price":           product.Price,
		"category":        product.CategoryID,
		"countInStock":    product.CountInStock,
		"rating":          product.Rating,
		"numReviews":      product.NumReviews,
		"isFeatured":      product.IsFeatured,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Product
	err := m.products.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (m *Mongo) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) CountProducts(ctx context.Context) (int64, error) {
	return m.products.CountDocuments(ctx, bson.M{})
}

func (m *Mongo) ListFeatured(ctx context.Context, limit int64) ([]models.Product, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := m.products.Find(ctx, bson.M{"isFeatured": true}, opts)
	if err != nil {
		return nil, err
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
