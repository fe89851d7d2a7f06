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

func (m *Mongo) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := m.categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (m *Mongo) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := m.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (m *Mongo) InsertCategory(ctx context.Context, category *models.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	_, err := m.categories.InsertOne(ctx, category)
	return err
}

func (m *Mongo) UpdateCategory(ctx context.Context, id primitive.ObjectID, category *models.Category) (*models.Category, error) {
	update := bson.M{"$set": bson.M{
		"name":  category.Name,
		"icon":  category.Icon,
		"color": category.Color,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Category
	err := m.categories.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (m *Mongo) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
