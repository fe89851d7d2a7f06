package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eshop/models"
)

func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := m.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mongo) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := m.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
	}
	return err
}

func (m *Mongo) UpdateUser(ctx context.Context, id primitive.ObjectID, patch UserPatch) (*models.User, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["passwordHash"] = *patch.PasswordHash
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.IsAdmin != nil {
		set["isAdmin"] = *patch.IsAdmin
	}
	if patch.Street != nil {
		set["street"] = *patch.Street
	}
	if patch.Apartment != nil {
		set["apartment"] = *patch.Apartment
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
	if len(set) == 0 {
		return m.GetUser(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err := m.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (m *Mongo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) CountUsers(ctx context.Context) (int64, error) {
	return m.users.CountDocuments(ctx, bson.M{})
}
