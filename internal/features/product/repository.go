package product

import (
	"context"

	"go-marketplace/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProductRepository only exposes what category management needs; products
// themselves are managed elsewhere.
type ProductRepository interface {
	CountActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

type ProductRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewProductRepository(mongodb *database.MongodbDB) ProductRepository {
	return &ProductRepositoryImpl{
		Collection: mongodb.DB.Collection("products"),
	}
}

// CountActiveByCategory counts products in the category that are not soft-deleted
func (r *ProductRepositoryImpl) CountActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{
		"category":   categoryID,
		"deleted_at": nil,
	})
}
