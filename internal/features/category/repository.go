package category

import (
	"context"
	"regexp"

	"go-marketplace/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// caseInsensitive makes name comparisons ignore case, matching the unique index
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindAll(ctx context.Context) ([]Category, error)
	List(ctx context.Context, filter ListFilter) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	SetParent(ctx context.Context, id primitive.ObjectID, parent *primitive.ObjectID, level int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type CategoryRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewCategoryRepository(mongodb *database.MongodbDB) CategoryRepository {
	return &CategoryRepositoryImpl{
		Collection: mongodb.DB.Collection("categories"),
	}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *Category) error {
	result, err := r.Collection.InsertOne(ctx, category)
	if err != nil {
		return err
	}
	category.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CategoryRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	var c Category
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepositoryImpl) FindByName(ctx context.Context, name string) (*Category, error) {
	var c Category
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := r.Collection.FindOne(ctx, bson.M{"name": name}, opts).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepositoryImpl) FindAll(ctx context.Context) ([]Category, error) {
	return r.find(ctx, bson.M{})
}

func (r *CategoryRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Category, error) {
	query := bson.M{}
	switch {
	case filter.RootOnly:
		query["parent_category"] = nil
	case filter.Parent != nil:
		query["parent_category"] = *filter.Parent
	}
	if filter.Level != nil {
		query["level"] = *filter.Level
	}
	if filter.IsActive != nil {
		query["is_active"] = *filter.IsActive
	}
	if filter.Search != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	return r.find(ctx, query)
}

func (r *CategoryRepositoryImpl) find(ctx context.Context, query bson.M) ([]Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Update rewrites every stored field of category
func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *Category) error {
	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CategoryRepositoryImpl) SetParent(ctx context.Context, id primitive.ObjectID, parent *primitive.ObjectID, level int) error {
	update := bson.M{"$set": bson.M{"parent_category": parent, "level": level}}
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CategoryRepositoryImpl) CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"parent_category": id})
}

func (r *CategoryRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "parent_category", Value: 1}, {Key: "sort_order", Value: 1}},
		},
	})
	return err
}
