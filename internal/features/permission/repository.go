package permission

import (
	"context"

	"go-marketplace/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PermissionRepository interface {
	Create(ctx context.Context, permission *Permission) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Permission, error)
	FindByKey(ctx context.Context, key string) (*Permission, error)
	List(ctx context.Context, category string) ([]Permission, error)
	ExistingKeys(ctx context.Context, keys []string) ([]string, error)
	Update(ctx context.Context, id primitive.ObjectID, permission *Permission) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Upsert(ctx context.Context, permission *Permission) error
	EnsureIndexes(ctx context.Context) error
}

type PermissionRepositoryImpl struct {
	collection *mongo.Collection
}

func NewPermissionRepository(mongodb *database.MongodbDB) PermissionRepository {
	return &PermissionRepositoryImpl{
		collection: mongodb.DB.Collection("permissions"),
	}
}

func (r *PermissionRepositoryImpl) Create(ctx context.Context, permission *Permission) error {
	result, err := r.collection.InsertOne(ctx, permission)
	if err != nil {
		return err
	}
	permission.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *PermissionRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Permission, error) {
	var p Permission
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepositoryImpl) FindByKey(ctx context.Context, key string) (*Permission, error) {
	var p Permission
	if err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepositoryImpl) List(ctx context.Context, category string) ([]Permission, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "key", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var perms []Permission
	if err := cursor.All(ctx, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *PermissionRepositoryImpl) ExistingKeys(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"key": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"key": bson.M{"$in": keys}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []Permission
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(found))
	for _, p := range found {
		out = append(out, p.Key)
	}
	return out, nil
}

func (r *PermissionRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, permission *Permission) error {
	update := bson.M{
		"$set": bson.M{
			"name":        permission.Name,
			"description": permission.Description,
			"category":    permission.Category,
			"updated_at":  permission.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *PermissionRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Upsert inserts the permission by key, refreshing descriptive fields if it exists
func (r *PermissionRepositoryImpl) Upsert(ctx context.Context, permission *Permission) error {
	update := bson.M{
		"$set": bson.M{
			"name":        permission.Name,
			"description": permission.Description,
			"category":    permission.Category,
			"updated_at":  permission.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"key":        permission.Key,
			"created_at": permission.CreatedAt,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"key": permission.Key}, update, options.Update().SetUpsert(true))
	return err
}

func (r *PermissionRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
