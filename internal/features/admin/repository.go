package admin

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go-marketplace/internal/common/models"
	"go-marketplace/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListFilter struct {
	Role           string
	IncludeDeleted bool
	Search         string
}

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]models.Admin, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) error
	CountByRole(ctx context.Context, roleKey string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type AdminRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAdminRepository(mongodb *database.MongodbDB) AdminRepository {
	return &AdminRepositoryImpl{
		Collection: mongodb.DB.Collection("admins"),
	}
}

func (r *AdminRepositoryImpl) Create(ctx context.Context, admin *models.Admin) error {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	result, err := r.Collection.InsertOne(ctx, admin)
	if err != nil {
		return err
	}
	admin.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *AdminRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]models.Admin, error) {
	var oids []primitive.ObjectID
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []models.Admin{}, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var admins []models.Admin
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// FindByEmail matches case-insensitively; emails are stored lower-cased
func (r *AdminRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepositoryImpl) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]models.Admin, int64, error) {
	query := bson.M{}
	if !filter.IncludeDeleted {
		query["deleted_at"] = nil
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
			bson.M{"email": pattern},
		}
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"created_at": -1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var admins []models.Admin
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

func (r *AdminRepositoryImpl) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftDelete stamps deleted_at and deactivates; admins are never removed
func (r *AdminRepositoryImpl) SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.Update(ctx, id, bson.M{"deleted_at": at, "is_active": false, "updated_at": at})
}

func (r *AdminRepositoryImpl) CountByRole(ctx context.Context, roleKey string) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"role": roleKey})
}

func (r *AdminRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	return err
}
