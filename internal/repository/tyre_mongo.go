package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
)

var (
	_ TyreRepository = (*mongoTyreRepository)(nil)
	_ HealthChecker  = (*mongoTyreRepository)(nil)
)

// tyreDocument is a tyre as stored in the collection. The driver assigns the
// ObjectId on insert.
type tyreDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Brand     string             `bson:"brand"`
	Size      string             `bson:"size"`
	Type      string             `bson:"type"`
	Pattern   string             `bson:"pattern"`
	Stock     int                `bson:"stock"`
	Price     float64            `bson:"price"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type mongoTyreRepository struct {
	coll *mongo.Collection
}

func NewMongoTyreRepository(coll *mongo.Collection) TyreRepository {
	return &mongoTyreRepository{coll: coll}
}

// EnsureMongoIndexes creates the indexes used by brand listing and search.
func EnsureMongoIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "size", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create tyre indexes: %w", err)
	}
	return nil
}

func (r *mongoTyreRepository) CreateTyre(ctx context.Context, tyre model.Tyre) (model.Tyre, error) {
	res, err := r.coll.InsertOne(ctx, modelTyreToDocument(tyre))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Tyre{}, apperr.DuplicateTyreErr.WrapParent(err)
		}
		return model.Tyre{}, fmt.Errorf("insert tyre: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return model.Tyre{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	tyre.ID = id.Hex()
	return tyre, nil
}

func (r *mongoTyreRepository) ListTyres(ctx context.Context, params ListTyresParams) ([]model.Tyre, error) {
	opts := options.Find()
	if params.Limit > 0 {
		opts.SetLimit(params.Limit)
	}

	cursor, err := r.coll.Find(ctx, params.Filter.BSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("find tyres: %w", err)
	}

	var docs []tyreDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tyres: %w", err)
	}

	tyres := make([]model.Tyre, 0, len(docs))
	for _, doc := range docs {
		tyres = append(tyres, documentToModelTyre(doc))
	}

	return tyres, nil
}

func (r *mongoTyreRepository) UpdateTyre(ctx context.Context, id string, patch model.TyrePatch) (model.Tyre, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return model.Tyre{}, err
	}

	set := bson.D{{Key: "updated_at", Value: patch.UpdatedAt}}
	if patch.Stock != nil {
		set = append(set, bson.E{Key: "stock", Value: *patch.Stock})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc tyreDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Tyre{}, apperr.TyreNotFoundErr.WrapParent(err)
		}
		return model.Tyre{}, fmt.Errorf("find one and update tyre: %w", err)
	}

	return documentToModelTyre(doc), nil
}

func (r *mongoTyreRepository) DeleteTyre(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete tyre: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.TyreNotFoundErr
	}
	return nil
}

func (r *mongoTyreRepository) ListBrands(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "brand", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct brands: %w", err)
	}

	brands := make([]string, 0, len(values))
	for _, v := range values {
		brand, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected brand value type %T", v)
		}
		brands = append(brands, brand)
	}

	return brands, nil
}

func (r *mongoTyreRepository) IsHealthy(ctx context.Context) (bool, error) {
	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return false, fmt.Errorf("ping mongo: %w", err)
	}
	return true, nil
}

// modelTyreToDocument leaves the ObjectId zero so the driver assigns one.
func modelTyreToDocument(tyre model.Tyre) tyreDocument {
	return tyreDocument{
		Brand:     tyre.Brand,
		Size:      tyre.Size,
		Type:      tyre.Type,
		Pattern:   tyre.Pattern,
		Stock:     tyre.Stock,
		Price:     tyre.Price,
		CreatedAt: tyre.CreatedAt,
		UpdatedAt: tyre.UpdatedAt,
	}
}

func documentToModelTyre(doc tyreDocument) model.Tyre {
	return model.Tyre{
		ID:        doc.ID.Hex(),
		Brand:     doc.Brand,
		Size:      doc.Size,
		Type:      doc.Type,
		Pattern:   doc.Pattern,
		Stock:     doc.Stock,
		Price:     doc.Price,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidTyreIDErr.WrapParent(err)
	}
	return oid, nil
}
