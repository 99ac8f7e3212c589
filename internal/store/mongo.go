package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	cerrors "catalogsvc/internal/errors"
)

// MongoStore implements ProductStore on a mongo collection holding one
// document per product, with the product id stored as _id. Single-record
// operations rely on mongo's per-document atomicity, so no extra locking
// is needed here.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates a mongo-backed store over the given collection.
func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

// Ping verifies the database connection is alive.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.col.Database().Client().Ping(ctx, nil); err != nil {
		return unavailable("ping mongo", err)
	}
	return nil
}

// LoadAll returns every persisted product.
func (s *MongoStore) LoadAll(ctx context.Context) ([]Product, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable("find products", err)
	}
	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, unavailable("decode products", err)
	}
	return products, nil
}

// ReplaceAll brings the collection to the given record set by upserting
// each record individually and then deleting the ids no longer present.
// It deliberately does not drop and re-insert the collection: concurrent
// readers must never observe an empty catalog.
func (s *MongoStore) ReplaceAll(ctx context.Context, products []Product) error {
	ids := make([]string, 0, len(products))
	opts := options.Replace().SetUpsert(true)
	for i := range products {
		ids = append(ids, products[i].ID)
		if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": products[i].ID}, products[i], opts); err != nil {
			return unavailable("upsert product", err)
		}
	}
	if _, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return unavailable("prune products", err)
	}
	return nil
}

// FindByID retrieves a product by its unique identifier.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, unavailable("find product by id", err)
	}
	return &p, nil
}

// Insert adds a new product document.
func (s *MongoStore) Insert(ctx context.Context, p Product) error {
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert product %s: %w", p.ID, cerrors.ErrDuplicateID)
		}
		return unavailable("insert product", err)
	}
	return nil
}

// Replace swaps the document with the same id for p in one atomic
// per-document operation.
func (s *MongoStore) Replace(ctx context.Context, p Product) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return unavailable("replace product", err)
	}
	if res.MatchedCount == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

// DeleteByID removes a product document by its id.
func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return unavailable("delete product", err)
	}
	if res.DeletedCount == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

// Query compiles the filter, sort and paging parameters into a single
// native find, plus a count of all matching documents ignoring paging.
// The sort specification {price: dir, _id: 1} mirrors the file variant's
// comparator so both backends page identically.
func (s *MongoStore) Query(ctx context.Context, f Filter, order SortOrder, skip, limit int64) ([]Product, int64, error) {
	filter := compileFilter(f)

	opts := options.Find().
		SetSort(bson.D{{Key: "price", Value: int(order)}, {Key: "_id", Value: 1}}).
		SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, unavailable("query products", err)
	}
	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, unavailable("decode products", err)
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, unavailable("count products", err)
	}
	return products, total, nil
}

// compileFilter translates the shared filter into a bson document with
// the same semantics as Filter.Matches. The search pattern is quoted so
// it matches as a literal substring, not as a regular expression.
func compileFilter(f Filter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Availability != "" {
		filter["availability"] = f.Availability
	}
	if f.Search != "" {
		filter["description"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	return filter
}
