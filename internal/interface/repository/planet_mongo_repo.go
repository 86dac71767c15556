package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlanetCollection is the catalog collection name
const PlanetCollection = "planets"

// MongoPlanetRepository implements PlanetRepository on MongoDB
type MongoPlanetRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoPlanetRepository creates a new MongoDB planet repository
func NewMongoPlanetRepository(db *mongo.Database) *MongoPlanetRepository {
	return &MongoPlanetRepository{
		collection: db.Collection(PlanetCollection),
		now:        time.Now,
	}
}

var _ repository.PlanetRepository = (*MongoPlanetRepository)(nil)

// EnsureIndexes creates the unique key index and the query indexes
func (r *MongoPlanetRepository) EnsureIndexes(ctx context.Context) error {
	// Unique index on key - the catalog identity
	keyIndex := mongo.IndexModel{
		Keys:    bson.M{"key": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on name for az/za sorting
	nameIndex := mongo.IndexModel{
		Keys: bson.M{"name": 1},
	}

	// Index on distances for listing and range filters
	distancePcIndex := mongo.IndexModel{
		Keys: bson.M{"distancePc": 1},
	}
	distanceMkmIndex := mongo.IndexModel{
		Keys: bson.M{"distanceMkm": 1},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		keyIndex,
		nameIndex,
		distancePcIndex,
		distanceMkmIndex,
	})
	if err != nil {
		return &entity.StoreError{Op: "create indexes", Err: err}
	}
	return nil
}

// Upsert replaces every field of the planet stored under planet.Key, or inserts it
func (r *MongoPlanetRepository) Upsert(ctx context.Context, planet *entity.Planet) error {
	now := r.now().UTC()

	updateDoc := bson.M{
		"key":           planet.Key,
		"name":          planet.Name,
		"hostStar":      planet.HostStar,
		"discoveryYear": planet.DiscoveryYear,
		"distancePc":    planet.DistancePc,
		"distanceLy":    planet.DistanceLy,
		"distanceMkm":   planet.DistanceMkm,
		"radiusKm":      planet.RadiusKm,
		"massE24":       planet.MassE24,
		"source":        planet.Source,
		"updatedAt":     now,
	}

	// return the stored createdAt so replaces report the original insert time
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"createdAt": 1})
	filter := bson.M{"key": planet.Key}

	var stored struct {
		CreatedAt time.Time `bson:"createdAt"`
	}
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{
			"$set":         updateDoc,
			"$setOnInsert": bson.M{"createdAt": now},
		},
		opts,
	).Decode(&stored)
	if err != nil {
		return &entity.StoreError{Op: "upsert", Err: err}
	}

	planet.CreatedAt = stored.CreatedAt
	planet.UpdatedAt = now
	return nil
}

// FindByKey finds a planet by its key
func (r *MongoPlanetRepository) FindByKey(ctx context.Context, key string) (*entity.Planet, error) {
	var planet entity.Planet
	err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&planet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entity.ErrPlanetNotFound
		}
		return nil, &entity.StoreError{Op: "find by key", Err: err}
	}
	return &planet, nil
}

// List finds planets matching filter in sort order
func (r *MongoPlanetRepository) List(ctx context.Context, filter entity.PlanetFilter, sort entity.PlanetSort, limit int) ([]*entity.Planet, error) {
	findOpts := options.Find().SetSort(mongoSort(sort))
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, mongoFilter(filter), findOpts)
	if err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}
	defer cursor.Close(ctx)

	planets := make([]*entity.Planet, 0)
	if err := cursor.All(ctx, &planets); err != nil {
		return nil, &entity.StoreError{Op: "list", Err: err}
	}
	return planets, nil
}

// Sample returns min(count, catalog size) distinct random planets.
// $sample may yield the same document twice on large collections, so
// duplicates are dropped and refilled by sampling again among the keys
// not seen yet.
func (r *MongoPlanetRepository) Sample(ctx context.Context, count int) ([]*entity.Planet, error) {
	planets := make([]*entity.Planet, 0, max(count, 0))
	if count <= 0 {
		return planets, nil
	}

	seen := make(map[string]bool, count)
	for len(planets) < count {
		need := count - len(planets)

		pipeline := mongo.Pipeline{}
		if len(seen) > 0 {
			keys := make([]string, 0, len(seen))
			for key := range seen {
				keys = append(keys, key)
			}
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
				{Key: "key", Value: bson.D{{Key: "$nin", Value: keys}}},
			}}})
		}
		pipeline = append(pipeline, bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: need}}}})

		returned, added, err := r.samplePass(ctx, pipeline, seen, &planets)
		if err != nil {
			return nil, err
		}
		// a short duplicate-free pass means the collection is exhausted
		if added == 0 || (returned < need && added == returned) {
			break
		}
	}
	return planets, nil
}

func (r *MongoPlanetRepository) samplePass(ctx context.Context, pipeline mongo.Pipeline, seen map[string]bool, planets *[]*entity.Planet) (returned, added int, err error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, &entity.StoreError{Op: "sample", Err: err}
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var planet entity.Planet
		if err := cursor.Decode(&planet); err != nil {
			return returned, added, &entity.StoreError{Op: "sample", Err: err}
		}
		returned++
		if seen[planet.Key] {
			continue
		}
		seen[planet.Key] = true
		*planets = append(*planets, &planet)
		added++
	}
	if err := cursor.Err(); err != nil {
		return returned, added, &entity.StoreError{Op: "sample", Err: err}
	}
	return returned, added, nil
}

// Count returns the catalog size
func (r *MongoPlanetRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, &entity.StoreError{Op: "count", Err: err}
	}
	return n, nil
}

func mongoFilter(f entity.PlanetFilter) bson.M {
	filter := bson.M{}
	if f.Query != "" {
		pattern := regexp.QuoteMeta(f.Query)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"hostStar": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if f.MaxDistanceMkm > 0 {
		// $lte never matches null, so records without a distance drop out
		filter["distanceMkm"] = bson.M{"$lte": f.MaxDistanceMkm}
	}
	return filter
}

func mongoSort(s entity.PlanetSort) bson.D {
	field := string(s.Field)
	if field == "" {
		field = string(entity.SortByDistancePc)
	}
	dir := 1
	if s.Descending {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "key", Value: 1}}
}
