package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

const collectionTrucks = "trucks"

type TruckRepository struct {
	col *mongo.Collection
}

func NewTruckRepository(db *mongo.Database) *TruckRepository {
	return &TruckRepository{col: db.Collection(collectionTrucks)}
}

func (r *TruckRepository) Create(ctx context.Context, t *domain.Truck) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTruckExists
		}
		return domain.WrapStore("insert truck", err)
	}
	return nil
}

func (r *TruckRepository) FindByID(ctx context.Context, id string) (*domain.Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Truck
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrTruckNotFound
		}
		return nil, domain.WrapStore("find truck", err)
	}
	return &t, nil
}

// FindNearby returns available trucks within radiusMeters of point, nearest
// first. Ordering comes from $nearSphere itself.
func (r *TruckRepository) FindNearby(ctx context.Context, point domain.GeoPoint, radiusMeters int) ([]*domain.Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, nearbyFilter(point, radiusMeters))
	if err != nil {
		return nil, domain.WrapStore("find nearby trucks", err)
	}
	defer cur.Close(ctx)

	trucks := make([]*domain.Truck, 0)
	if err := cur.All(ctx, &trucks); err != nil {
		return nil, domain.WrapStore("decode trucks", err)
	}
	return trucks, nil
}

func (r *TruckRepository) UpdateLocation(ctx context.Context, id string, point domain.GeoPoint, at time.Time) error {
	return r.update(ctx, id, bson.M{"location": point, "location_updated_at": at}, "update truck location")
}

func (r *TruckRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.update(ctx, id, bson.M{"available": available}, "update truck availability")
}

func (r *TruckRepository) update(ctx context.Context, id string, set bson.M, op string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return domain.WrapStore(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTruckNotFound
	}
	return nil
}

// EnsureIndexes creates the 2dsphere index required by $nearSphere.
func (r *TruckRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func nearbyFilter(point domain.GeoPoint, radiusMeters int) bson.M {
	return bson.M{
		"available": true,
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    point,
				"$maxDistance": radiusMeters,
			},
		},
	}
}
