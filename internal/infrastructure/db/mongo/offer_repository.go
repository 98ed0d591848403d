package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/haulmatch/dispatch-api/internal/core/domain"
)

const collectionOffers = "offers"

type OfferRepository struct {
	col *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{col: db.Collection(collectionOffers)}
}

// CreateMany inserts all offers of one order in a single round trip.
func (r *OfferRepository) CreateMany(ctx context.Context, offers []*domain.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, len(offers))
	for i, o := range offers {
		docs[i] = o
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return domain.WrapStore("insert offers", err)
	}
	return nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Offer
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, domain.WrapStore("find offer", err)
	}
	return &o, nil
}

func (r *OfferRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.Offer, error) {
	return r.list(ctx, bson.M{"order_id": orderID}, 1)
}

// ListByTruck returns the offers of a truck, newest first. An empty status
// matches every status.
func (r *OfferRepository) ListByTruck(ctx context.Context, truckID string, status domain.OfferStatus) ([]*domain.Offer, error) {
	return r.list(ctx, truckOffersFilter(truckID, status), -1)
}

func (r *OfferRepository) list(ctx context.Context, filter bson.M, order int) ([]*domain.Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: order}}))
	if err != nil {
		return nil, domain.WrapStore("list offers", err)
	}
	defer cur.Close(ctx)

	offers := make([]*domain.Offer, 0)
	if err := cur.All(ctx, &offers); err != nil {
		return nil, domain.WrapStore("decode offers", err)
	}
	return offers, nil
}

// Respond records a truck's answer. Only pending offers match the update
// filter, so of two concurrent answers exactly one wins.
func (r *OfferRepository) Respond(ctx context.Context, id string, status domain.OfferStatus, at time.Time) (*domain.Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Offer
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": domain.OfferPending},
		bson.M{"$set": bson.M{"status": status, "responded_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !isNotFound(err) {
		return nil, domain.WrapStore("respond offer", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, domain.WrapStore("respond offer", err)
	}
	if n == 0 {
		return nil, domain.ErrOfferNotFound
	}
	return nil, domain.ErrOfferAlreadyResponded
}

func (r *OfferRepository) DeleteByOrder(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"order_id": orderID}); err != nil {
		return domain.WrapStore("delete offers", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the offers collection.
func (r *OfferRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
		{Keys: bson.D{{Key: "truck_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func truckOffersFilter(truckID string, status domain.OfferStatus) bson.M {
	filter := bson.M{"truck_id": truckID}
	if status != "" {
		filter["status"] = status
	}
	return filter
}
