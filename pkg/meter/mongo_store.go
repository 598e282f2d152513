package meter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const mongoUpdateRetries = 16

// subscriptionDoc is the BSON layout of a subscription. A monotonically
// increasing version field backs the compare-and-swap in Update.
type subscriptionDoc struct {
	ID             string     `bson:"id"`
	SubjectID      string     `bson:"subject_id"`
	Tier           string     `bson:"tier"`
	Status         Status     `bson:"status"`
	UnitsConsumed  int64      `bson:"units_consumed"`
	LastResetAt    time.Time  `bson:"last_reset_at"`
	LimitOverride  *int64     `bson:"limit_override,omitempty"`
	LastVerifiedAt time.Time  `bson:"last_verified_at"`
	ProviderSubID  string     `bson:"provider_sub_id"`
	CreatedAt      time.Time  `bson:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at"`
	CancelledAt    *time.Time `bson:"cancelled_at,omitempty"`
	Version        int64      `bson:"version"`
}

func (d *subscriptionDoc) toSubscription() (*Subscription, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("meter: corrupt subscription id: %w", err)
	}
	subjectID, err := uuid.Parse(d.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("meter: corrupt subject id: %w", err)
	}
	return &Subscription{
		ID:             id,
		SubjectID:      subjectID,
		Tier:           d.Tier,
		Status:         d.Status,
		UnitsConsumed:  d.UnitsConsumed,
		LastResetAt:    d.LastResetAt,
		LimitOverride:  d.LimitOverride,
		LastVerifiedAt: d.LastVerifiedAt,
		ProviderSubID:  d.ProviderSubID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		CancelledAt:    d.CancelledAt,
	}, nil
}

func newSubscriptionDoc(sub *Subscription, version int64) subscriptionDoc {
	return subscriptionDoc{
		ID:             sub.ID.String(),
		SubjectID:      sub.SubjectID.String(),
		Tier:           sub.Tier,
		Status:         sub.Status,
		UnitsConsumed:  sub.UnitsConsumed,
		LastResetAt:    sub.LastResetAt,
		LimitOverride:  sub.LimitOverride,
		LastVerifiedAt: sub.LastVerifiedAt,
		ProviderSubID:  sub.ProviderSubID,
		CreatedAt:      sub.CreatedAt,
		UpdatedAt:      sub.UpdatedAt,
		CancelledAt:    sub.CancelledAt,
		Version:        version,
	}
}

// mongoStore persists subscriptions in a MongoDB collection. Update is a
// versioned compare-and-swap: the replacement only matches when the stored
// version is unchanged since the read, and retries on a fresh read
// otherwise. The subject_id field carries a unique index.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a Store backed by the given collection.
// Panics on a nil collection to fail fast during initialization.
func NewMongoStore(coll *mongo.Collection) Store {
	if coll == nil {
		panic("meter: mongo collection is required")
	}
	return &mongoStore{coll: coll}
}

func (s *mongoStore) Get(ctx context.Context, subjectID uuid.UUID) (*Subscription, error) {
	doc, err := s.load(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return doc.toSubscription()
}

func (s *mongoStore) Create(ctx context.Context, sub *Subscription) error {
	doc := newSubscriptionDoc(sub, 1)
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSubscriptionExists
		}
		return fmt.Errorf("meter: create subscription: %w", err)
	}
	return nil
}

func (s *mongoStore) Update(ctx context.Context, subjectID uuid.UUID, fn UpdateFunc) (*Subscription, error) {
	for range mongoUpdateRetries {
		doc, err := s.load(ctx, subjectID)
		if err != nil {
			return nil, err
		}

		sub, err := doc.toSubscription()
		if err != nil {
			return nil, err
		}
		if err := fn(sub); err != nil {
			return nil, err
		}

		next := newSubscriptionDoc(sub, doc.Version+1)
		res, err := s.coll.ReplaceOne(ctx,
			bson.D{
				{Key: "subject_id", Value: subjectID.String()},
				{Key: "version", Value: doc.Version},
			},
			next)
		if err != nil {
			return nil, fmt.Errorf("meter: persist update: %w", err)
		}
		if res.MatchedCount == 1 {
			return sub, nil
		}
		// version moved underneath us, retry on fresh state
	}

	return nil, ErrUpdateConflict
}

func (s *mongoStore) load(ctx context.Context, subjectID uuid.UUID) (*subscriptionDoc, error) {
	var doc subscriptionDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "subject_id", Value: subjectID.String()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("meter: load subscription: %w", err)
	}
	return &doc, nil
}
