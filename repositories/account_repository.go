package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/betzone/affiliate_backend/models"
)

// AccountRepository performs targeted writes against the two account
// collections without loading the full document.
type AccountRepository struct {
	db *mongo.Database
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) collectionFor(kind models.AccountKind) *mongo.Collection {
	if kind == models.AccountKindMaster {
		return r.db.Collection("master_affiliates")
	}
	return r.db.Collection("affiliates")
}

// UpdatePaymentDetails stores the payout destination for an account.
func (r *AccountRepository) UpdatePaymentDetails(ctx context.Context, accountID primitive.ObjectID, kind models.AccountKind, method string, details models.PaymentDetails) error {
	filter := bson.M{"_id": accountID}
	update := bson.M{
		"$set": bson.M{
			"paymentMethod":  method,
			"paymentDetails": details,
			"updatedAt":      time.Now(),
		},
	}

	result, err := r.collectionFor(kind).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateMinimumPayout stores the account's payout threshold.
func (r *AccountRepository) UpdateMinimumPayout(ctx context.Context, accountID primitive.ObjectID, kind models.AccountKind, minimum float64) error {
	filter := bson.M{"_id": accountID}
	update := bson.M{
		"$set": bson.M{
			"minimumPayout": minimum,
			"updatedAt":     time.Now(),
		},
	}

	result, err := r.collectionFor(kind).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
