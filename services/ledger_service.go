package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/utils"
)

// LedgerService owns earning records and the per-account balance counters.
// All balance mutations go through atomic $inc updates so concurrent events
// for the same account cannot lose a delta to a read-modify-write race.
type LedgerService struct {
	DB *mongo.Database
}

func NewLedgerService(db *mongo.Database) *LedgerService {
	return &LedgerService{DB: db}
}

// AppendEarningInput carries everything needed to create one earning record.
type AppendEarningInput struct {
	Amount         float64
	Type           string
	ReferredUserID string
	ReferredEmail  string
	ReferredName   string
	SourceID       string
	SourceType     string
	CommissionRate float64
	SourceAmount   float64
	Description    string
}

func collectionForKind(kind models.AccountKind) string {
	if kind == models.AccountKindMaster {
		return "master_affiliates"
	}
	return "affiliates"
}

// Balance counters only ever move through these update documents, one per
// ledger transition, so the deltas can be checked in isolation.

// earningBalanceUpdate credits a new commission: pending and lifetime total
// both grow by the record amount.
func earningBalanceUpdate(amount float64, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"balance.pendingEarnings": amount,
			"balance.totalEarnings":   amount,
		},
		"$set": bson.M{"updatedAt": now},
	}
}

// reserveUpdate moves a requested payout amount from pending to processing.
func reserveUpdate(amount float64, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"balance.pendingEarnings":    -amount,
			"balance.processingEarnings": amount,
		},
		"$set": bson.M{"updatedAt": now},
	}
}

// settlementUpdate finalizes a completed payout: the reserved amount leaves
// processing and lands in paid.
func settlementUpdate(amount float64, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"balance.processingEarnings": -amount,
			"balance.paidEarnings":       amount,
		},
		"$set": bson.M{
			"lastPayoutDate": now,
			"updatedAt":      now,
		},
	}
}

// reversalUpdate undoes a reservation after cancellation, returning the full
// amount to pending.
func reversalUpdate(amount float64, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"balance.processingEarnings": -amount,
			"balance.pendingEarnings":    amount,
		},
		"$set": bson.M{"updatedAt": now},
	}
}

// AppendEarning inserts a pending earning record and increments the
// account's pending and total earnings by the record amount. It also
// maintains the per-referred-user rollup and bumps referralCount on first
// contact with that user.
func (s *LedgerService) AppendEarning(ctx context.Context, kind models.AccountKind, accountID primitive.ObjectID, input AppendEarningInput) (*models.Earning, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	earning := models.Earning{
		ID:             primitive.NewObjectID(),
		AccountID:      accountID,
		AccountKind:    kind,
		Amount:         input.Amount,
		Type:           input.Type,
		Status:         models.EarningStatusPending,
		ReferredUserID: input.ReferredUserID,
		SourceID:       input.SourceID,
		SourceType:     input.SourceType,
		CommissionRate: input.CommissionRate,
		SourceAmount:   input.SourceAmount,
		Description:    input.Description,
		EarnedAt:       time.Now(),
	}

	if _, err := s.DB.Collection("earnings").InsertOne(ctx, earning); err != nil {
		return nil, err
	}

	update := earningBalanceUpdate(input.Amount, time.Now())
	if _, err := s.DB.Collection(collectionForKind(kind)).UpdateByID(ctx, accountID, update); err != nil {
		return nil, err
	}

	// Overrides do not change who referred the user, so they skip the rollup
	if input.ReferredUserID != "" && input.Type != models.EarningTypeOverride {
		if err := s.updateReferredUserRollup(ctx, kind, accountID, input); err != nil {
			log.Printf("Failed to update referred user rollup for %s: %v", input.ReferredUserID, err)
		}
	}

	utils.CommissionsRecorded.WithLabelValues(input.Type).Inc()
	utils.CommissionAmount.WithLabelValues(input.Type).Add(input.Amount)

	return &earning, nil
}

// updateReferredUserRollup upserts the rollup entry for a referred user and
// increments the affiliate's referralCount the first time the user is seen.
func (s *LedgerService) updateReferredUserRollup(ctx context.Context, kind models.AccountKind, accountID primitive.ObjectID, input AppendEarningInput) error {
	now := time.Now()
	setOnInsert := bson.M{
		"accountId":   accountID,
		"accountKind": kind,
		"userId":      input.ReferredUserID,
		"claimStatus": models.ClaimStatusUnclaimed,
		"firstSeenAt": now,
	}
	if input.ReferredEmail != "" {
		setOnInsert["email"] = input.ReferredEmail
	}
	if input.ReferredName != "" {
		setOnInsert["name"] = input.ReferredName
	}

	result, err := s.DB.Collection("referred_users").UpdateOne(ctx,
		bson.M{"accountId": accountID, "userId": input.ReferredUserID},
		bson.M{
			"$inc":         bson.M{"totalCommission": input.Amount},
			"$set":         bson.M{"lastActivityAt": now},
			"$setOnInsert": setOnInsert,
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	if result.UpsertedCount > 0 {
		_, err = s.DB.Collection(collectionForKind(kind)).UpdateByID(ctx, accountID,
			bson.M{"$inc": bson.M{"referralCount": 1}})
	}
	return err
}

// ReserveForPayout moves amount from pendingEarnings to processingEarnings.
// The filter guards against concurrent requests overdrawing the pending
// balance; a zero modified count means another payout got there first.
func (s *LedgerService) ReserveForPayout(ctx context.Context, kind models.AccountKind, accountID primitive.ObjectID, amount float64) error {
	result, err := s.DB.Collection(collectionForKind(kind)).UpdateOne(ctx,
		bson.M{
			"_id":                     accountID,
			"balance.pendingEarnings": bson.M{"$gte": amount},
		},
		reserveUpdate(amount, time.Now()))
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// RecordPayoutSettlement finalizes a completed payout: the reserved amount
// moves from processingEarnings to paidEarnings and lastPayoutDate is set.
func (s *LedgerService) RecordPayoutSettlement(ctx context.Context, kind models.AccountKind, accountID primitive.ObjectID, amount float64, payoutID primitive.ObjectID) error {
	_, err := s.DB.Collection(collectionForKind(kind)).UpdateByID(ctx, accountID, settlementUpdate(amount, time.Now()))
	if err != nil {
		log.Printf("Failed to record payout settlement %s for account %s: %v", payoutID.Hex(), accountID.Hex(), err)
	}
	return err
}

// ReverseSettlement returns a reserved amount to pendingEarnings after a
// payout cancellation.
func (s *LedgerService) ReverseSettlement(ctx context.Context, kind models.AccountKind, accountID primitive.ObjectID, amount float64) error {
	_, err := s.DB.Collection(collectionForKind(kind)).UpdateByID(ctx, accountID, reversalUpdate(amount, time.Now()))
	return err
}

// PendingEarnings returns the account's pending earning records oldest
// first, the order payout allocation consumes them in.
func (s *LedgerService) PendingEarnings(ctx context.Context, accountID primitive.ObjectID) ([]models.Earning, error) {
	cursor, err := s.DB.Collection("earnings").Find(ctx,
		bson.M{"accountId": accountID, "status": models.EarningStatusPending},
		options.Find().SetSort(bson.D{{Key: "earnedAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var earnings []models.Earning
	if err := cursor.All(ctx, &earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}
