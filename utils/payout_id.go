package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	payoutIDPrefix      = "PAY"
	payoutSuffixLength  = 3
	maxPayoutIDAttempts = 5
)

// ErrPayoutIDExhausted is returned when no collision-free payout ID could be
// produced within the attempt budget.
var ErrPayoutIDExhausted = errors.New("payout ID generation exhausted retry attempts")

// GeneratePayoutID produces a human-readable payout identifier: the PAY
// prefix, the last 6 digits of the unix timestamp, and 3 random characters.
// Regenerates on collision against the payouts collection.
func GeneratePayoutID(ctx context.Context, db *mongo.Database) (string, error) {
	payouts := db.Collection("payouts")

	for attempt := 0; attempt < maxPayoutIDAttempts; attempt++ {
		suffix, err := randomAlphanumeric(payoutSuffixLength)
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s%06d%s", payoutIDPrefix, time.Now().Unix()%1000000, suffix)

		count, err := payouts.CountDocuments(ctx, bson.M{"payoutId": id})
		if err != nil {
			return "", err
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", ErrPayoutIDExhausted
}
