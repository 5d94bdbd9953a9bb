package utils

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MasterCodePrefix is reserved for master affiliate referral codes. Affiliate
// codes never start with it, so the resolver can route on the prefix alone.
const MasterCodePrefix = "MAST"

const (
	affiliateCodeLength = 8
	masterSuffixLength  = 6
	maxCodeAttempts     = 10
)

// ErrCodeGenerationExhausted is returned when no unique referral code could
// be produced within the attempt budget.
var ErrCodeGenerationExhausted = errors.New("referral code generation exhausted retry attempts")

// randomAlphanumeric returns an uppercase alphanumeric string of length n.
func randomAlphanumeric(n int) (string, error) {
	randomBytes := make([]byte, n)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	s = strings.ToUpper(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)

	if len(s) < n {
		s = s + strings.Repeat("0", n-len(s))
	}
	return s[:n], nil
}

// GenerateAffiliateCode returns a candidate 8-character affiliate code.
func GenerateAffiliateCode() (string, error) {
	return randomAlphanumeric(affiliateCodeLength)
}

// GenerateMasterCode returns a candidate master code: MAST plus 6 characters.
func GenerateMasterCode() (string, error) {
	suffix, err := randomAlphanumeric(masterSuffixLength)
	if err != nil {
		return "", err
	}
	return MasterCodePrefix + suffix, nil
}

// GenerateUniqueCode runs the generator under a bounded retry loop, checking
// each candidate against both account collections. Codes must be globally
// unique across tiers, not merely per collection, or prefix routing in the
// resolver could misresolve.
func GenerateUniqueCode(ctx context.Context, db *mongo.Database, generate func() (string, error)) (string, error) {
	affiliates := db.Collection("affiliates")
	masters := db.Collection("master_affiliates")

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generate()
		if err != nil {
			return "", err
		}
		// Affiliate candidates may randomly start with the reserved prefix
		if strings.HasPrefix(code, MasterCodePrefix) && len(code) == affiliateCodeLength {
			continue
		}

		filter := bson.M{"$or": []bson.M{
			{"referralCode": code},
			{"customCode": code},
		}}
		count, err := affiliates.CountDocuments(ctx, filter)
		if err != nil {
			return "", err
		}
		if count > 0 {
			continue
		}
		count, err = masters.CountDocuments(ctx, filter)
		if err != nil {
			return "", err
		}
		if count > 0 {
			continue
		}
		return code, nil
	}
	return "", ErrCodeGenerationExhausted
}
