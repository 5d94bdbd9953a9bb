package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/utils"
)

// ResolverService maps a referral code string to the active account that
// owns it. The reserved MAST prefix routes straight to the master tier;
// everything else resolves against affiliates. Code generation guarantees
// global uniqueness across both tiers, so the prefix alone disambiguates.
type ResolverService struct {
	DB *mongo.Database
}

func NewResolverService(db *mongo.Database) *ResolverService {
	return &ResolverService{DB: db}
}

// ResolvedAccount is the tagged result of a code lookup: exactly one of
// Affiliate or Master is set, matching Kind.
type ResolvedAccount struct {
	Kind      models.AccountKind
	Affiliate *models.Affiliate
	Master    *models.MasterAffiliate
}

// ID returns the resolved account's object ID.
func (r *ResolvedAccount) ID() primitive.ObjectID {
	if r.Kind == models.AccountKindMaster {
		return r.Master.ID
	}
	return r.Affiliate.ID
}

// ResolveCode looks up a referral code by primary or custom code, requiring
// an active account. Returns ErrCodeNotFound when no active match exists.
func (s *ResolverService) ResolveCode(ctx context.Context, code string) (*ResolvedAccount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeNotFound
	}

	filter := bson.M{
		"$or": []bson.M{
			{"referralCode": code},
			{"customCode": code},
		},
		"status": models.AccountStatusActive,
	}

	if strings.HasPrefix(code, utils.MasterCodePrefix) {
		var master models.MasterAffiliate
		err := s.DB.Collection("master_affiliates").FindOne(ctx, filter).Decode(&master)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrCodeNotFound
			}
			return nil, err
		}
		return &ResolvedAccount{Kind: models.AccountKindMaster, Master: &master}, nil
	}

	var affiliate models.Affiliate
	err := s.DB.Collection("affiliates").FindOne(ctx, filter).Decode(&affiliate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &ResolvedAccount{Kind: models.AccountKindAffiliate, Affiliate: &affiliate}, nil
}

// UpstreamMaster finds the active master affiliate that lists the given
// affiliate among its sub-affiliates. Returns nil without error when the
// affiliate has no upstream master.
func (s *ResolverService) UpstreamMaster(ctx context.Context, affiliateID primitive.ObjectID) (*models.MasterAffiliate, error) {
	var master models.MasterAffiliate
	err := s.DB.Collection("master_affiliates").FindOne(ctx, bson.M{
		"subAffiliates.affiliateId": affiliateID,
		"status":                    models.AccountStatusActive,
	}).Decode(&master)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &master, nil
}
