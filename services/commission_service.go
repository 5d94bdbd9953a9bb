package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/betzone/affiliate_backend/models"
)

// CommissionService is the attribution engine: it turns platform events
// (registration, deposit, bet, withdrawal) into earning records across both
// tiers. The resolved account always gets its own commission first; override
// propagation to an upstream master is best effort and never fails the
// primary write.
type CommissionService struct {
	DB       *mongo.Database
	Ledger   *LedgerService
	Resolver *ResolverService
}

func NewCommissionService(db *mongo.Database, ledger *LedgerService, resolver *ResolverService) *CommissionService {
	return &CommissionService{DB: db, Ledger: ledger, Resolver: resolver}
}

// ProcessRegistration attributes a registration event. The resolved account
// earns its flat CPA amount; an affiliate's upstream master earns its own
// flat CPA as an override. Non-success events are acknowledged upstream and
// never reach this method.
func (s *CommissionService) ProcessRegistration(ctx context.Context, event models.RegistrationEvent) (*models.Earning, error) {
	resolved, err := s.Resolver.ResolveCode(ctx, event.Cid)
	if err != nil {
		return nil, err
	}

	if resolved.Kind == models.AccountKindMaster {
		if resolved.Master.CPARate <= 0 {
			return nil, nil
		}
		earning, err := s.Ledger.AppendEarning(ctx, models.AccountKindMaster, resolved.Master.ID, AppendEarningInput{
			Amount:         resolved.Master.CPARate,
			Type:           models.EarningTypeCPA,
			ReferredUserID: event.Txid,
			ReferredEmail:  event.Email,
			ReferredName:   event.Name,
			SourceID:       event.Txid,
			SourceType:     "registration",
			CommissionRate: 1,
			SourceAmount:   resolved.Master.CPARate,
			Description:    "CPA bonus for registered user",
		})
		if err != nil {
			return nil, err
		}
		s.advanceClaimStatus(ctx, resolved.Master.ID, event.Txid, models.ClaimStatusUnclaimed, models.ClaimStatusPending)
		return earning, nil
	}

	affiliate := resolved.Affiliate
	if affiliate.CPARate <= 0 {
		return nil, nil
	}

	earning, err := s.Ledger.AppendEarning(ctx, models.AccountKindAffiliate, affiliate.ID, AppendEarningInput{
		Amount:         affiliate.CPARate,
		Type:           models.EarningTypeRegistration,
		ReferredUserID: event.Txid,
		ReferredEmail:  event.Email,
		ReferredName:   event.Name,
		SourceID:       event.Txid,
		SourceType:     "registration",
		CommissionRate: 1,
		SourceAmount:   affiliate.CPARate,
		Description:    "Registration bonus for referred user",
	})
	if err != nil {
		return nil, err
	}

	// Registration bonus granted: the referred user becomes claim pending
	s.advanceClaimStatus(ctx, affiliate.ID, event.Txid, models.ClaimStatusUnclaimed, models.ClaimStatusPending)

	s.propagateOverride(ctx, affiliate, earning)

	return earning, nil
}

// ProcessDeposit attributes a deposit event. Normal deposits earn the
// deposit rate percentage; a first deposit earns the entire deposit amount
// and bypasses override propagation.
func (s *CommissionService) ProcessDeposit(ctx context.Context, event models.DepositEvent) (*models.Earning, error) {
	if event.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	resolved, err := s.Resolver.ResolveCode(ctx, event.AffiliateCode)
	if err != nil {
		return nil, err
	}

	firstDeposit := event.Type == models.FirstDepositType

	if resolved.Kind == models.AccountKindMaster {
		return s.masterDeposit(ctx, resolved.Master, event, firstDeposit)
	}

	affiliate := resolved.Affiliate
	master, err := s.Resolver.UpstreamMaster(ctx, affiliate.ID)
	if err != nil {
		log.Printf("Failed to look up upstream master for affiliate %s: %v", affiliate.ID.Hex(), err)
		master = nil
	}

	rate := affiliate.DepositRate
	if master != nil {
		if link := master.LinkFor(affiliate.ID); link != nil && link.CustomDepositRate != nil {
			rate = *link.CustomDepositRate
		}
	}

	var amount float64
	var sourceType, description string
	if firstDeposit {
		// First deposit pays out the entire amount, not the rate formula
		amount = event.Amount
		rate = 100
		sourceType = "first_deposit"
		description = "First deposit commission"
	} else {
		if rate <= 0 {
			return nil, nil
		}
		amount = commissionAmount(event.Amount, rate)
		sourceType = "deposit"
		description = fmt.Sprintf("Deposit commission at %.2f%%", rate)
	}

	earning, err := s.Ledger.AppendEarning(ctx, models.AccountKindAffiliate, affiliate.ID, AppendEarningInput{
		Amount:         amount,
		Type:           models.EarningTypeDeposit,
		ReferredUserID: event.UserID,
		SourceID:       event.DepositID,
		SourceType:     sourceType,
		CommissionRate: rate,
		SourceAmount:   event.Amount,
		Description:    description,
	})
	if err != nil {
		return nil, err
	}

	if firstDeposit {
		// First qualifying deposit claims the referred user; no override
		s.advanceClaimStatus(ctx, affiliate.ID, event.UserID, models.ClaimStatusPending, models.ClaimStatusClaimed)
		return earning, nil
	}

	s.propagateOverride(ctx, affiliate, earning)

	return earning, nil
}

// masterDeposit handles a deposit resolved directly by a master code.
func (s *CommissionService) masterDeposit(ctx context.Context, master *models.MasterAffiliate, event models.DepositEvent, firstDeposit bool) (*models.Earning, error) {
	var amount, rate float64
	var sourceType, description string
	if firstDeposit {
		amount = event.Amount
		rate = 100
		sourceType = "first_deposit"
		description = "First deposit commission"
	} else {
		rate = master.DepositRate
		if rate <= 0 {
			return nil, nil
		}
		amount = commissionAmount(event.Amount, rate)
		sourceType = "deposit"
		description = fmt.Sprintf("Deposit commission at %.2f%%", rate)
	}

	earning, err := s.Ledger.AppendEarning(ctx, models.AccountKindMaster, master.ID, AppendEarningInput{
		Amount:         amount,
		Type:           models.EarningTypeDeposit,
		ReferredUserID: event.UserID,
		SourceID:       event.DepositID,
		SourceType:     sourceType,
		CommissionRate: rate,
		SourceAmount:   event.Amount,
		Description:    description,
	})
	if err != nil {
		return nil, err
	}
	if firstDeposit {
		s.advanceClaimStatus(ctx, master.ID, event.UserID, models.ClaimStatusPending, models.ClaimStatusClaimed)
	}
	return earning, nil
}

// ProcessBet attributes a bet event. Bet callbacks carry no referral code,
// so attribution goes through the referred-user rollup built up by earlier
// registration and deposit events. Unknown users are acknowledged as no-ops.
func (s *CommissionService) ProcessBet(ctx context.Context, event models.BetEvent) (*models.Earning, error) {
	if event.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	owner, err := s.findReferredUserOwner(ctx, event.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, nil
	}

	rate, err := s.betRateFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, nil
	}

	amount := commissionAmount(event.Amount, rate)
	return s.Ledger.AppendEarning(ctx, owner.AccountKind, owner.AccountID, AppendEarningInput{
		Amount:         amount,
		Type:           models.EarningTypeBet,
		ReferredUserID: event.UserID,
		SourceID:       event.BetID,
		SourceType:     "bet",
		CommissionRate: rate,
		SourceAmount:   event.Amount,
		Description:    fmt.Sprintf("Bet commission at %.2f%% (%s)", rate, event.GameType),
	})
}

// ProcessWithdrawal attributes a withdrawal commission at a caller-supplied
// rate, used by the reconciliation surface.
func (s *CommissionService) ProcessWithdrawal(ctx context.Context, userID, withdrawalID string, amount, rate float64) (*models.Earning, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if rate < 0 || rate > 100 {
		return nil, ErrInvalidRate
	}
	if rate == 0 {
		return nil, nil
	}

	owner, err := s.findReferredUserOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrAccountNotFound
	}

	commission := commissionAmount(amount, rate)
	return s.Ledger.AppendEarning(ctx, owner.AccountKind, owner.AccountID, AppendEarningInput{
		Amount:         commission,
		Type:           models.EarningTypeWithdrawal,
		ReferredUserID: userID,
		SourceID:       withdrawalID,
		SourceType:     "withdrawal",
		CommissionRate: rate,
		SourceAmount:   amount,
		Description:    fmt.Sprintf("Withdrawal commission at %.2f%%", rate),
	})
}

// findReferredUserOwner returns the rollup entry that owns a platform user,
// or nil when the user was never referred.
func (s *CommissionService) findReferredUserOwner(ctx context.Context, userID string) (*models.ReferredUser, error) {
	var referred models.ReferredUser
	err := s.DB.Collection("referred_users").FindOne(ctx, bson.M{"userId": userID}).Decode(&referred)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &referred, nil
}

// betRateFor loads the owning account's bet commission rate, honoring a
// custom rate on the master's sub-affiliate link when one is set.
func (s *CommissionService) betRateFor(ctx context.Context, owner *models.ReferredUser) (float64, error) {
	if owner.AccountKind == models.AccountKindMaster {
		var master models.MasterAffiliate
		if err := s.DB.Collection("master_affiliates").FindOne(ctx, bson.M{"_id": owner.AccountID}).Decode(&master); err != nil {
			return 0, err
		}
		return master.CommissionRate, nil
	}

	var affiliate models.Affiliate
	if err := s.DB.Collection("affiliates").FindOne(ctx, bson.M{"_id": owner.AccountID}).Decode(&affiliate); err != nil {
		return 0, err
	}
	rate := affiliate.CommissionRate

	master, err := s.Resolver.UpstreamMaster(ctx, affiliate.ID)
	if err == nil && master != nil {
		if link := master.LinkFor(affiliate.ID); link != nil && link.CustomCommissionRate != nil {
			rate = *link.CustomCommissionRate
		}
	}
	return rate, nil
}

// overrideTerms computes the override amount and the rate applied for a
// sub-affiliate source earning. A registration source pays the master's flat
// CPA; a deposit source pays a share of the affiliate's commission, not of
// the raw deposit amount. Other source types carry no override.
func overrideTerms(master *models.MasterAffiliate, source *models.Earning) (amount, rate float64) {
	switch source.Type {
	case models.EarningTypeRegistration:
		return master.CPARate, 1
	case models.EarningTypeDeposit:
		return commissionAmount(source.Amount, master.DepositRate), master.DepositRate
	}
	return 0, 0
}

// propagateOverride credits the affiliate's upstream master with an override
// commission. Failures are logged and swallowed; the affiliate's own
// commission is already durable and ReplayOverrides can reconcile later.
func (s *CommissionService) propagateOverride(ctx context.Context, affiliate *models.Affiliate, source *models.Earning) {
	master, err := s.Resolver.UpstreamMaster(ctx, affiliate.ID)
	if err != nil {
		log.Printf("Override propagation skipped for earning %s: master lookup failed: %v", source.ID.Hex(), err)
		return
	}
	if master == nil {
		return
	}

	amount, rate := overrideTerms(master, source)
	if amount <= 0 {
		return
	}

	if err := s.appendOverrideCommission(ctx, master, affiliate.ID, amount, rate, source); err != nil {
		log.Printf("Override propagation failed for earning %s on master %s: %v", source.ID.Hex(), master.ID.Hex(), err)
	}
}

// appendOverrideCommission writes the override record on the master and
// bumps the sub-affiliate link's running total. The source earning's ID is
// the override's sourceId, which makes replay idempotent.
func (s *CommissionService) appendOverrideCommission(ctx context.Context, master *models.MasterAffiliate, affiliateID primitive.ObjectID, amount, rate float64, source *models.Earning) error {
	_, err := s.Ledger.AppendEarning(ctx, models.AccountKindMaster, master.ID, AppendEarningInput{
		Amount:         amount,
		Type:           models.EarningTypeOverride,
		ReferredUserID: source.ReferredUserID,
		SourceID:       source.ID.Hex(),
		SourceType:     "override:" + source.Type,
		CommissionRate: rate,
		SourceAmount:   source.Amount,
		Description:    "Override commission from sub-affiliate activity",
	})
	if err != nil {
		return err
	}

	_, err = s.DB.Collection("master_affiliates").UpdateOne(ctx,
		bson.M{"_id": master.ID, "subAffiliates.affiliateId": affiliateID},
		bson.M{"$inc": bson.M{"subAffiliates.$.totalEarned": amount}},
	)
	return err
}

// ReplayOverrides reconciles missed override commissions for one affiliate:
// it walks the affiliate's commission history since the given time and
// inserts any override record missing on the upstream master. Safe to run
// repeatedly; overrides are keyed by the source earning's ID.
func (s *CommissionService) ReplayOverrides(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (int, error) {
	var affiliate models.Affiliate
	if err := s.DB.Collection("affiliates").FindOne(ctx, bson.M{"_id": affiliateID}).Decode(&affiliate); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}

	master, err := s.Resolver.UpstreamMaster(ctx, affiliateID)
	if err != nil {
		return 0, err
	}
	if master == nil {
		return 0, nil
	}

	cursor, err := s.DB.Collection("earnings").Find(ctx, bson.M{
		"accountId": affiliateID,
		"type": bson.M{"$in": []string{
			models.EarningTypeDeposit,
			models.EarningTypeRegistration,
		}},
		"status":   bson.M{"$ne": models.EarningStatusCancelled},
		"earnedAt": bson.M{"$gte": since},
		// First deposits bypass override propagation entirely
		"sourceType": bson.M{"$ne": "first_deposit"},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var sources []models.Earning
	if err := cursor.All(ctx, &sources); err != nil {
		return 0, err
	}

	replayed := 0
	for i := range sources {
		source := &sources[i]

		amount, rate := overrideTerms(master, source)
		if amount <= 0 {
			continue
		}

		count, err := s.DB.Collection("earnings").CountDocuments(ctx, bson.M{
			"accountId": master.ID,
			"type":      models.EarningTypeOverride,
			"sourceId":  source.ID.Hex(),
		})
		if err != nil {
			return replayed, err
		}
		if count > 0 {
			continue
		}

		if err := s.appendOverrideCommission(ctx, master, affiliateID, amount, rate, source); err != nil {
			return replayed, err
		}
		replayed++
	}

	return replayed, nil
}

// advanceClaimStatus moves a referred user's claim flag one step forward.
// Transitions only ever move unclaimed -> pending -> claimed; a no-match is
// not an error, the user is simply already past that state.
func (s *CommissionService) advanceClaimStatus(ctx context.Context, accountID primitive.ObjectID, userID, from, to string) {
	_, err := s.DB.Collection("referred_users").UpdateOne(ctx,
		bson.M{"accountId": accountID, "userId": userID, "claimStatus": from},
		bson.M{"$set": bson.M{"claimStatus": to}},
	)
	if err != nil {
		log.Printf("Failed to advance claim status for user %s: %v", userID, err)
	}
}
