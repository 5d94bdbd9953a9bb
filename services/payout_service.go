package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/betzone/affiliate_backend/models"
	"github.com/betzone/affiliate_backend/utils"
)

// processingWindow is the advisory completion estimate set when a payout
// enters processing.
const processingWindow = 3 * 24 * time.Hour

// maxClaimAttempts bounds internal retries when claiming pending records
// races a concurrent append or allocation against the same account.
const maxClaimAttempts = 3

// PayoutService allocates pending earnings into payouts and drives the
// payout lifecycle: pending -> processing -> completed, failed from
// processing, cancelled from pending or processing, and failed -> pending
// via bounded retry.
type PayoutService struct {
	DB     *mongo.Database
	Ledger *LedgerService
}

func NewPayoutService(db *mongo.Database, ledger *LedgerService) *PayoutService {
	return &PayoutService{DB: db, Ledger: ledger}
}

// RequestPayoutInput carries a payout request. A zero Amount means the full
// pending balance.
type RequestPayoutInput struct {
	Kind   models.AccountKind
	Amount float64
	Notes  string
}

// loadAccount fetches either tier's account document into the common fields
// a payout needs.
type payoutAccount struct {
	ID             primitive.ObjectID
	Balance        models.Balance
	MinimumPayout  float64
	PaymentMethod  string
	PaymentDetails models.PaymentDetails
}

func (s *PayoutService) loadAccount(ctx context.Context, kind models.AccountKind, accountID primitive.ObjectID) (*payoutAccount, error) {
	if kind == models.AccountKindMaster {
		var master models.MasterAffiliate
		err := s.DB.Collection("master_affiliates").FindOne(ctx, bson.M{"_id": accountID}).Decode(&master)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		return &payoutAccount{
			ID:             master.ID,
			Balance:        master.Balance,
			MinimumPayout:  master.MinimumPayout,
			PaymentMethod:  master.PaymentMethod,
			PaymentDetails: master.PaymentDetails,
		}, nil
	}

	var affiliate models.Affiliate
	err := s.DB.Collection("affiliates").FindOne(ctx, bson.M{"_id": accountID}).Decode(&affiliate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &payoutAccount{
		ID:             affiliate.ID,
		Balance:        affiliate.Balance,
		MinimumPayout:  affiliate.MinimumPayout,
		PaymentMethod:  affiliate.PaymentMethod,
		PaymentDetails: affiliate.PaymentDetails,
	}, nil
}

// RequestPayout validates the request, selects pending earnings oldest
// first, computes fees and creates the payout in pending status. Selected
// records move to processing with a back-reference to the payout, and the
// requested amount moves from pending to processing earnings.
func (s *PayoutService) RequestPayout(ctx context.Context, accountID primitive.ObjectID, input RequestPayoutInput) (*models.Payout, error) {
	account, err := s.loadAccount(ctx, input.Kind, accountID)
	if err != nil {
		return nil, err
	}

	requested := input.Amount
	if requested == 0 {
		requested = account.Balance.PendingEarnings
	}
	if requested <= 0 {
		return nil, ErrInvalidAmount
	}
	if requested < account.MinimumPayout {
		return nil, ErrBelowMinimum
	}
	if requested > account.Balance.PendingEarnings {
		return nil, ErrInsufficientBalance
	}
	if err := validatePaymentDetails(account.PaymentMethod, account.PaymentDetails); err != nil {
		return nil, err
	}

	fees := CalculateFees(requested, account.PaymentMethod)
	netAmount := roundMoney(requested - fees.Total())
	if netAmount < 0 {
		return nil, ErrNegativeNetAmount
	}

	payoutID, err := utils.GeneratePayoutID(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	payout := models.Payout{
		ID:             primitive.NewObjectID(),
		PayoutID:       payoutID,
		AccountID:      accountID,
		AccountKind:    input.Kind,
		Amount:         requested,
		Currency:       "TZS",
		Status:         models.PayoutStatusPending,
		PaymentMethod:  account.PaymentMethod,
		PaymentDetails: account.PaymentDetails,
		Fees:           fees,
		NetAmount:      netAmount,
		Notes:          input.Notes,
		RequestedAt:    time.Now(),
		MaxRetries:     models.DefaultMaxRetries,
	}

	// Claiming the records can race a concurrent append or another payout
	// request; reselect and retry a bounded number of times.
	var included []models.IncludedEarning
	for attempt := 0; ; attempt++ {
		pending, err := s.Ledger.PendingEarnings(ctx, accountID)
		if err != nil {
			return nil, err
		}

		included, err = selectEarnings(pending, requested)
		if err != nil {
			return nil, err
		}

		claimed, err := s.claimEarnings(ctx, included, payout.ID)
		if err != nil {
			return nil, err
		}
		if claimed {
			break
		}
		if attempt+1 >= maxClaimAttempts {
			return nil, ErrConcurrencyConflict
		}
		log.Printf("Payout %s: record claim conflicted, reselecting (attempt %d)", payoutID, attempt+1)
	}

	payout.IncludedEarnings = included
	payout.Breakdown = buildBreakdown(included)

	if err := s.Ledger.ReserveForPayout(ctx, input.Kind, accountID, requested); err != nil {
		s.releaseEarnings(ctx, included, payout.ID)
		return nil, err
	}

	if _, err := s.DB.Collection("payouts").InsertOne(ctx, payout); err != nil {
		s.releaseEarnings(ctx, included, payout.ID)
		s.Ledger.ReverseSettlement(ctx, input.Kind, accountID, requested)
		return nil, err
	}

	utils.PayoutsByStatus.WithLabelValues(models.PayoutStatusPending).Inc()
	return &payout, nil
}

// claimEarnings marks the included records processing with a back-reference
// to the payout. The status filter makes the claim atomic per record: if any
// record was touched since selection the counts disagree, everything is
// released and the caller reselects.
func (s *PayoutService) claimEarnings(ctx context.Context, included []models.IncludedEarning, payoutID primitive.ObjectID) (bool, error) {
	ids := make([]primitive.ObjectID, len(included))
	for i, entry := range included {
		ids[i] = entry.EarningID
	}

	result, err := s.DB.Collection("earnings").UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": models.EarningStatusPending},
		bson.M{"$set": bson.M{
			"status":   models.EarningStatusProcessing,
			"payoutId": payoutID,
		}},
	)
	if err != nil {
		return false, err
	}
	if result.ModifiedCount != int64(len(ids)) {
		s.releaseEarnings(ctx, included, payoutID)
		return false, nil
	}
	return true, nil
}

// releaseEarnings reverts claimed records to pending and clears the payout
// back-reference.
func (s *PayoutService) releaseEarnings(ctx context.Context, included []models.IncludedEarning, payoutID primitive.ObjectID) {
	ids := make([]primitive.ObjectID, len(included))
	for i, entry := range included {
		ids[i] = entry.EarningID
	}

	_, err := s.DB.Collection("earnings").UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "payoutId": payoutID},
		bson.M{
			"$set":   bson.M{"status": models.EarningStatusPending},
			"$unset": bson.M{"payoutId": ""},
		},
	)
	if err != nil {
		log.Printf("Failed to release earnings for payout %s: %v", payoutID.Hex(), err)
	}
}

// GetPayout loads a payout by its object ID.
func (s *PayoutService) GetPayout(ctx context.Context, id primitive.ObjectID) (*models.Payout, error) {
	var payout models.Payout
	err := s.DB.Collection("payouts").FindOne(ctx, bson.M{"_id": id}).Decode(&payout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

// transition performs a guarded status change. The status filter makes the
// update atomic: a payout modified since loading will not match and the
// caller gets ErrInvalidTransition.
func (s *PayoutService) transition(ctx context.Context, payout *models.Payout, to string, extra bson.M) error {
	if !models.CanTransition(payout.Status, to) {
		return ErrInvalidTransition
	}

	set := bson.M{"status": to}
	for k, v := range extra {
		set[k] = v
	}

	result, err := s.DB.Collection("payouts").UpdateOne(ctx,
		bson.M{"_id": payout.ID, "status": payout.Status},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return ErrInvalidTransition
	}

	payout.Status = to
	utils.PayoutsByStatus.WithLabelValues(to).Inc()
	return nil
}

// MarkProcessing moves a pending payout to processing and stamps the
// advisory completion estimate.
func (s *PayoutService) MarkProcessing(ctx context.Context, payout *models.Payout) error {
	now := time.Now()
	estimated := now.Add(processingWindow)
	return s.transition(ctx, payout, models.PayoutStatusProcessing, bson.M{
		"processedAt":             now,
		"estimatedCompletionDate": estimated,
	})
}

// CompletePayout finalizes a processing payout: records go to paid and the
// reserved amount settles into paidEarnings.
func (s *PayoutService) CompletePayout(ctx context.Context, payout *models.Payout) error {
	now := time.Now()
	ref := uuid.NewString()
	if err := s.transition(ctx, payout, models.PayoutStatusCompleted, bson.M{
		"completedAt":    now,
		"transactionRef": ref,
	}); err != nil {
		return err
	}
	payout.TransactionRef = ref

	ids := make([]primitive.ObjectID, len(payout.IncludedEarnings))
	for i, entry := range payout.IncludedEarnings {
		ids[i] = entry.EarningID
	}
	_, err := s.DB.Collection("earnings").UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "payoutId": payout.ID},
		bson.M{"$set": bson.M{
			"status": models.EarningStatusPaid,
			"paidAt": now,
		}},
	)
	if err != nil {
		log.Printf("Failed to mark earnings paid for payout %s: %v", payout.PayoutID, err)
	}

	return s.Ledger.RecordPayoutSettlement(ctx, payout.AccountKind, payout.AccountID, payout.Amount, payout.ID)
}

// FailPayout records a failure on a processing payout.
func (s *PayoutService) FailPayout(ctx context.Context, payout *models.Payout, reason string) error {
	return s.transition(ctx, payout, models.PayoutStatusFailed, bson.M{"failureReason": reason})
}

// CancelPayout cancels a pending or processing payout: every included record
// returns to pending with its back-reference cleared, and the full payout
// amount moves back from processing to pending earnings.
func (s *PayoutService) CancelPayout(ctx context.Context, payout *models.Payout, reason string) error {
	if err := s.transition(ctx, payout, models.PayoutStatusCancelled, bson.M{"cancellationReason": reason}); err != nil {
		return err
	}

	s.releaseEarnings(ctx, payout.IncludedEarnings, payout.ID)
	return s.Ledger.ReverseSettlement(ctx, payout.AccountKind, payout.AccountID, payout.Amount)
}

// checkRetryBudget reports whether a payout may be retried: only failed
// payouts, and only while attempts remain in the budget.
func checkRetryBudget(payout *models.Payout) error {
	if payout.Status != models.PayoutStatusFailed {
		return ErrInvalidTransition
	}
	if payout.RetryAttempt >= payout.MaxRetries {
		return ErrRetryExhausted
	}
	return nil
}

// RetryPayout resets a failed payout to pending, clearing failure fields and
// counting the attempt against the retry budget.
func (s *PayoutService) RetryPayout(ctx context.Context, payout *models.Payout, notes string) error {
	if err := checkRetryBudget(payout); err != nil {
		return err
	}

	set := bson.M{
		"status":        models.PayoutStatusPending,
		"failureReason": "",
		"retryAttempt":  payout.RetryAttempt + 1,
	}
	if notes != "" {
		set["notes"] = notes
	}

	result, err := s.DB.Collection("payouts").UpdateOne(ctx,
		bson.M{"_id": payout.ID, "status": models.PayoutStatusFailed, "retryAttempt": payout.RetryAttempt},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return ErrInvalidTransition
	}

	payout.Status = models.PayoutStatusPending
	payout.RetryAttempt++
	utils.PayoutsByStatus.WithLabelValues(models.PayoutStatusPending).Inc()
	return nil
}
