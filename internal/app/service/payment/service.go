package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisancoop/dairyops/internal/app/service/notification_log"
	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/internal/platform/phonepe"
	"github.com/kisancoop/dairyops/pkg/config"
	"github.com/kisancoop/dairyops/pkg/logctx"
	"github.com/kisancoop/dairyops/pkg/tool"
	"github.com/kisancoop/dairyops/pkg/types"
)

// Gateway is the subset of the PhonePe client the engine relies on.
type Gateway interface {
	Pay(ctx context.Context, req phonepe.PayRequest) (*phonepe.PayResponse, error)
	OrderStatus(ctx context.Context, merchantOrderID string) (*phonepe.OrderStatusResponse, error)
	Refund(ctx context.Context, req phonepe.RefundRequest) (*phonepe.RefundResponse, error)
	RefundStatus(ctx context.Context, merchantRefundID string) (*phonepe.RefundStatusResponse, error)
}

type Service struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	gateway  Gateway
	hooks    *HookRegistry
	eventLog *notification_log.Service
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB, gateway *phonepe.Client, hooks *HookRegistry, eventLog *notification_log.Service) Manager {
	return &Service{cfg: cfg, log: log, db: db, gateway: gateway, hooks: hooks, eventLog: eventLog}
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

func fromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}

func (s *Service) validateInitiate(req *InitiateRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.Amount.GreaterThan(decimal.NewFromFloat(s.cfg.Payment.MaxAmount)) {
		return fmt.Errorf("%w: amount exceeds maximum of %v", ErrValidation, s.cfg.Payment.MaxAmount)
	}
	u, err := url.Parse(req.RedirectURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: redirect_url must be an absolute http(s) URL", ErrValidation)
	}
	if req.UserIdentifier == "" || len(req.UserIdentifier) > 255 {
		return fmt.Errorf("%w: user_identifier is required and limited to 255 chars", ErrValidation)
	}
	if !req.TransactionType.Valid() {
		return fmt.Errorf("%w: unknown transaction_type %q", ErrValidation, req.TransactionType)
	}
	if (req.RelatedModel == nil) != (req.RelatedObjectID == nil) {
		return fmt.Errorf("%w: related_model and related_object_id must be provided together", ErrValidation)
	}
	if req.RelatedModel != nil && !req.RelatedModel.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRelatedKind, *req.RelatedModel)
	}
	return nil
}

// finalRedirectURL is the hosted result page the payer lands on, which in
// turn forwards to the caller's redirect_url.
func (s *Service) finalRedirectURL(merchantOrderID, returnURL string) string {
	q := url.Values{}
	q.Set("order_id", merchantOrderID)
	q.Set("return_url", returnURL)
	q.Set("brand", s.cfg.Payment.Brand)
	return s.cfg.Payment.HostedResultURL + "?" + q.Encode()
}

func (s *Service) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	log := logctx.FromCtx(ctx, s.log)
	if err := s.validateInitiate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	modelTag, objectID := "", ""
	if req.RelatedModel != nil {
		modelTag = string(*req.RelatedModel)
		objectID = *req.RelatedObjectID
	}
	merchantOrderID := GenerateMerchantOrderID(modelTag, objectID, now)
	finalRedirect := s.finalRedirectURL(merchantOrderID, req.RedirectURL)

	payResp, err := s.gateway.Pay(ctx, phonepe.PayRequest{
		MerchantOrderID: merchantOrderID,
		AmountMinor:     minorUnits(req.Amount),
		RedirectURL:     finalRedirect,
		UDF: map[string]string{
			"udf1": req.UDF1,
			"udf2": req.UDF2,
			"udf3": req.UDF3,
		},
	})
	if err != nil {
		log.Errorw("gateway pay failed", "merchant_order_id", merchantOrderID, "err", err)
		return nil, err
	}

	expiresAt := now.Add(s.cfg.Payment.ExpiryDuration)
	txn := &models.PaymentTransaction{
		ID:                tool.GenerateUUIDV7(),
		MerchantOrderID:   merchantOrderID,
		Amount:            req.Amount,
		Currency:          s.cfg.Payment.Currency,
		Status:            types.PaymentStatusInitiated,
		TransactionType:   req.TransactionType,
		RelatedKind:       req.RelatedModel,
		RelatedObjectID:   req.RelatedObjectID,
		UserIdentifier:    req.UserIdentifier,
		RedirectURL:       req.RedirectURL,
		PaymentMethodType: req.PaymentMethodType,
		UDF1:              req.UDF1,
		UDF2:              req.UDF2,
		UDF3:              req.UDF3,
		MaxRetries:        s.cfg.Payment.MaxRetries,
		Checksum:          Checksum(merchantOrderID, req.Amount, req.UserIdentifier),
		ExpiresAt:         &expiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if payResp.OrderID != "" {
		txn.GatewayTransactionID = &payResp.OrderID
	}
	if req.IPAddress != "" {
		txn.IPAddress = &req.IPAddress
	}
	if req.UserAgent != "" {
		txn.UserAgent = &req.UserAgent
	}
	if req.Metadata != nil {
		meta, err := tool.MarshalJSONMap(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata not serializable", ErrValidation)
		}
		txn.Metadata = meta
	}

	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		log.Errorw("failed to persist transaction", "merchant_order_id", merchantOrderID, "err", err)
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}
	log.Infow("payment initiated", "merchant_order_id", merchantOrderID, "amount", req.Amount)

	return &InitiateResult{
		MerchantOrderID:  merchantOrderID,
		CheckoutURL:      payResp.RedirectURL,
		Amount:           req.Amount,
		FinalRedirectURL: finalRedirect,
		Status:           types.PaymentStatusInitiated,
		ExpiresAt:        &expiresAt,
	}, nil
}

func (s *Service) ProcessWebhook(ctx context.Context, authorization string, rawBody []byte) (*WebhookAck, error) {
	log := logctx.FromCtx(ctx, s.log)

	if err := phonepe.ValidateCallbackAuth(authorization, s.cfg.PhonePe.WebhookUsername, s.cfg.PhonePe.WebhookPassword); err != nil {
		return nil, err
	}
	cb, err := phonepe.ParseCallback(rawBody)
	if err != nil {
		return nil, err
	}

	event := &models.WebhookEventLog{
		MerchantOrderID: cb.Payload.MerchantOrderID,
		EventType:       cb.Event,
		State:           cb.Payload.State,
		Data:            datatypes.JSON(rawBody),
		Status:          models.WebhookEventLogStatusReceived,
	}
	s.eventLog.Save(ctx, event)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.lockByMerchantOrderID(ctx, tx, cb.Payload.MerchantOrderID)
		if err != nil {
			return err
		}

		// Raw body and payment descriptor are kept on every verified event.
		txn.WebhookResponse = datatypes.JSON(rawBody)
		if pm, err := tool.MarshalJSONMap(cb.PaymentMethodDescriptor()); err == nil {
			txn.PaymentMethod = pm
		}
		if mt := methodTypeFromCallback(cb); mt != nil {
			txn.PaymentMethodType = mt
		}

		if applyAmountCorrection(txn, cb.Payload.Amount) {
			log.Warnw("webhook amount differs from stored amount",
				"merchant_order_id", txn.MerchantOrderID, "corrected", txn.Amount)
		}

		if err := s.applyGatewayState(ctx, tx, txn, cb.Payload.State, cb.Payload.OrderID, cb.Payload.ErrorCode, cb.Payload.DetailedErrorCode); err != nil {
			return err
		}

		txn.UpdatedAt = time.Now()
		return tx.Save(txn).Error
	})
	s.eventLog.MarkHandled(ctx, event.ID, err)
	if err != nil {
		return nil, err
	}

	log.Infow("webhook processed", "merchant_order_id", cb.Payload.MerchantOrderID, "state", cb.Payload.State)
	return &WebhookAck{Success: true, MerchantOrderID: cb.Payload.MerchantOrderID, State: cb.Payload.State}, nil
}

// applyAmountCorrection reconciles the stored amount with the gateway-reported
// minor-unit amount. The gateway's figure wins; the checksum is recomputed so
// the row stays internally consistent. Reports whether a correction happened.
func applyAmountCorrection(txn *models.PaymentTransaction, reportedMinor int64) bool {
	if reportedMinor <= 0 || reportedMinor == minorUnits(txn.Amount) {
		return false
	}
	txn.Amount = fromMinorUnits(reportedMinor)
	txn.Checksum = Checksum(txn.MerchantOrderID, txn.Amount, txn.UserIdentifier)
	return true
}

// refundAmount resolves the amount for a refund request. A nil request amount
// means refund everything still refundable. The running refund total can never
// exceed the transaction amount.
func refundAmount(txn *models.PaymentTransaction, requested *decimal.Decimal) (decimal.Decimal, error) {
	remaining := txn.RemainingRefundable()
	amount := remaining
	if requested != nil {
		amount = *requested
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: refund amount must be positive", ErrValidation)
	}
	if amount.GreaterThan(remaining) {
		return decimal.Zero, fmt.Errorf("%w: requested %s, refundable %s", ErrRefundExceedsAmount, amount, remaining)
	}
	return amount, nil
}

// applyGatewayState moves a locked transaction along the state machine for
// a gateway-reported state. Re-delivery of a state the row already reached
// is a no-op, which keeps webhook processing idempotent.
func (s *Service) applyGatewayState(ctx context.Context, tx *gorm.DB, txn *models.PaymentTransaction, state, orderID, errorCode, detailedErrorCode string) error {
	now := time.Now()

	switch {
	case phonepe.IsSuccessState(state):
		if txn.Status == types.PaymentStatusCompleted {
			return nil
		}
		if !txn.Status.CanTransitionTo(types.PaymentStatusCompleted) {
			return fmt.Errorf("%w: %s -> COMPLETED", ErrIllegalTransition, txn.Status)
		}
		txn.Status = types.PaymentStatusCompleted
		if orderID != "" {
			txn.GatewayTransactionID = &orderID
		}
		txn.GatewayResponseCode = ptr("SUCCESS")
		txn.GatewayResponseMessage = ptr("Payment Completed")
		txn.VerifiedAt = &now
		txn.CompletedAt = &now
		return s.runHook(ctx, tx, txn, true, "")

	case state == "FAILED":
		if txn.Status == types.PaymentStatusFailed {
			return nil
		}
		if !txn.Status.CanTransitionTo(types.PaymentStatusFailed) {
			return fmt.Errorf("%w: %s -> FAILED", ErrIllegalTransition, txn.Status)
		}
		reason := detailedErrorCode
		if reason == "" {
			reason = errorCode
		}
		if reason == "" {
			reason = "Payment Failed"
		}
		txn.Status = types.PaymentStatusFailed
		txn.GatewayResponseCode = ptrOr(errorCode, "FAILED")
		txn.GatewayResponseMessage = &reason
		txn.VerifiedAt = &now
		return s.runHook(ctx, tx, txn, false, reason)

	default:
		// PENDING / PROCESSING / unknown interim states.
		if txn.Status.CanTransitionTo(types.PaymentStatusPending) {
			txn.Status = types.PaymentStatusPending
			txn.GatewayResponseCode = ptr("PENDING")
		}
		return nil
	}
}

func (s *Service) runHook(ctx context.Context, tx *gorm.DB, txn *models.PaymentTransaction, paid bool, reason string) error {
	if txn.RelatedKind == nil || txn.RelatedObjectID == nil {
		return nil
	}
	hook, ok := s.hooks.Lookup(*txn.RelatedKind)
	if !ok {
		return nil
	}
	if paid {
		return hook.MarkAsPaid(ctx, tx, *txn.RelatedObjectID)
	}
	return hook.MarkAsFailed(ctx, tx, *txn.RelatedObjectID, reason)
}

func methodTypeFromCallback(cb *phonepe.Callback) *types.PaymentMethodType {
	if len(cb.Payload.PaymentDetails) == 0 || len(cb.Payload.PaymentDetails[0].SplitInstruments) == 0 {
		return nil
	}
	part := cb.Payload.PaymentDetails[0].SplitInstruments[0]
	if inst := part.Instrument; inst != nil {
		switch inst.Type {
		case "NET_BANKING":
			return ptrMethod(types.PaymentMethodTypeNetBanking)
		case "CREDIT_CARD", "DEBIT_CARD":
			return ptrMethod(types.PaymentMethodTypeCard)
		case "ACCOUNT":
			return ptrMethod(types.PaymentMethodTypeAccount)
		}
	}
	if rail := part.Rail; rail != nil {
		switch rail.Type {
		case "UPI":
			return ptrMethod(types.PaymentMethodTypeUPI)
		case "PG":
			return ptrMethod(types.PaymentMethodTypePG)
		}
	}
	return nil
}

func (s *Service) lockByMerchantOrderID(ctx context.Context, tx *gorm.DB, merchantOrderID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("merchant_order_id = ? AND is_deleted = false", merchantOrderID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, merchantOrderID)
		}
		return nil, err
	}
	return &txn, nil
}

func (s *Service) CheckStatus(ctx context.Context, merchantOrderID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := s.db.WithContext(ctx).
		Where("merchant_order_id = ? AND is_deleted = false", merchantOrderID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, merchantOrderID)
		}
		return nil, err
	}
	return &txn, nil
}

// VerifyWithGateway polls the gateway order status and applies the result,
// used when a webhook was missed.
func (s *Service) VerifyWithGateway(ctx context.Context, merchantOrderID string) (*models.PaymentTransaction, error) {
	status, err := s.gateway.OrderStatus(ctx, merchantOrderID)
	if err != nil {
		return nil, err
	}

	var out *models.PaymentTransaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.lockByMerchantOrderID(ctx, tx, merchantOrderID)
		if err != nil {
			return err
		}
		if err := s.applyGatewayState(ctx, tx, txn, status.State, status.OrderID, status.ErrorCode, ""); err != nil {
			return err
		}
		txn.UpdatedAt = time.Now()
		if err := tx.Save(txn).Error; err != nil {
			return err
		}
		out = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) InitiateRefund(ctx context.Context, req *RefundInitiateRequest) (*RefundAck, error) {
	log := logctx.FromCtx(ctx, s.log)
	if req == nil || req.MerchantOrderID == "" {
		return nil, fmt.Errorf("%w: merchant_order_id is required", ErrValidation)
	}

	var ack *RefundAck
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.lockByMerchantOrderID(ctx, tx, req.MerchantOrderID)
		if err != nil {
			return err
		}
		if !txn.Status.Refundable() {
			return fmt.Errorf("%w: cannot refund from %s", ErrIllegalTransition, txn.Status)
		}

		amount, err := refundAmount(txn, req.Amount)
		if err != nil {
			return err
		}

		merchantRefundID := tool.GenerateUUIDV7()
		gwResp, err := s.gateway.Refund(ctx, phonepe.RefundRequest{
			MerchantRefundID:        merchantRefundID,
			OriginalMerchantOrderID: txn.MerchantOrderID,
			AmountMinor:             minorUnits(amount),
		})
		if err != nil {
			log.Errorw("gateway refund failed", "merchant_order_id", txn.MerchantOrderID, "err", err)
			return err
		}

		now := time.Now()
		refund := &models.PaymentRefund{
			ID:               tool.GenerateUUIDV7(),
			MerchantRefundID: merchantRefundID,
			MerchantOrderID:  txn.MerchantOrderID,
			Amount:           amount,
			Status:           types.RefundStatusPending,
			Reason:           req.Reason,
			InitiatedBy:      req.InitiatedBy,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if gwResp.RefundID != "" {
			refund.GatewayRefundID = &gwResp.RefundID
		}
		if err := tx.Create(refund).Error; err != nil {
			return fmt.Errorf("failed to persist refund: %w", err)
		}

		txn.RefundAmount = txn.RefundAmount.Add(amount)
		txn.RefundInitiatedAt = &now
		txn.RefundReferenceID = &merchantRefundID
		if txn.RefundAmount.GreaterThanOrEqual(txn.Amount) {
			txn.Status = types.PaymentStatusRefunded
		} else {
			txn.Status = types.PaymentStatusPartiallyRefunded
		}
		txn.UpdatedAt = now
		if err := tx.Save(txn).Error; err != nil {
			return err
		}

		ack = &RefundAck{
			MerchantRefundID: merchantRefundID,
			MerchantOrderID:  txn.MerchantOrderID,
			Amount:           amount,
			RefundAmount:     txn.RefundAmount,
			Status:           txn.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infow("refund initiated", "merchant_order_id", ack.MerchantOrderID, "merchant_refund_id", ack.MerchantRefundID, "amount", ack.Amount)
	return ack, nil
}

func (s *Service) RefundStatus(ctx context.Context, merchantRefundID string) (*models.PaymentRefund, error) {
	var refund models.PaymentRefund
	err := s.db.WithContext(ctx).Where("merchant_refund_id = ?", merchantRefundID).First(&refund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRefundNotFound, merchantRefundID)
		}
		return nil, err
	}

	if refund.Status == types.RefundStatusPending {
		gwResp, err := s.gateway.RefundStatus(ctx, merchantRefundID)
		if err != nil {
			// Serve the stored view when the gateway is unreachable.
			s.log.Warnw("refund status poll failed", "merchant_refund_id", merchantRefundID, "err", err)
			return &refund, nil
		}
		switch gwResp.State {
		case "COMPLETED", "SUCCESS":
			now := time.Now()
			refund.Status = types.RefundStatusCompleted
			refund.CompletedAt = &now
			refund.UpdatedAt = now
			_ = s.db.WithContext(ctx).Save(&refund).Error
			_ = s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
				Where("merchant_order_id = ?", refund.MerchantOrderID).
				Update("refund_completed_at", now).Error
		case "FAILED":
			refund.Status = types.RefundStatusFailed
			refund.UpdatedAt = time.Now()
			_ = s.db.WithContext(ctx).Save(&refund).Error
		}
	}
	return &refund, nil
}

// Retry re-runs initiation for a FAILED transaction under the same
// merchant order id, bounded by max_retries.
func (s *Service) Retry(ctx context.Context, merchantOrderID string) (*InitiateResult, error) {
	log := logctx.FromCtx(ctx, s.log)

	var result *InitiateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.lockByMerchantOrderID(ctx, tx, merchantOrderID)
		if err != nil {
			return err
		}
		if txn.Status != types.PaymentStatusFailed {
			return fmt.Errorf("%w: retry only allowed from FAILED, got %s", ErrIllegalTransition, txn.Status)
		}
		if !txn.CanRetry() {
			return fmt.Errorf("%w: %d of %d attempts used", ErrRetryExhausted, txn.RetryCount, txn.MaxRetries)
		}

		finalRedirect := s.finalRedirectURL(txn.MerchantOrderID, txn.RedirectURL)
		payResp, err := s.gateway.Pay(ctx, phonepe.PayRequest{
			MerchantOrderID: txn.MerchantOrderID,
			AmountMinor:     minorUnits(txn.Amount),
			RedirectURL:     finalRedirect,
		})
		if err != nil {
			return err
		}

		now := time.Now()
		expiresAt := now.Add(s.cfg.Payment.ExpiryDuration)
		txn.Status = types.PaymentStatusInitiated
		txn.RetryCount++
		txn.ExpiresAt = &expiresAt
		txn.GatewayResponseCode = nil
		txn.GatewayResponseMessage = nil
		txn.UpdatedAt = now
		if err := tx.Save(txn).Error; err != nil {
			return err
		}

		result = &InitiateResult{
			MerchantOrderID:  txn.MerchantOrderID,
			CheckoutURL:      payResp.RedirectURL,
			Amount:           txn.Amount,
			FinalRedirectURL: finalRedirect,
			Status:           types.PaymentStatusInitiated,
			ExpiresAt:        &expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infow("payment retried", "merchant_order_id", merchantOrderID)
	return result, nil
}

// MilkBillPayment settles an internal milk-bill adjustment synchronously.
// No gateway involvement; the row is born COMPLETED.
func (s *Service) MilkBillPayment(ctx context.Context, req *MilkBillPaymentRequest) (*models.PaymentTransaction, error) {
	if req == nil || !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.UserIdentifier == "" {
		return nil, fmt.Errorf("%w: user_identifier is required", ErrValidation)
	}
	if (req.RelatedModel == nil) != (req.RelatedObjectID == nil) {
		return nil, fmt.Errorf("%w: related_model and related_object_id must be provided together", ErrValidation)
	}

	now := time.Now()
	modelTag, objectID := "", ""
	if req.RelatedModel != nil {
		modelTag = string(*req.RelatedModel)
		objectID = *req.RelatedObjectID
	}
	merchantOrderID := GenerateMerchantOrderID(modelTag, objectID, now)
	methodType := types.PaymentMethodTypeMilkBill

	txn := &models.PaymentTransaction{
		ID:                tool.GenerateUUIDV7(),
		MerchantOrderID:   merchantOrderID,
		Amount:            req.Amount,
		Currency:          s.cfg.Payment.Currency,
		Status:            types.PaymentStatusCompleted,
		TransactionType:   types.TransactionTypeMilkBill,
		RelatedKind:       req.RelatedModel,
		RelatedObjectID:   req.RelatedObjectID,
		UserIdentifier:    req.UserIdentifier,
		PaymentMethodType: &methodType,
		UDF1:              req.Notes,
		MaxRetries:        s.cfg.Payment.MaxRetries,
		Checksum:          Checksum(merchantOrderID, req.Amount, req.UserIdentifier),
		VerifiedAt:        &now,
		CompletedAt:       &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return fmt.Errorf("failed to persist milk bill payment: %w", err)
		}
		return s.runHook(ctx, tx, txn, true, "")
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanTransactions implements paginated listing with filters.
func (s *Service) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrValidation)
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).Where("is_deleted = false")
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var rows []*models.PaymentTransaction
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}

// ExpireStale marks INITIATED/PENDING rows past their deadline as EXPIRED.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("status IN ? AND expires_at < ? AND is_deleted = false",
			[]types.PaymentStatus{types.PaymentStatusInitiated, types.PaymentStatusPending}, now).
		Updates(map[string]any{"status": types.PaymentStatusExpired, "updated_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.log.Infow("expired stale transactions", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// PollPending asks the gateway about PENDING rows that have not expired
// yet, recovering from missed webhooks.
func (s *Service) PollPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("status = ? AND expires_at > ? AND is_deleted = false", types.PaymentStatusPending, time.Now()).
		Order("updated_at asc").
		Limit(limit).
		Pluck("merchant_order_id", &ids).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range ids {
		if _, err := s.VerifyWithGateway(ctx, id); err != nil {
			s.log.Warnw("pending poll failed", "merchant_order_id", id, "err", err)
			continue
		}
		updated++
	}
	return updated, nil
}

func ptr(s string) *string { return &s }

func ptrOr(s, fallback string) *string {
	if s == "" {
		return &fallback
	}
	return &s
}

func ptrMethod(m types.PaymentMethodType) *types.PaymentMethodType { return &m }
