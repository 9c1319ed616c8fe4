package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kelasku/kelasku-api/internal/models"
	"github.com/kelasku/kelasku-api/internal/plan"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
	"github.com/kelasku/kelasku-api/pkg/export"
	"github.com/kelasku/kelasku-api/pkg/payment"
)

type purchaseCategoryReader interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type purchaseTopicReader interface {
	ListByCategory(ctx context.Context, categoryID string) ([]models.Topic, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Topic, error)
}

type enrollmentStore interface {
	FindEnrollment(ctx context.Context, userID, topicID string) (*models.Enrollment, error)
	FindBundleEnrollment(ctx context.Context, userID, categoryID string) (*models.BundleEnrollment, error)
	UpsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	UpsertBundleEnrollment(ctx context.Context, enrollment *models.BundleEnrollment) error
}

type orderStore interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	FindByID(ctx context.Context, id string) (*models.PaymentOrder, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	MarkFailed(ctx context.Context, id string) error
}

type purchaseUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type purchaseNotifier interface {
	PurchaseCompleted(userID, categoryID string, kind models.PurchaseKind, amount float64)
}

type accessInvalidator interface {
	Invalidate(ctx context.Context, userID, categoryID string)
}

type purchaseMetrics interface {
	PurchaseInitiated(kind models.PurchaseKind)
	PurchaseCompleted(kind models.PurchaseKind)
	VerificationFailed()
}

// InitiatePurchaseRequest is the purchase initiation payload.
type InitiatePurchaseRequest struct {
	CategoryID       string              `json:"category_id" validate:"required"`
	PurchaseKind     models.PurchaseKind `json:"purchase_kind" validate:"required"`
	SelectedTopicIDs []string            `json:"selected_topic_ids"`
}

// InitiatePurchaseResponse reports the outcome of a purchase initiation.
// For zero-amount purchases the grant is immediate and Order is nil.
type InitiatePurchaseResponse struct {
	OrderID        string             `json:"order_id,omitempty"`
	GatewayOrderID string             `json:"gateway_order_id,omitempty"`
	Amount         float64            `json:"amount"`
	AmountMinor    int64              `json:"amount_minor,omitempty"`
	Currency       string             `json:"currency,omitempty"`
	Quote          *plan.Quote        `json:"quote"`
	Granted        bool               `json:"granted"`
	UnlockedTopics []string           `json:"unlocked_topics,omitempty"`
	Status         models.OrderStatus `json:"status,omitempty"`
}

// ConfirmPaymentRequest is the gateway callback payload relayed by the client.
type ConfirmPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// ConfirmPaymentResponse reports the outcome of a payment confirmation.
type ConfirmPaymentResponse struct {
	OrderID        string             `json:"order_id"`
	Status         models.OrderStatus `json:"status"`
	UnlockedTopics []string           `json:"unlocked_topics,omitempty"`
}

// PurchaseService orchestrates the purchase workflow: validation, pricing,
// gateway orders and enrollment grants.
type PurchaseService struct {
	categories  purchaseCategoryReader
	topics      purchaseTopicReader
	enrollments enrollmentStore
	orders      orderStore
	users       purchaseUserReader
	gateway     payment.Gateway
	receipts    *export.ReceiptExporter
	notifier    purchaseNotifier
	invalidator accessInvalidator
	metrics     purchaseMetrics
	currency    string
	validator   *validator.Validate
	logger      *zap.Logger
}

// PurchaseServiceDeps bundles the collaborators of PurchaseService.
type PurchaseServiceDeps struct {
	Categories  purchaseCategoryReader
	Topics      purchaseTopicReader
	Enrollments enrollmentStore
	Orders      orderStore
	Users       purchaseUserReader
	Gateway     payment.Gateway
	Notifier    purchaseNotifier
	Invalidator accessInvalidator
	Metrics     purchaseMetrics
	Currency    string
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewPurchaseService constructs PurchaseService.
func NewPurchaseService(deps PurchaseServiceDeps) *PurchaseService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Currency == "" {
		deps.Currency = "INR"
	}
	return &PurchaseService{
		categories:  deps.Categories,
		topics:      deps.Topics,
		enrollments: deps.Enrollments,
		orders:      deps.Orders,
		users:       deps.Users,
		gateway:     deps.Gateway,
		receipts:    export.NewReceiptExporter(),
		notifier:    deps.Notifier,
		invalidator: deps.Invalidator,
		metrics:     deps.Metrics,
		currency:    deps.Currency,
		validator:   deps.Validator,
		logger:      deps.Logger,
	}
}

// Initiate validates and prices a purchase. Zero-amount purchases complete
// inline; paid ones register a gateway order and park the enrollment rows in
// PENDING until the callback arrives.
func (s *PurchaseService) Initiate(ctx context.Context, userID string, req InitiatePurchaseRequest) (*InitiatePurchaseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid purchase payload")
	}

	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	purchase := plan.PurchaseRequest{
		PlanType:         category.PlanType,
		PurchaseKind:     req.PurchaseKind,
		CategoryID:       category.ID,
		UserID:           userID,
		SelectedTopicIDs: req.SelectedTopicIDs,
	}
	if res := plan.ValidatePurchaseRequest(purchase); !res.Valid {
		return nil, res.Err
	}

	topics, err := s.topics.ListByCategory(ctx, category.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topics")
	}
	if err := s.checkSelectionBelongs(topics, req.SelectedTopicIDs); err != nil {
		return nil, err
	}

	quote, err := plan.CalculatePrice(plan.PriceInput{
		PlanType:         category.PlanType,
		BundlePrice:      category.BundlePrice,
		TopicPrices:      topicPriceMap(topics),
		SelectedTopicIDs: req.SelectedTopicIDs,
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PurchaseInitiated(quote.PurchaseKind)
	}

	if quote.FinalPrice == 0 {
		unlocked, err := s.grant(ctx, userID, category, quote.PurchaseKind, req.SelectedTopicIDs, topics, models.PaymentStatusFree)
		if err != nil {
			return nil, err
		}
		return &InitiatePurchaseResponse{Quote: quote, Granted: true, UnlockedTopics: unlocked}, nil
	}

	amountMinor := plan.MinorUnits(quote.FinalPrice)
	order := &models.PaymentOrder{
		UserID:       userID,
		CategoryID:   category.ID,
		PurchaseKind: quote.PurchaseKind,
		TopicIDs:     pq.StringArray(req.SelectedTopicIDs),
		Amount:       quote.FinalPrice,
		AmountMinor:  amountMinor,
		Currency:     s.currency,
		Status:       models.OrderStatusCreated,
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, amountMinor, s.currency, category.ID, map[string]string{
		"user_id":       userID,
		"category_id":   category.ID,
		"purchase_kind": string(quote.PurchaseKind),
	})
	if err != nil {
		return nil, err
	}
	order.GatewayOrderID = gatewayOrder.ID

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist order")
	}

	if err := s.parkPending(ctx, userID, category, quote.PurchaseKind, req.SelectedTopicIDs); err != nil {
		return nil, err
	}

	s.logger.Info("purchase initiated",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("category_id", category.ID),
		zap.String("purchase_kind", string(quote.PurchaseKind)),
		zap.Float64("amount", quote.FinalPrice))

	return &InitiatePurchaseResponse{
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
		Amount:         order.Amount,
		AmountMinor:    order.AmountMinor,
		Currency:       order.Currency,
		Quote:          quote,
		Status:         order.Status,
	}, nil
}

// Confirm settles a gateway callback. A bad signature fails the order and its
// pending rows; a good one grants the purchased topics.
func (s *PurchaseService) Confirm(ctx context.Context, req ConfirmPaymentRequest) (*ConfirmPaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload")
	}

	order, err := s.orders.FindByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order")
	}
	if order.Status == models.OrderStatusPaid {
		return &ConfirmPaymentResponse{OrderID: order.ID, Status: order.Status}, nil
	}

	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		if s.metrics != nil {
			s.metrics.VerificationFailed()
		}
		if err := s.fail(ctx, order); err != nil {
			return nil, err
		}
		s.logger.Warn("payment verification failed",
			zap.String("order_id", order.ID),
			zap.String("gateway_order_id", req.GatewayOrderID))
		return nil, appErrors.Clone(appErrors.ErrPaymentVerification, "")
	}

	category, err := s.categories.FindByID(ctx, order.CategoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	topics, err := s.topics.ListByCategory(ctx, order.CategoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topics")
	}

	paidAt := time.Now().UTC()
	if err := s.orders.MarkPaid(ctx, order.ID, paidAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update order")
	}

	unlocked, err := s.grant(ctx, order.UserID, category, order.PurchaseKind, order.TopicIDs, topics, models.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PurchaseCompleted(order.PurchaseKind)
	}
	if s.notifier != nil {
		s.notifier.PurchaseCompleted(order.UserID, order.CategoryID, order.PurchaseKind, order.Amount)
	}

	s.logger.Info("purchase completed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("unlocked_topics", len(unlocked)))

	return &ConfirmPaymentResponse{OrderID: order.ID, Status: models.OrderStatusPaid, UnlockedTopics: unlocked}, nil
}

// Receipt renders the PDF receipt of a paid order belonging to the user.
func (s *PurchaseService) Receipt(ctx context.Context, userID, orderID string) ([]byte, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order")
	}
	if order.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "order belongs to another user")
	}
	if order.Status != models.OrderStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "order is not paid")
	}

	category, err := s.categories.FindByID(ctx, order.CategoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	receipt := export.Receipt{
		OrderID:      order.ID,
		UserEmail:    user.Email,
		CategoryName: category.Name,
		PurchaseKind: string(order.PurchaseKind),
		Total:        order.Amount,
		Currency:     order.Currency,
	}
	if order.PaidAt != nil {
		receipt.PaidAt = *order.PaidAt
	}

	if len(order.TopicIDs) > 0 {
		topics, err := s.topics.ListByIDs(ctx, order.TopicIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topics")
		}
		for _, topic := range topics {
			receipt.Lines = append(receipt.Lines, export.ReceiptLine{Title: topic.Title, Price: topic.Price})
		}
	} else {
		receipt.Lines = []export.ReceiptLine{{Title: category.Name + " bundle", Price: order.Amount}}
	}

	pdf, err := s.receipts.Render(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return pdf, nil
}

// grant applies the unlock set. Bundle-style purchases write a completed
// bundle row; the enrollment timestamp anchors the temporal access rule and
// FutureTopicsIncluded snapshots the plan type at completion.
func (s *PurchaseService) grant(ctx context.Context, userID string, category *models.Category, kind models.PurchaseKind, selected []string, topics []models.Topic, status models.PaymentStatus) ([]string, error) {
	unlocked := plan.TopicsToUnlock(plan.UnlockInput{
		PlanType:         category.PlanType,
		PurchaseKind:     kind,
		CategoryTopicIDs: topicIDs(topics),
		SelectedTopicIDs: selected,
	})

	if kind == models.PurchaseKindBundle || category.PlanType == models.PlanTypeFree {
		now := time.Now().UTC()
		bundle := &models.BundleEnrollment{
			UserID:               userID,
			CategoryID:           category.ID,
			PaymentStatus:        models.PaymentStatusCompleted,
			EnrolledAt:           &now,
			FutureTopicsIncluded: category.PlanType == models.PlanTypeBundle,
		}
		if err := s.enrollments.UpsertBundleEnrollment(ctx, bundle); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record bundle enrollment")
		}
	}

	for _, topicID := range unlocked {
		enrollment := &models.Enrollment{UserID: userID, TopicID: topicID, PaymentStatus: status}
		if err := s.enrollments.UpsertEnrollment(ctx, enrollment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record enrollment")
		}
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID, category.ID)
	}
	return unlocked, nil
}

// parkPending writes the rows a paid purchase will later settle. Re-purchase
// after a failure moves the same rows back to PENDING.
func (s *PurchaseService) parkPending(ctx context.Context, userID string, category *models.Category, kind models.PurchaseKind, selected []string) error {
	if kind == models.PurchaseKindBundle {
		bundle := &models.BundleEnrollment{
			UserID:        userID,
			CategoryID:    category.ID,
			PaymentStatus: models.PaymentStatusPending,
		}
		return s.upsertPendingBundle(ctx, bundle)
	}
	for _, topicID := range selected {
		// Granting rows are terminal; only FAILED rows return to PENDING.
		existing, err := s.enrollments.FindEnrollment(ctx, userID, topicID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		if existing != nil && existing.PaymentStatus.Granting() {
			continue
		}
		enrollment := &models.Enrollment{UserID: userID, TopicID: topicID, PaymentStatus: models.PaymentStatusPending}
		if err := s.enrollments.UpsertEnrollment(ctx, enrollment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record pending enrollment")
		}
	}
	return nil
}

func (s *PurchaseService) upsertPendingBundle(ctx context.Context, bundle *models.BundleEnrollment) error {
	// Never downgrade a granting bundle to PENDING on a duplicate purchase.
	existing, err := s.enrollments.FindBundleEnrollment(ctx, bundle.UserID, bundle.CategoryID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bundle enrollment")
	}
	if existing != nil && existing.PaymentStatus.Granting() {
		return nil
	}
	if err := s.enrollments.UpsertBundleEnrollment(ctx, bundle); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record pending bundle")
	}
	return nil
}

func (s *PurchaseService) fail(ctx context.Context, order *models.PaymentOrder) error {
	if err := s.orders.MarkFailed(ctx, order.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update order")
	}
	if order.PurchaseKind == models.PurchaseKindBundle {
		// A granting bundle row is terminal; a failed duplicate order must
		// not revoke it.
		existing, err := s.enrollments.FindBundleEnrollment(ctx, order.UserID, order.CategoryID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bundle enrollment")
		}
		if existing != nil && existing.PaymentStatus.Granting() {
			return nil
		}
		bundle := &models.BundleEnrollment{
			UserID:        order.UserID,
			CategoryID:    order.CategoryID,
			PaymentStatus: models.PaymentStatusFailed,
		}
		if err := s.enrollments.UpsertBundleEnrollment(ctx, bundle); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record failed bundle")
		}
		return nil
	}
	for _, topicID := range order.TopicIDs {
		existing, err := s.enrollments.FindEnrollment(ctx, order.UserID, topicID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		if existing != nil && existing.PaymentStatus.Granting() {
			continue
		}
		enrollment := &models.Enrollment{UserID: order.UserID, TopicID: topicID, PaymentStatus: models.PaymentStatusFailed}
		if err := s.enrollments.UpsertEnrollment(ctx, enrollment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record failed enrollment")
		}
	}
	return nil
}

func (s *PurchaseService) checkSelectionBelongs(topics []models.Topic, selected []string) error {
	if len(selected) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		known[t.ID] = struct{}{}
	}
	for _, id := range selected {
		if _, ok := known[id]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, "topic "+id+" does not belong to the category")
		}
	}
	return nil
}

func topicIDs(topics []models.Topic) []string {
	ids := make([]string, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
	}
	return ids
}
