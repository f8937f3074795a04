package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"learnx/internal/data/entity"
	"learnx/internal/data/repository"
	"learnx/internal/dto/request"
	"learnx/internal/dto/response"
	"learnx/internal/errs"
	"learnx/pkg/events"
	"learnx/pkg/gateway"
	"learnx/pkg/notify"
	"learnx/pkg/report"
	"learnx/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// exportLimit caps how many records a single XLSX export pulls.
const exportLimit = 10000

// PaymentService is the payment state machine. Legal transitions:
//
//	create (deferred)        -> verification_required
//	create (instant wallet)  -> pending
//	self-report              verification_required -> pending
//	instant-verify           pending -> completed
//	admin approve            pending -> completed
//	admin reject             pending -> failed
//
// completed and failed are terminal. Every transition is a conditional
// update in the store, so concurrent requests cannot double-apply one.
type PaymentService interface {
	CreateDeferred(ctx context.Context, userID uuid.UUID, req *request.CreatePaymentRequest) (*response.CreatePaymentResponse, error)
	CreateWalletOrder(ctx context.Context, userID uuid.UUID, req *request.CreateWalletOrderRequest) (*response.WalletOrderResponse, error)
	SelfReport(ctx context.Context, userID uuid.UUID, req *request.VerifyPaymentRequest) (*response.VerifySubmittedResponse, error)
	InstantVerify(ctx context.Context, userID uuid.UUID, req *request.WalletVerifyRequest) (*response.WalletVerifiedResponse, error)
	Decide(ctx context.Context, isAdmin bool, paymentID string, req *request.AdminDecisionRequest) (*response.PaymentResponse, error)

	GetStatus(ctx context.Context, userID uuid.UUID, transactionID string) (*response.PaymentResponse, error)
	GetHistory(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	ListAll(ctx context.Context, isAdmin bool, statusFilter string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	Receipt(ctx context.Context, userID uuid.UUID, transactionID string) ([]byte, error)
	ExportAll(ctx context.Context, isAdmin bool) ([]byte, error)
}

type paymentService struct {
	repo     *repository.Repository
	config   *utils.Config
	gateway  *gateway.Client
	notifier *notify.Notifier
	events   *events.Publisher
	log      *zap.Logger
}

func NewPaymentService(
	repo *repository.Repository,
	config *utils.Config,
	gw *gateway.Client,
	notifier *notify.Notifier,
	publisher *events.Publisher,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		repo:     repo,
		config:   config,
		gateway:  gw,
		notifier: notifier,
		events:   publisher,
		log:      log.With(zap.String("service", "payment")),
	}
}

// checkCreatePreconditions loads the course and rejects a new attempt when a
// completed record already exists for (user, course).
func (s *paymentService) checkCreatePreconditions(ctx context.Context, userID, courseID uuid.UUID) (*entity.Course, error) {
	course, err := s.repo.Course.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, errs.NewNotFoundError("course not found")
	}

	completed, err := s.repo.Payment.FindCompletedByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check completed payment: %w", err)
	}
	if completed != nil {
		return nil, errs.NewConflictError("payment already completed for this course")
	}

	return course, nil
}

func (s *paymentService) receiver() response.ReceiverAccount {
	return response.ReceiverAccount{
		AccountNumber: s.config.Receiver.AccountNumber,
		AccountHolder: s.config.Receiver.AccountHolder,
		BankName:      s.config.Receiver.BankName,
		UpiID:         s.config.Receiver.UpiID,
	}
}

func (s *paymentService) CreateDeferred(ctx context.Context, userID uuid.UUID, req *request.CreatePaymentRequest) (*response.CreatePaymentResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		s.log.Warn("Create payment validation failed", zap.Any("errors", errors))
		return nil, errs.NewInvalidError("validation failed: " + utils.FormatValidationErrors(errors))
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, errs.NewInvalidError(fmt.Sprintf("invalid course ID format %s", req.CourseID))
	}

	course, err := s.checkCreatePreconditions(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	// Amount is fixed at the course's price at creation time.
	if req.Amount != course.Price {
		return nil, errs.NewInvalidAmountError("payment amount does not match course price")
	}

	method := entity.PaymentMethod(req.Method)
	details, gatewayOrderID, err := s.buildDeferredDetails(method, req, course)
	if err != nil {
		return nil, err
	}

	verificationCode := utils.GenerateVerificationCode()
	payment := &entity.Payment{
		Base:             entity.NewBase(),
		UserID:           userID,
		CourseID:         courseID,
		Amount:           req.Amount,
		Method:           method,
		Status:           entity.PaymentStatusVerificationRequired,
		TransactionID:    utils.GenerateTransactionID(),
		VerificationCode: &verificationCode,
		Details:          details,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("Deferred payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("method", string(method)),
		zap.Float64("amount", payment.Amount),
	)

	return &response.CreatePaymentResponse{
		PaymentID:            payment.ID.String(),
		TransactionID:        payment.TransactionID,
		VerificationCode:     verificationCode,
		Status:               string(payment.Status),
		RequiresVerification: true,
		GatewayOrderID:       gatewayOrderID,
		Receiver:             s.receiver(),
		Message:              "Payment initiated. Complete the transfer and submit your bank reference for verification.",
	}, nil
}

// buildDeferredDetails assembles the details variant for a deferred method.
// For the gateway method an order is created upstream when a client is
// configured; otherwise a local order id stands in.
func (s *paymentService) buildDeferredDetails(method entity.PaymentMethod, req *request.CreatePaymentRequest, course *entity.Course) (entity.PaymentDetails, string, error) {
	var details entity.PaymentDetails

	switch method {
	case entity.MethodCard:
		details.Card = &entity.CardDetails{Last4: req.CardLast4, CardType: req.CardType}
	case entity.MethodUPI:
		details.Upi = &entity.UpiDetails{UpiID: req.UpiID}
	case entity.MethodQR:
		details.Qr = &entity.QrDetails{Reference: req.QrReference}
	case entity.MethodGateway:
		orderID := ""
		if s.gateway != nil {
			id, err := s.gateway.CreateOrder(course.Price, "course_"+course.ID.String())
			if err != nil {
				return details, "", fmt.Errorf("create gateway order: %w", err)
			}
			orderID = id
		} else {
			orderID = utils.GenerateGatewayOrderID()
		}
		details.Gateway = &entity.GatewayDetails{OrderID: orderID}
		return details, orderID, nil
	default:
		return details, "", errs.NewInvalidError(fmt.Sprintf("method %s is not a deferred payment method", method))
	}

	return details, "", nil
}

func (s *paymentService) CreateWalletOrder(ctx context.Context, userID uuid.UUID, req *request.CreateWalletOrderRequest) (*response.WalletOrderResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		s.log.Warn("Create wallet order validation failed", zap.Any("errors", errors))
		return nil, errs.NewInvalidError("validation failed: " + utils.FormatValidationErrors(errors))
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, errs.NewInvalidError(fmt.Sprintf("invalid course ID format %s", req.CourseID))
	}

	course, err := s.checkCreatePreconditions(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	orderID := utils.GenerateWalletOrderID()
	payment := &entity.Payment{
		Base:          entity.NewBase(),
		UserID:        userID,
		CourseID:      courseID,
		Amount:        course.Price,
		Method:        entity.MethodWallet,
		Status:        entity.PaymentStatusPending,
		TransactionID: utils.GenerateTransactionID(),
		Details: entity.PaymentDetails{
			Wallet: &entity.WalletDetails{
				OrderID: orderID,
				UpiID:   s.config.Receiver.UpiID,
			},
		},
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("Wallet order created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", orderID),
		zap.Float64("amount", payment.Amount),
	)

	return &response.WalletOrderResponse{
		PaymentID: payment.ID.String(),
		OrderID:   orderID,
		Amount:    payment.Amount,
		Currency:  s.config.Gateway.Currency,
		UpiID:     s.config.Receiver.UpiID,
		QRCodeURL: s.walletDeepLink(payment.Amount, course.Title),
		Receiver:  s.receiver(),
	}, nil
}

// walletDeepLink builds the upi:// link the frontend renders as a QR code.
func (s *paymentService) walletDeepLink(amount float64, courseTitle string) string {
	q := url.Values{}
	q.Set("pa", s.config.Receiver.UpiID)
	q.Set("pn", s.config.Receiver.AccountHolder)
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", s.config.Gateway.Currency)
	q.Set("tn", "Course Payment - "+courseTitle)
	return "upi://pay?" + q.Encode()
}

func (s *paymentService) SelfReport(ctx context.Context, userID uuid.UUID, req *request.VerifyPaymentRequest) (*response.VerifySubmittedResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		s.log.Warn("Self report validation failed", zap.Any("errors", errors))
		return nil, errs.NewInvalidError("validation failed: " + utils.FormatValidationErrors(errors))
	}

	// The triple must match exactly; a wrong code is reported the same way
	// as a missing record so codes cannot be probed.
	payment, err := s.repo.Payment.FindForSelfReport(ctx, req.TransactionID, userID, req.VerificationCode)
	if err != nil {
		return nil, fmt.Errorf("find payment for self report: %w", err)
	}
	if payment == nil {
		return nil, errs.NewNotFoundError("payment record not found or invalid verification code")
	}

	if payment.VerifiedByUser || payment.Status.Terminal() {
		return nil, errs.NewIllegalTransitionError("payment already verified")
	}
	if payment.Status != entity.PaymentStatusVerificationRequired {
		return nil, errs.NewIllegalTransitionError("verification already submitted and awaiting review")
	}

	ok, err := s.repo.Payment.MarkReported(ctx, payment.ID, req.ExternalTransactionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against another submission or an admin decision.
		return nil, errs.NewIllegalTransitionError("payment is no longer awaiting verification")
	}

	payment.Status = entity.PaymentStatusPending
	payment.ExternalTransactionID = &req.ExternalTransactionID

	s.log.Info("Payment verification submitted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
	)

	go s.publishEvent(events.EventPaymentSubmitted, payment)

	return &response.VerifySubmittedResponse{
		TransactionID: payment.TransactionID,
		Status:        "pending_admin_verification",
		Message:       "Payment verification submitted. An admin will verify and grant access within 24 hours.",
	}, nil
}

func (s *paymentService) InstantVerify(ctx context.Context, userID uuid.UUID, req *request.WalletVerifyRequest) (*response.WalletVerifiedResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		s.log.Warn("Instant verify validation failed", zap.Any("errors", errors))
		return nil, errs.NewInvalidError("validation failed: " + utils.FormatValidationErrors(errors))
	}

	payment, err := s.repo.Payment.FindByWalletOrderID(ctx, req.OrderID, userID)
	if err != nil {
		return nil, fmt.Errorf("find wallet payment: %w", err)
	}
	if payment == nil {
		return nil, errs.NewNotFoundError("payment record not found")
	}

	if payment.Status.Terminal() {
		return nil, errs.NewIllegalTransitionError("payment already verified")
	}

	// Another open attempt for the same course may have completed since
	// this order was created.
	completed, err := s.repo.Payment.FindCompletedByUserAndCourse(ctx, userID, payment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check completed payment: %w", err)
	}
	if completed != nil {
		return nil, errs.NewConflictError("payment already completed for this course")
	}

	// Exact match, no rounding or coercion.
	if req.Amount != payment.Amount {
		return nil, errs.NewInvalidAmountError("payment amount mismatch")
	}

	// One real-world transaction must not pay for two courses.
	claimed, err := s.repo.Payment.CompletedExternalIDExists(ctx, req.ExternalTransactionID, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("check transaction ID reuse: %w", err)
	}
	if claimed {
		return nil, errs.NewConflictError("transaction ID already used")
	}

	now := time.Now()
	details := payment.Details
	if details.Wallet == nil {
		details.Wallet = &entity.WalletDetails{OrderID: req.OrderID}
	}
	details.Wallet.TransactionID = req.ExternalTransactionID
	details.Wallet.VerifiedAt = &now

	ok, err := s.repo.Payment.CompleteInstant(ctx, payment.ID, req.ExternalTransactionID, details)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NewIllegalTransitionError("payment already verified")
	}

	payment.Status = entity.PaymentStatusCompleted
	payment.VerifiedByUser = true
	payment.VerifiedByAdmin = true
	payment.ExternalTransactionID = &req.ExternalTransactionID
	payment.Details = details

	s.log.Info("Instant payment verified",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("external_transaction_id", req.ExternalTransactionID),
	)

	go s.afterDecision(payment)

	return &response.WalletVerifiedResponse{
		PaymentID:     payment.ID.String(),
		CourseID:      payment.CourseID.String(),
		TransactionID: req.ExternalTransactionID,
		Message:       "Payment verified successfully. You now have instant access to the course.",
	}, nil
}

func (s *paymentService) Decide(ctx context.Context, isAdmin bool, paymentID string, req *request.AdminDecisionRequest) (*response.PaymentResponse, error) {
	if !isAdmin {
		return nil, errs.NewUnauthorizedError("administrator capability required")
	}

	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		s.log.Warn("Admin decision validation failed", zap.Any("errors", errors))
		return nil, errs.NewInvalidError("validation failed: " + utils.FormatValidationErrors(errors))
	}

	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, errs.NewInvalidError(fmt.Sprintf("invalid payment ID format %s", paymentID))
	}

	payment, err := s.repo.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return nil, errs.NewNotFoundError("payment not found")
	}

	if payment.Status.Terminal() {
		return nil, errs.NewIllegalTransitionError("payment already decided")
	}
	if payment.Status != entity.PaymentStatusPending {
		return nil, errs.NewIllegalTransitionError("payment is awaiting payer verification, not admin review")
	}

	approved := *req.Approved
	if approved {
		// The payer may have completed a parallel attempt for the same
		// course while this one sat in the review queue.
		completed, err := s.repo.Payment.FindCompletedByUserAndCourse(ctx, payment.UserID, payment.CourseID)
		if err != nil {
			return nil, fmt.Errorf("check completed payment: %w", err)
		}
		if completed != nil {
			return nil, errs.NewConflictError("payment already completed for this course")
		}
	}

	var ok bool
	if approved {
		ok, err = s.repo.Payment.Approve(ctx, id)
	} else {
		ok, err = s.repo.Payment.Reject(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NewIllegalTransitionError("payment already decided")
	}

	if approved {
		payment.Status = entity.PaymentStatusCompleted
		payment.VerifiedByAdmin = true
	} else {
		payment.Status = entity.PaymentStatusFailed
	}

	s.log.Info("Admin decision applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.Bool("approved", approved),
	)

	go s.afterDecision(payment)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetStatus(ctx context.Context, userID uuid.UUID, transactionID string) (*response.PaymentResponse, error) {
	payment, err := s.repo.Payment.FindByTransactionID(ctx, transactionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load payment status: %w", err)
	}
	if payment == nil {
		return nil, errs.NewNotFoundError("payment not found")
	}

	resp := response.PaymentToResponse(payment)
	if course, err := s.repo.Course.FindByID(ctx, payment.CourseID); err == nil && course != nil {
		resp.CourseTitle = course.Title
	}

	return &resp, nil
}

func (s *paymentService) GetHistory(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	payments, err := s.repo.Payment.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("load payment history: %w", err)
	}

	total, err := s.repo.Payment.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count payment history: %w", err)
	}

	responses := make([]response.PaymentResponse, len(payments))
	for i, payment := range payments {
		responses[i] = response.PaymentToResponse(payment)
		if course, err := s.repo.Course.FindByID(ctx, payment.CourseID); err == nil && course != nil {
			responses[i].CourseTitle = course.Title
		}
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *paymentService) ListAll(ctx context.Context, isAdmin bool, statusFilter string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	if !isAdmin {
		return nil, errs.NewUnauthorizedError("administrator capability required")
	}

	var status *entity.PaymentStatus
	if statusFilter != "" {
		candidate := entity.PaymentStatus(statusFilter)
		switch candidate {
		case entity.PaymentStatusPending, entity.PaymentStatusVerificationRequired,
			entity.PaymentStatusCompleted, entity.PaymentStatusFailed:
			status = &candidate
		default:
			return nil, errs.NewInvalidError(fmt.Sprintf("invalid status filter %s", statusFilter))
		}
	}

	payments, err := s.repo.Payment.FindAll(ctx, status, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	total, err := s.repo.Payment.CountAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}

	responses := make([]response.PaymentResponse, len(payments))
	for i, payment := range payments {
		responses[i] = response.PaymentToResponse(payment)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}

func (s *paymentService) Receipt(ctx context.Context, userID uuid.UUID, transactionID string) ([]byte, error) {
	payment, err := s.repo.Payment.FindByTransactionID(ctx, transactionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load payment for receipt: %w", err)
	}
	if payment == nil {
		return nil, errs.NewNotFoundError("payment not found")
	}
	if payment.Status != entity.PaymentStatusCompleted {
		return nil, errs.NewInvalidError("receipt is available only for completed payments")
	}

	courseTitle := ""
	if course, err := s.repo.Course.FindByID(ctx, payment.CourseID); err == nil && course != nil {
		courseTitle = course.Title
	}

	payerName := ""
	if user, err := s.repo.User.FindByID(ctx, userID); err == nil && user != nil {
		payerName = user.Name
	}

	return report.GenerateReceipt(payment, courseTitle, payerName)
}

func (s *paymentService) ExportAll(ctx context.Context, isAdmin bool) ([]byte, error) {
	if !isAdmin {
		return nil, errs.NewUnauthorizedError("administrator capability required")
	}

	payments, err := s.repo.Payment.FindAll(ctx, nil, exportLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("load payments for export: %w", err)
	}

	return report.ExportPayments(payments)
}

// publishEvent emits a lifecycle event off the request path.
func (s *paymentService) publishEvent(eventType string, payment *entity.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.events.Publish(ctx, eventType, payment); err != nil {
		s.log.Warn("Payment event not published",
			zap.Error(err),
			zap.String("type", eventType),
			zap.String("transaction_id", payment.TransactionID),
		)
	}
}

// afterDecision fans out events and notifications once a record reaches a
// terminal state. Best-effort.
func (s *paymentService) afterDecision(payment *entity.Payment) {
	eventType := events.EventPaymentFailed
	if payment.Status == entity.PaymentStatusCompleted {
		eventType = events.EventPaymentCompleted
	}
	s.publishEvent(eventType, payment)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := s.repo.User.FindByID(ctx, payment.UserID)
	if err != nil {
		s.log.Warn("Failed to load payer for notification", zap.Error(err))
	}
	course, err := s.repo.Course.FindByID(ctx, payment.CourseID)
	if err != nil {
		s.log.Warn("Failed to load course for notification", zap.Error(err))
	}

	s.notifier.PaymentDecided(payment, user, course)
}
