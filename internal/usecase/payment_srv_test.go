package usecase

import (
	"context"
	"testing"

	"learnx/internal/data/entity"
	"learnx/internal/dto/request"
	"learnx/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
)

func TestCreateDeferredPayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	resp, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.PaymentStatusVerificationRequired), resp.Status)
	assert.True(t, resp.RequiresVerification)
	assert.Len(t, resp.VerificationCode, 8)
	assert.Contains(t, resp.TransactionID, "TXN")
	assert.Equal(t, "learnx@bank", resp.Receiver.UpiID)

	stored, err := env.payments.FindByTransactionID(context.Background(), resp.TransactionID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.PaymentStatusVerificationRequired, stored.Status)
	assert.True(t, stored.Details.Matches(entity.MethodUPI))
	assert.False(t, stored.VerifiedByUser)
	assert.False(t, stored.VerifiedByAdmin)
}

func TestCreateDeferredPaymentAmountMismatch(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	_, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID:  course.ID.String(),
		Amount:    498.99,
		Method:    "card",
		CardLast4: "4242",
	})
	require.Error(t, err)
	assert.Equal(t, errs.InvalidAmount, errs.KindOf(err))
}

func TestCreateDeferredPaymentUnknownCourse(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	user := env.seedUser(entity.RoleStudent)

	_, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: uuid.NewString(),
		Amount:   499,
		Method:   "qr",
	})
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestCreateDeferredPaymentAlreadyCompleted(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	completePayment(t, env, svc, user.ID, course.ID)

	_, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))
}

func TestCreateDeferredPaymentGatewayFallbackOrder(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(750)
	user := env.seedUser(entity.RoleStudent)

	// No gateway client configured: a local order id is generated instead.
	resp, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   750,
		Method:   "gateway",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.GatewayOrderID, "order_")
}

func TestSelfReport(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	created, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	result, err := svc.SelfReport(context.Background(), user.ID, &request.VerifyPaymentRequest{
		TransactionID:         created.TransactionID,
		ExternalTransactionID: "BANKREF001",
		VerificationCode:      created.VerificationCode,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending_admin_verification", result.Status)

	stored, err := env.payments.FindByTransactionID(context.Background(), created.TransactionID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, stored.Status)
	require.NotNil(t, stored.ExternalTransactionID)
	assert.Equal(t, "BANKREF001", *stored.ExternalTransactionID)
}

func TestSelfReportWrongCode(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	created, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	_, err = svc.SelfReport(context.Background(), user.ID, &request.VerifyPaymentRequest{
		TransactionID:         created.TransactionID,
		ExternalTransactionID: "BANKREF001",
		VerificationCode:      "WRONGC0D",
	})
	require.Error(t, err)
	// A wrong code looks exactly like a missing record.
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestSelfReportTwice(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	created, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	report := &request.VerifyPaymentRequest{
		TransactionID:         created.TransactionID,
		ExternalTransactionID: "BANKREF001",
		VerificationCode:      created.VerificationCode,
	}
	_, err = svc.SelfReport(context.Background(), user.ID, report)
	require.NoError(t, err)

	// Second submission finds the record no longer awaiting verification.
	_, err = svc.SelfReport(context.Background(), user.ID, report)
	require.Error(t, err)
	assert.Equal(t, errs.IllegalTransition, errs.KindOf(err))
}

func TestCreateWalletOrder(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	order, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)

	assert.Contains(t, order.OrderID, "wallet_")
	assert.Equal(t, 499.0, order.Amount)
	assert.Contains(t, order.QRCodeURL, "upi://pay?")
	assert.Contains(t, order.QRCodeURL, "learnx%40bank")

	stored, err := env.payments.FindByWalletOrderID(context.Background(), order.OrderID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.PaymentStatusPending, stored.Status)
	assert.Equal(t, entity.MethodWallet, stored.Method)
}

func TestInstantVerify(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	order, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)

	result, err := svc.InstantVerify(context.Background(), user.ID, &request.WalletVerifyRequest{
		OrderID:               order.OrderID,
		ExternalTransactionID: "T2408281234567890",
		Amount:                499,
	})
	require.NoError(t, err)
	assert.Equal(t, "T2408281234567890", result.TransactionID)

	stored, err := env.payments.FindByWalletOrderID(context.Background(), order.OrderID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, stored.Status)
	assert.True(t, stored.VerifiedByUser)
	assert.True(t, stored.VerifiedByAdmin)
	require.NotNil(t, stored.Details.Wallet)
	assert.Equal(t, "T2408281234567890", stored.Details.Wallet.TransactionID)
	assert.NotNil(t, stored.Details.Wallet.VerifiedAt)
}

func TestInstantVerifyAmountMismatch(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	order, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)

	_, err = svc.InstantVerify(context.Background(), user.ID, &request.WalletVerifyRequest{
		OrderID:               order.OrderID,
		ExternalTransactionID: "T2408281234567890",
		Amount:                500,
	})
	require.Error(t, err)
	assert.Equal(t, errs.InvalidAmount, errs.KindOf(err))

	// The record is untouched by a rejected confirmation.
	stored, err := env.payments.FindByWalletOrderID(context.Background(), order.OrderID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, stored.Status)
}

func TestInstantVerifyTwice(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	order, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)

	verify := &request.WalletVerifyRequest{
		OrderID:               order.OrderID,
		ExternalTransactionID: "T2408281234567890",
		Amount:                499,
	}
	_, err = svc.InstantVerify(context.Background(), user.ID, verify)
	require.NoError(t, err)

	_, err = svc.InstantVerify(context.Background(), user.ID, verify)
	require.Error(t, err)
	assert.Equal(t, errs.IllegalTransition, errs.KindOf(err))
}

func TestInstantVerifyReusedExternalID(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	first := env.seedCourse(499)
	second := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	firstOrder, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: first.ID.String(),
	})
	require.NoError(t, err)
	_, err = svc.InstantVerify(context.Background(), user.ID, &request.WalletVerifyRequest{
		OrderID:               firstOrder.OrderID,
		ExternalTransactionID: "T2408281234567890",
		Amount:                499,
	})
	require.NoError(t, err)

	secondOrder, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: second.ID.String(),
	})
	require.NoError(t, err)

	// Same wallet transaction id must not buy a second course.
	_, err = svc.InstantVerify(context.Background(), user.ID, &request.WalletVerifyRequest{
		OrderID:               secondOrder.OrderID,
		ExternalTransactionID: "T2408281234567890",
		Amount:                499,
	})
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))
}

func TestInstantVerifySecondOpenOrderForSameCourse(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	// Two wallet orders can coexist while neither is verified.
	first, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)
	second, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)

	_, err = svc.InstantVerify(context.Background(), user.ID, &request.WalletVerifyRequest{
		OrderID:               first.OrderID,
		ExternalTransactionID: "T2408281234567890",
		Amount:                499,
	})
	require.NoError(t, err)

	// Only the first may ever reach completed, even with a distinct
	// external transaction id.
	_, err = svc.InstantVerify(context.Background(), user.ID, &request.WalletVerifyRequest{
		OrderID:               second.OrderID,
		ExternalTransactionID: "T2408289876543210",
		Amount:                499,
	})
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))

	completed := entity.PaymentStatusCompleted
	count, err := env.payments.CountAll(context.Background(), &completed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAdminApproveAfterParallelInstantCompletion(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	// A deferred attempt reaches the admin review queue first.
	paymentID := reportPayment(t, env, svc, user.ID, course.ID)

	// Meanwhile a wallet attempt for the same course completes.
	order, err := svc.CreateWalletOrder(context.Background(), user.ID, &request.CreateWalletOrderRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)
	_, err = svc.InstantVerify(context.Background(), user.ID, &request.WalletVerifyRequest{
		OrderID:               order.OrderID,
		ExternalTransactionID: "T2408281234567890",
		Amount:                499,
	})
	require.NoError(t, err)

	// Approving the queued attempt would mint a second completed record.
	approved := true
	_, err = svc.Decide(context.Background(), true, paymentID, &request.AdminDecisionRequest{Approved: &approved})
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))

	completed := entity.PaymentStatusCompleted
	count, err := env.payments.CountAll(context.Background(), &completed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The queued attempt is still pending; rejecting it remains possible.
	stored, err := env.payments.FindByID(context.Background(), uuid.MustParse(paymentID))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, stored.Status)
}

func TestAdminApprove(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	paymentID := reportPayment(t, env, svc, user.ID, course.ID)

	approved := true
	resp, err := svc.Decide(context.Background(), true, paymentID, &request.AdminDecisionRequest{Approved: &approved})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentStatusCompleted, resp.Status)
	assert.True(t, resp.VerifiedByAdmin)
	// The payer's own report flag is not rewritten by an admin decision.
	assert.False(t, resp.VerifiedByUser)
}

func TestAdminReject(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	paymentID := reportPayment(t, env, svc, user.ID, course.ID)

	approved := false
	resp, err := svc.Decide(context.Background(), true, paymentID, &request.AdminDecisionRequest{Approved: &approved})
	require.NoError(t, err)

	assert.Equal(t, entity.PaymentStatusFailed, resp.Status)
	assert.False(t, resp.VerifiedByAdmin)
}

func TestAdminDecideRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()

	approved := true
	_, err := svc.Decide(context.Background(), false, uuid.NewString(), &request.AdminDecisionRequest{Approved: &approved})
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))
}

func TestAdminDecideBeforeSelfReport(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	created, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	approved := true
	_, err = svc.Decide(context.Background(), true, created.PaymentID, &request.AdminDecisionRequest{Approved: &approved})
	require.Error(t, err)
	assert.Equal(t, errs.IllegalTransition, errs.KindOf(err))
}

func TestAdminDecideTwice(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	paymentID := reportPayment(t, env, svc, user.ID, course.ID)

	approved := true
	_, err := svc.Decide(context.Background(), true, paymentID, &request.AdminDecisionRequest{Approved: &approved})
	require.NoError(t, err)

	rejected := false
	_, err = svc.Decide(context.Background(), true, paymentID, &request.AdminDecisionRequest{Approved: &rejected})
	require.Error(t, err)
	assert.Equal(t, errs.IllegalTransition, errs.KindOf(err))

	// The first decision stands.
	stored, err := env.payments.FindByID(context.Background(), uuid.MustParse(paymentID))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, stored.Status)
}

func TestGetStatusScopedToOwner(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	owner := env.seedUser(entity.RoleStudent)
	other := env.seedUser(entity.RoleStudent)

	created, err := svc.CreateDeferred(context.Background(), owner.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	status, err := svc.GetStatus(context.Background(), owner.ID, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "Distributed Systems", status.CourseTitle)

	_, err = svc.GetStatus(context.Background(), other.ID, created.TransactionID)
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	user := env.seedUser(entity.RoleStudent)

	for i := 0; i < 3; i++ {
		course := env.seedCourse(100)
		_, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
			CourseID: course.ID.String(),
			Amount:   100,
			Method:   "qr",
		})
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(context.Background(), user.ID, &request.PaginatedRequest{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, history.Data, 2)
	assert.Equal(t, int64(3), history.Pagination.Total)
	assert.Equal(t, 2, history.Pagination.TotalPages)
}

func TestListAll(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	reportPayment(t, env, svc, user.ID, course.ID)

	_, err := svc.ListAll(context.Background(), false, "", &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))

	_, err = svc.ListAll(context.Background(), true, "paid", &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.Equal(t, errs.Invalid, errs.KindOf(err))

	all, err := svc.ListAll(context.Background(), true, "", &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, all.Data, 1)

	pending, err := svc.ListAll(context.Background(), true, "pending", &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, pending.Data, 1)

	completed, err := svc.ListAll(context.Background(), true, "completed", &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, completed.Data)
}

func TestReceiptOnlyForCompleted(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	created, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	_, err = svc.Receipt(context.Background(), user.ID, created.TransactionID)
	require.Error(t, err)
	assert.Equal(t, errs.Invalid, errs.KindOf(err))
}

func TestReceiptForCompletedPayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	transactionID := completePayment(t, env, svc, user.ID, course.ID)

	pdf, err := svc.Receipt(context.Background(), user.ID, transactionID)
	require.NoError(t, err)
	assert.True(t, len(pdf) > 0)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestExportAll(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	completePayment(t, env, svc, user.ID, course.ID)

	_, err := svc.ExportAll(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))

	workbook, err := svc.ExportAll(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, len(workbook) > 0)
}

// reportPayment walks a record to pending and returns its payment id.
func reportPayment(t *testing.T, env *testEnv, svc PaymentService, userID, courseID uuid.UUID) string {
	t.Helper()

	course, err := env.courses.FindByID(context.Background(), courseID)
	require.NoError(t, err)

	created, err := svc.CreateDeferred(context.Background(), userID, &request.CreatePaymentRequest{
		CourseID: courseID.String(),
		Amount:   course.Price,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	_, err = svc.SelfReport(context.Background(), userID, &request.VerifyPaymentRequest{
		TransactionID:         created.TransactionID,
		ExternalTransactionID: "BANKREF-" + created.PaymentID[:8],
		VerificationCode:      created.VerificationCode,
	})
	require.NoError(t, err)

	return created.PaymentID
}

// completePayment walks a record all the way to completed via admin approval
// and returns its transaction id.
func completePayment(t *testing.T, env *testEnv, svc PaymentService, userID, courseID uuid.UUID) string {
	t.Helper()

	paymentID := reportPayment(t, env, svc, userID, courseID)

	approved := true
	resp, err := svc.Decide(context.Background(), true, paymentID, &request.AdminDecisionRequest{Approved: &approved})
	require.NoError(t, err)
	require.Equal(t, entity.PaymentStatusCompleted, resp.Status)

	return resp.TransactionID
}
