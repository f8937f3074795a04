package usecase

import (
	"context"
	"testing"

	"learnx/internal/data/entity"
	"learnx/internal/dto/request"
	"learnx/internal/dto/response"
	"learnx/internal/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (e *testEnv) accessService() AccessService {
	return NewAccessService(e.repo, zap.NewNop())
}

func TestAccessFreeCourse(t *testing.T) {
	env := newTestEnv()
	access := env.accessService()
	course := env.seedCourse(0)
	user := env.seedUser(entity.RoleStudent)

	decision, err := access.Evaluate(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, decision.HasAccess)
	assert.Equal(t, response.AccessReasonFreeCourse, decision.Reason)
}

func TestAccessUnknownCourse(t *testing.T) {
	env := newTestEnv()
	access := env.accessService()
	user := env.seedUser(entity.RoleStudent)

	_, err := access.Evaluate(context.Background(), user.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestAccessNoPayment(t *testing.T) {
	env := newTestEnv()
	access := env.accessService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	decision, err := access.Evaluate(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, decision.HasAccess)
	assert.Equal(t, response.AccessReasonPaymentRequired, decision.Reason)
}

func TestAccessOpenPayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	access := env.accessService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	created, err := svc.CreateDeferred(context.Background(), user.ID, &request.CreatePaymentRequest{
		CourseID: course.ID.String(),
		Amount:   499,
		Method:   "upi",
		UpiID:    "payer@bank",
	})
	require.NoError(t, err)

	decision, err := access.Evaluate(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, decision.HasAccess)
	assert.Equal(t, response.AccessReasonPaymentPending, decision.Reason)
	assert.Equal(t, entity.PaymentStatusVerificationRequired, decision.PaymentStatus)
	assert.Equal(t, created.TransactionID, decision.TransactionID)
}

func TestAccessCompletedPayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	access := env.accessService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	transactionID := completePayment(t, env, svc, user.ID, course.ID)

	decision, err := access.Evaluate(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, decision.HasAccess)
	assert.Equal(t, response.AccessReasonPaymentVerified, decision.Reason)
	assert.Equal(t, transactionID, decision.TransactionID)
}

func TestAccessRejectedPaymentDoesNotBlock(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	access := env.accessService()
	course := env.seedCourse(499)
	user := env.seedUser(entity.RoleStudent)

	paymentID := reportPayment(t, env, svc, user.ID, course.ID)
	approved := false
	_, err := svc.Decide(context.Background(), true, paymentID, &request.AdminDecisionRequest{Approved: &approved})
	require.NoError(t, err)

	// A failed attempt leaves the user free to try again.
	decision, err := access.Evaluate(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, decision.HasAccess)
	assert.Equal(t, response.AccessReasonPaymentRequired, decision.Reason)
}

func TestAccessIsPerUser(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	access := env.accessService()
	course := env.seedCourse(499)
	payer := env.seedUser(entity.RoleStudent)
	other := env.seedUser(entity.RoleStudent)

	completePayment(t, env, svc, payer.ID, course.ID)

	decision, err := access.Evaluate(context.Background(), other.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, decision.HasAccess)
	assert.Equal(t, response.AccessReasonPaymentRequired, decision.Reason)
}
