package repository

import (
	"context"
	"errors"
	"fmt"

	"learnx/internal/data/entity"
	"learnx/internal/errs"
	"learnx/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// PaymentRepository is the payment record store. Every state-changing
// transition is a conditional update: the WHERE clause re-checks the expected
// status so two concurrent requests cannot double-apply a transition. A
// false return from a transition method means the precondition no longer
// held, not an infrastructure failure.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string, userID uuid.UUID) (*entity.Payment, error)
	FindForSelfReport(ctx context.Context, transactionID string, userID uuid.UUID, verificationCode string) (*entity.Payment, error)
	FindByWalletOrderID(ctx context.Context, orderID string, userID uuid.UUID) (*entity.Payment, error)
	FindCompletedByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Payment, error)
	FindOpenByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Payment, error)
	CompletedExternalIDExists(ctx context.Context, externalID string, excludeID uuid.UUID) (bool, error)

	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, status *entity.PaymentStatus, limit, offset int) ([]*entity.Payment, error)
	CountAll(ctx context.Context, status *entity.PaymentStatus) (int64, error)

	// Conditional transitions
	MarkReported(ctx context.Context, id uuid.UUID, externalID string) (bool, error)
	CompleteInstant(ctx context.Context, id uuid.UUID, externalID string, details entity.PaymentDetails) (bool, error)
	Approve(ctx context.Context, id uuid.UUID) (bool, error)
	Reject(ctx context.Context, id uuid.UUID) (bool, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, user_id, course_id, amount, method, status, transaction_id,
	external_transaction_id, verification_code, verified_by_user, verified_by_admin,
	details, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CourseID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.TransactionID,
		&p.ExternalTransactionID,
		&p.VerificationCode,
		&p.VerifiedByUser,
		&p.VerifiedByAdmin,
		&p.Details,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// uniqueViolation returns the violated constraint name when err is a
// unique-constraint violation. The schema reserves these for
// transaction_id and the two partial indexes over completed records
// (external_transaction_id, and one completed record per user and course).
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		payment.CourseID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.TransactionID,
		payment.ExternalTransactionID,
		payment.VerificationCode,
		payment.VerifiedByUser,
		payment.VerifiedByAdmin,
		payment.Details,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if _, ok := uniqueViolation(err); ok {
		return errs.E(errs.Conflict, fmt.Sprintf("transaction id %s already exists", payment.TransactionID), err)
	}
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("user_id", payment.UserID.String()),
			zap.String("course_id", payment.CourseID.String()),
		)
		return fmt.Errorf("create payment for course %s: %w", payment.CourseID.String(), err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByTransactionID(ctx context.Context, transactionID string, userID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE transaction_id = $1 AND user_id = $2
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, transactionID, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by transaction ID",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return nil, fmt.Errorf("find payment by transaction ID %s: %w", transactionID, err)
	}

	return payment, nil
}

// FindForSelfReport requires the full (transactionId, userId, verificationCode)
// triple. The code is a shared secret; a wrong code is indistinguishable from
// a missing record.
func (r *paymentRepository) FindForSelfReport(ctx context.Context, transactionID string, userID uuid.UUID, verificationCode string) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE transaction_id = $1 AND user_id = $2 AND verification_code = $3
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, transactionID, userID, verificationCode))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment for self report",
			zap.Error(err),
			zap.String("transaction_id", transactionID),
		)
		return nil, fmt.Errorf("find payment for self report %s: %w", transactionID, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByWalletOrderID(ctx context.Context, orderID string, userID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE details->'wallet'->>'order_id' = $1 AND user_id = $2
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, orderID, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by wallet order ID",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return nil, fmt.Errorf("find payment by wallet order ID %s: %w", orderID, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindCompletedByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1 AND course_id = $2 AND status = $3
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, userID, courseID, entity.PaymentStatusCompleted))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find completed payment",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("course_id", courseID.String()),
		)
		return nil, fmt.Errorf("find completed payment: %w", err)
	}

	return payment, nil
}

func (r *paymentRepository) FindOpenByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1 AND course_id = $2 AND status = ANY($3)
		ORDER BY created_at DESC
		LIMIT 1
	`

	open := []entity.PaymentStatus{entity.PaymentStatusPending, entity.PaymentStatusVerificationRequired}

	payment, err := scanPayment(r.db.QueryRow(ctx, query, userID, courseID, open))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find open payment",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("course_id", courseID.String()),
		)
		return nil, fmt.Errorf("find open payment: %w", err)
	}

	return payment, nil
}

func (r *paymentRepository) CompletedExternalIDExists(ctx context.Context, externalID string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE external_transaction_id = $1 AND status = $2 AND id <> $3
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, externalID, entity.PaymentStatusCompleted, excludeID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check external transaction ID",
			zap.Error(err),
			zap.String("external_transaction_id", externalID),
		)
		return false, fmt.Errorf("check external transaction ID: %w", err)
	}

	return exists, nil
}

func (r *paymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list user payments",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list payments for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *paymentRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count user payments",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count payments for user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *paymentRepository) FindAll(ctx context.Context, status *entity.PaymentStatus, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to list payments", zap.Error(err))
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *paymentRepository) CountAll(ctx context.Context, status *entity.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE ($1::text IS NULL OR status = $1)`, status).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count payments", zap.Error(err))
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return count, nil
}

// MarkReported moves a record from verification_required to pending and
// stores the caller-supplied external transaction id. The status guard makes
// a second self-report a no-op.
func (r *paymentRepository) MarkReported(ctx context.Context, id uuid.UUID, externalID string) (bool, error) {
	query := `
		UPDATE payments
		SET external_transaction_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.Exec(ctx, query, id, externalID,
		entity.PaymentStatusPending, entity.PaymentStatusVerificationRequired)
	if err != nil {
		r.log.Error("Failed to mark payment reported",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return false, fmt.Errorf("mark payment %s reported: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// CompleteInstant moves a pending instant-method record to completed,
// setting both verification flags. The partial unique indexes over
// completed records back up the service-level checks under concurrency:
// one guards external_transaction_id reuse, the other caps (user, course)
// at a single completed record.
func (r *paymentRepository) CompleteInstant(ctx context.Context, id uuid.UUID, externalID string, details entity.PaymentDetails) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, verified_by_user = TRUE, verified_by_admin = TRUE,
		    external_transaction_id = $3, details = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.Exec(ctx, query, id,
		entity.PaymentStatusCompleted, externalID, details, entity.PaymentStatusPending)
	if name, ok := uniqueViolation(err); ok {
		if name == "uq_payments_completed_user_course" {
			return false, errs.E(errs.Conflict, "payment already completed for this course", err)
		}
		return false, errs.E(errs.Conflict, fmt.Sprintf("transaction ID %s already used", externalID), err)
	}
	if err != nil {
		r.log.Error("Failed to complete payment",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return false, fmt.Errorf("complete payment %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// Approve moves a pending record to completed with the admin flag set.
// VerifiedByUser is left as the payer reported it.
func (r *paymentRepository) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, verified_by_admin = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.Exec(ctx, query, id, entity.PaymentStatusCompleted, entity.PaymentStatusPending)
	if name, ok := uniqueViolation(err); ok {
		if name == "uq_payments_completed_user_course" {
			return false, errs.E(errs.Conflict, "payment already completed for this course", err)
		}
		return false, errs.E(errs.Conflict, "external transaction ID already claimed by a completed payment", err)
	}
	if err != nil {
		r.log.Error("Failed to approve payment",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return false, fmt.Errorf("approve payment %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// Reject moves a pending record to failed. Terminal.
func (r *paymentRepository) Reject(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.Exec(ctx, query, id, entity.PaymentStatusFailed, entity.PaymentStatusPending)
	if err != nil {
		r.log.Error("Failed to reject payment",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return false, fmt.Errorf("reject payment %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func collectPayments(rows pgx.Rows) ([]*entity.Payment, error) {
	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, nil
}
