package usecase

import (
	"context"
	"sort"
	"sync"

	"learnx/internal/data/entity"
	"learnx/internal/data/repository"
	"learnx/internal/errs"
	"learnx/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repositories with the same conditional-update semantics as the
// SQL ones: every transition checks the current status and reports false
// instead of applying when the record has moved on.

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*entity.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*entity.Payment)}
}

func copyPayment(p *entity.Payment) *entity.Payment {
	cp := *p
	return &cp
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[payment.ID] = copyPayment(payment)
	return nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		return copyPayment(p), nil
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindByTransactionID(_ context.Context, transactionID string, userID uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.TransactionID == transactionID && p.UserID == userID {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindForSelfReport(_ context.Context, transactionID string, userID uuid.UUID, verificationCode string) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.TransactionID == transactionID && p.UserID == userID &&
			p.VerificationCode != nil && *p.VerificationCode == verificationCode {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindByWalletOrderID(_ context.Context, orderID string, userID uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.UserID == userID && p.Details.Wallet != nil && p.Details.Wallet.OrderID == orderID {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindCompletedByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.UserID == userID && p.CourseID == courseID && p.Status == entity.PaymentStatusCompleted {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindOpenByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *entity.Payment
	for _, p := range f.payments {
		if p.UserID != userID || p.CourseID != courseID {
			continue
		}
		if p.Status != entity.PaymentStatusPending && p.Status != entity.PaymentStatusVerificationRequired {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyPayment(latest), nil
}

func (f *fakePaymentRepo) CompletedExternalIDExists(_ context.Context, externalID string, excludeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completedExternalIDExistsLocked(externalID, excludeID), nil
}

func (f *fakePaymentRepo) completedExternalIDExistsLocked(externalID string, excludeID uuid.UUID) bool {
	for _, p := range f.payments {
		if p.ID == excludeID {
			continue
		}
		if p.Status == entity.PaymentStatusCompleted &&
			p.ExternalTransactionID != nil && *p.ExternalTransactionID == externalID {
			return true
		}
	}
	return false
}

func (f *fakePaymentRepo) completedForUserCourseLocked(userID, courseID uuid.UUID, excludeID uuid.UUID) bool {
	for _, p := range f.payments {
		if p.ID == excludeID {
			continue
		}
		if p.UserID == userID && p.CourseID == courseID && p.Status == entity.PaymentStatusCompleted {
			return true
		}
	}
	return false
}

func (f *fakePaymentRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, copyPayment(p))
		}
	}
	sortNewestFirst(out)
	return paginate(out, limit, offset), nil
}

func (f *fakePaymentRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.payments {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakePaymentRepo) FindAll(_ context.Context, status *entity.PaymentStatus, limit, offset int) ([]*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.payments {
		if status == nil || p.Status == *status {
			out = append(out, copyPayment(p))
		}
	}
	sortNewestFirst(out)
	return paginate(out, limit, offset), nil
}

func (f *fakePaymentRepo) CountAll(_ context.Context, status *entity.PaymentStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.payments {
		if status == nil || p.Status == *status {
			n++
		}
	}
	return n, nil
}

func (f *fakePaymentRepo) MarkReported(_ context.Context, id uuid.UUID, externalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status != entity.PaymentStatusVerificationRequired {
		return false, nil
	}
	p.Status = entity.PaymentStatusPending
	p.ExternalTransactionID = &externalID
	return true, nil
}

func (f *fakePaymentRepo) CompleteInstant(_ context.Context, id uuid.UUID, externalID string, details entity.PaymentDetails) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status != entity.PaymentStatusPending {
		return false, nil
	}
	if f.completedExternalIDExistsLocked(externalID, id) {
		return false, errs.NewConflictError("transaction ID already used")
	}
	if f.completedForUserCourseLocked(p.UserID, p.CourseID, id) {
		return false, errs.NewConflictError("payment already completed for this course")
	}
	p.Status = entity.PaymentStatusCompleted
	p.VerifiedByUser = true
	p.VerifiedByAdmin = true
	p.ExternalTransactionID = &externalID
	p.Details = details
	return true, nil
}

func (f *fakePaymentRepo) Approve(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status != entity.PaymentStatusPending {
		return false, nil
	}
	if f.completedForUserCourseLocked(p.UserID, p.CourseID, id) {
		return false, errs.NewConflictError("payment already completed for this course")
	}
	p.Status = entity.PaymentStatusCompleted
	p.VerifiedByAdmin = true
	return true, nil
}

func (f *fakePaymentRepo) Reject(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status != entity.PaymentStatusPending {
		return false, nil
	}
	p.Status = entity.PaymentStatusFailed
	return true, nil
}

func sortNewestFirst(payments []*entity.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
}

func paginate(payments []*entity.Payment, limit, offset int) []*entity.Payment {
	if offset >= len(payments) {
		return nil
	}
	payments = payments[offset:]
	if limit < len(payments) {
		payments = payments[:limit]
	}
	return payments
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[uuid.UUID]*entity.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[uuid.UUID]*entity.Course)}
}

func (f *fakeCourseRepo) Create(_ context.Context, course *entity.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *course
	f.courses[course.ID] = &cp
	return nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCourseRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Course
	for _, c := range f.courses {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCourseRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.courses)), nil
}

func (f *fakeCourseRepo) Update(_ context.Context, course *entity.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *course
	f.courses[course.ID] = &cp
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.courses, id)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *session
	f.sessions[session.Token.String()] = &cp
	return nil
}

func (f *fakeSessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[token]; ok && s.RevokedAt == nil {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSessionRepo) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[token]; ok {
		now := s.CreatedAt
		s.RevokedAt = &now
	}
	return nil
}

type testEnv struct {
	repo     *repository.Repository
	payments *fakePaymentRepo
	courses  *fakeCourseRepo
	users    *fakeUserRepo
	config   *utils.Config
}

func newTestEnv() *testEnv {
	payments := newFakePaymentRepo()
	courses := newFakeCourseRepo()
	users := newFakeUserRepo()

	return &testEnv{
		repo: &repository.Repository{
			User:    users,
			Session: newFakeSessionRepo(),
			Course:  courses,
			Payment: payments,
		},
		payments: payments,
		courses:  courses,
		users:    users,
		config: &utils.Config{
			Session: utils.SessionConfig{ExpiryHours: 24},
			Receiver: utils.ReceiverConfig{
				AccountNumber: "1234567890",
				AccountHolder: "LearnX",
				BankName:      "Test Bank",
				UpiID:         "learnx@bank",
			},
			Gateway: utils.GatewayConfig{Currency: "INR"},
		},
	}
}

func (e *testEnv) paymentService() PaymentService {
	return NewPaymentService(e.repo, e.config, nil, nil, nil, zap.NewNop())
}

func (e *testEnv) seedCourse(price float64) *entity.Course {
	course := &entity.Course{
		Base:        entity.NewBase(),
		Title:       "Distributed Systems",
		Description: "Consensus, replication and failure",
		Instructor:  "R. Sharma",
		Category:    "Computer Science",
		Level:       entity.LevelGraduate,
		Price:       price,
		CreatedBy:   uuid.New(),
	}
	_ = e.courses.Create(context.Background(), course)
	return course
}

func (e *testEnv) seedUser(role entity.UserRole) *entity.User {
	user := &entity.User{
		Base:         entity.NewBase(),
		Name:         "Asha",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "$2a$10$fake",
		Role:         role,
		IsActive:     true,
	}
	_ = e.users.Create(context.Background(), user)
	return user
}
