package wire

import (
	"learnx/internal/adaptor"
	"learnx/internal/data/repository"
	"learnx/pkg/middleware"
	"learnx/pkg/utils"

	"github.com/go-chi/chi/v5"
	libredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	config *utils.Config,
	rdb *libredis.Client,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Route("/api/payments", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RateLimit(config.RateLimit, rdb, log))

		// POST /api/payments - Start a deferred payment
		r.Post("/", paymentHandler.Create)

		// POST /api/payments/verify - Submit bank reference for verification
		r.Post("/verify", paymentHandler.SelfReport)

		// POST /api/payments/wallet/order - Create an instant wallet order
		r.Post("/wallet/order", paymentHandler.CreateWalletOrder)

		// POST /api/payments/wallet/verify - Confirm a wallet payment
		r.Post("/wallet/verify", paymentHandler.InstantVerify)

		// GET /api/payments/status/{transactionId} - Payment status
		r.Get("/status/{transactionId}", paymentHandler.GetStatus)

		// GET /api/payments/history - Own payment history
		r.Get("/history", paymentHandler.GetHistory)

		// GET /api/payments/receipt/{transactionId} - PDF receipt
		r.Get("/receipt/{transactionId}", paymentHandler.Receipt)

		// GET /api/payments/access/{courseId} - Course access decision
		r.Get("/access/{courseId}", paymentHandler.CheckAccess)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/payments", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(repo.User, log))

		// GET /api/admin/payments - All payments, optional ?status= filter
		r.Get("/", paymentHandler.ListAll)

		// GET /api/admin/payments/export - XLSX export
		r.Get("/export", paymentHandler.Export)

		// PUT /api/admin/payments/{id}/verify - Approve or reject
		r.Put("/{id}/verify", paymentHandler.Decide)
	})
}
