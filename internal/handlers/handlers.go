//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/taskmart/docs"
	accounthandlers "github.com/GlebRadaev/taskmart/internal/handlers/account"
	adminhandlers "github.com/GlebRadaev/taskmart/internal/handlers/admin"
	ordershandlers "github.com/GlebRadaev/taskmart/internal/handlers/orders"
	taskshandlers "github.com/GlebRadaev/taskmart/internal/handlers/tasks"
	withdrawalshandlers "github.com/GlebRadaev/taskmart/internal/handlers/withdrawals"
	"github.com/GlebRadaev/taskmart/internal/service"
	"github.com/GlebRadaev/taskmart/pkg/auth"
)

type TaskHandler interface {
	CreateTask(w http.ResponseWriter, r *http.Request)
	ListTasks(w http.ResponseWriter, r *http.Request)
	GetTask(w http.ResponseWriter, r *http.Request)
	ChangeStatus(w http.ResponseWriter, r *http.Request)
	Claim(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	GetOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	GetSteps(w http.ResponseWriter, r *http.Request)
	SubmitStep(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	GetAccount(w http.ResponseWriter, r *http.Request)
	GetRecords(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	Withdraw(w http.ResponseWriter, r *http.Request)
	GetWithdrawals(w http.ResponseWriter, r *http.Request)
	GetWithdrawal(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	ListWithdrawals(w http.ResponseWriter, r *http.Request)
	ReviewWithdrawal(w http.ResponseWriter, r *http.Request)
	BatchReview(w http.ResponseWriter, r *http.Request)
	ConfirmPayment(w http.ResponseWriter, r *http.Request)
	OpenAccount(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
	Recharge(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	TaskHandler       TaskHandler
	OrderHandler      OrderHandler
	AccountHandler    AccountHandler
	WithdrawalHandler WithdrawalHandler
	AdminHandler      AdminHandler

	jwtService  auth.JWTServiceInterface
	corsOrigins []string
}

func New(s *service.Services, jwtService auth.JWTServiceInterface, corsOrigins []string) *Handlers {
	return &Handlers{
		TaskHandler:       taskshandlers.New(s.TaskService),
		OrderHandler:      ordershandlers.New(s.OrderService),
		AccountHandler:    accounthandlers.New(s.LedgerService),
		WithdrawalHandler: withdrawalshandlers.New(s.WithdrawalService),
		AdminHandler:      adminhandlers.New(s.LedgerService, s.WithdrawalService),
		jwtService:        jwtService,
		corsOrigins:       corsOrigins,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.New(cors.Options{
			AllowedOrigins: h.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		}).Handler,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	buyer := auth.RequireRole(auth.RoleBuyer)
	merchant := auth.RequireRole(auth.RoleMerchant)
	owner := auth.RequireRole(auth.RoleBuyer, auth.RoleMerchant)
	reviewer := auth.RequireRole(auth.RoleMerchant, auth.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(h.jwtService))

		r.Route("/tasks", func(r chi.Router) {
			r.With(merchant).Post("/", h.TaskHandler.CreateTask)
			r.With(merchant).Get("/", h.TaskHandler.ListTasks)
			r.Get("/{id}", h.TaskHandler.GetTask)
			r.With(merchant).Post("/{id}/status", h.TaskHandler.ChangeStatus)
			r.With(buyer).Post("/{id}/claim", h.TaskHandler.Claim)
		})
		r.Route("/orders", func(r chi.Router) {
			r.With(buyer).Get("/", h.OrderHandler.GetOrders)
			r.Get("/{id}", h.OrderHandler.GetOrder)
			r.Get("/{id}/steps", h.OrderHandler.GetSteps)
			r.With(buyer).Post("/{id}/steps", h.OrderHandler.SubmitStep)
			r.With(buyer).Post("/{id}/cancel", h.OrderHandler.Cancel)
			r.With(reviewer).Post("/{id}/review", h.OrderHandler.Review)
		})
		r.Route("/account", func(r chi.Router) {
			r.Use(owner)
			r.Get("/", h.AccountHandler.GetAccount)
			r.Get("/records", h.AccountHandler.GetRecords)
		})
		r.Route("/withdrawals", func(r chi.Router) {
			r.With(owner).Post("/", h.WithdrawalHandler.Withdraw)
			r.With(owner).Get("/", h.WithdrawalHandler.GetWithdrawals)
			r.Get("/{id}", h.WithdrawalHandler.GetWithdrawal)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Route("/withdrawals", func(r chi.Router) {
				r.Get("/", h.AdminHandler.ListWithdrawals)
				r.Post("/batch-review", h.AdminHandler.BatchReview)
				r.Post("/{id}/review", h.AdminHandler.ReviewWithdrawal)
				r.Post("/{id}/confirm", h.AdminHandler.ConfirmPayment)
			})
			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", h.AdminHandler.OpenAccount)
				r.Post("/{kind}/{id}/adjust", h.AdminHandler.Adjust)
				r.Post("/{kind}/{id}/recharge", h.AdminHandler.Recharge)
				r.Get("/{kind}/{id}/reconcile", h.AdminHandler.Reconcile)
			})
		})
	})

	return r
}
