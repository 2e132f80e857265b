package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"financeflow/internal/export"
	"financeflow/internal/models"
	"financeflow/internal/repository"
	"financeflow/internal/session"
	"financeflow/internal/state"
	"financeflow/internal/stats"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=http_handlers.go -destination=mock_finance_service_test.go -package=handlers FinanceService

type FinanceService interface {
	Snapshot() state.Snapshot
	SetTheme(theme state.Theme) state.Snapshot
	FetchTransactions(ctx context.Context) (state.Snapshot, error)
	FetchWallets(ctx context.Context) (state.Snapshot, error)
	FetchCategories(ctx context.Context) (state.Snapshot, error)

	AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	AddWallet(ctx context.Context, w *models.Wallet) (*models.Wallet, error)
	UpdateWallet(ctx context.Context, userID, id string, patch models.WalletPatch) error
	DeleteWallet(ctx context.Context, userID, id string) error
	RecomputeWalletBalance(ctx context.Context, userID, walletID string) (decimal.Decimal, error)

	AddCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, id string, patch models.CategoryPatch) error
	DeleteCategory(ctx context.Context, userID, id string) error

	Profile(ctx context.Context, userID string) (models.Profile, bool, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error
}

// Sessions is the part of the identity provider the API drives.
type Sessions interface {
	Current() (*session.Session, bool)
	SignIn(s session.Session)
	SignOut()
}

const userKey = "user_id"

type FinanceHTTPHandler struct {
	service  FinanceService
	sessions Sessions
	exporter *export.Exporter
	logger   *slog.Logger
}

func NewFinanceHTTPHandler(service FinanceService, sessions Sessions, logger *slog.Logger) *FinanceHTTPHandler {
	return &FinanceHTTPHandler{
		service:  service,
		sessions: sessions,
		exporter: export.NewExporter(logger),
		logger:   logger,
	}
}

// CORS admits the webview origins.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}

func (h *FinanceHTTPHandler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/session", h.HandleSignIn)
		v1.DELETE("/session", h.HandleSignOut)
		v1.GET("/state", h.HandleState)
		v1.PUT("/theme", h.HandleSetTheme)
	}

	authed := v1.Group("", h.requireUser)
	{
		authed.GET("/transactions", h.HandleListTransactions)
		authed.POST("/transactions", h.HandleAddTransaction)
		authed.PATCH("/transactions/:id", h.HandleUpdateTransaction)
		authed.DELETE("/transactions/:id", h.HandleDeleteTransaction)

		authed.GET("/wallets", h.HandleListWallets)
		authed.POST("/wallets", h.HandleAddWallet)
		authed.PATCH("/wallets/:id", h.HandleUpdateWallet)
		authed.DELETE("/wallets/:id", h.HandleDeleteWallet)
		authed.POST("/wallets/:id/recompute", h.HandleRecomputeBalance)

		authed.GET("/categories", h.HandleListCategories)
		authed.POST("/categories", h.HandleAddCategory)
		authed.PATCH("/categories/:id", h.HandleUpdateCategory)
		authed.DELETE("/categories/:id", h.HandleDeleteCategory)

		authed.GET("/profile", h.HandleGetProfile)
		authed.PUT("/profile", h.HandleUpdateProfile)

		authed.GET("/stats", h.HandleStats)
		authed.GET("/export", h.HandleExport)
	}
}

func (h *FinanceHTTPHandler) requireUser(c *gin.Context) {
	s, _ := h.sessions.Current()
	if s == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.Set(userKey, s.UserID)
	c.Next()
}

// writeError maps the store's error taxonomy onto statuses. Anything unclassified is a storage fault.
func writeError(c *gin.Context, err error) {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, repository.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// currentOwner reports whether snap belongs to the signed-in user. Until the session watcher has
// moved the cache over, the cache still holds the previous user's data and the request is refused.
func currentOwner(c *gin.Context, snap state.Snapshot) bool {
	if snap.UserID != nil && *snap.UserID == c.GetString(userKey) {
		return true
	}
	c.Header("Retry-After", "1")
	c.JSON(http.StatusConflict, gin.H{"error": "session is still switching, retry shortly"})
	return false
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return false
	}
	return true
}

func (h *FinanceHTTPHandler) HandleSignIn(c *gin.Context) {
	var req models.SessionRequest
	if !bindJSON(c, &req) {
		return
	}
	h.sessions.SignIn(session.Session{UserID: req.UserID, Email: req.Email})
	c.JSON(http.StatusAccepted, gin.H{"user_id": req.UserID})
}

func (h *FinanceHTTPHandler) HandleSignOut(c *gin.Context) {
	h.sessions.SignOut()
	c.Status(http.StatusNoContent)
}

// HandleState serves the snapshot. Collections are withheld while the cache belongs to anyone
// other than the signed-in user.
func (h *FinanceHTTPHandler) HandleState(c *gin.Context) {
	snap := h.service.Snapshot()
	s, _ := h.sessions.Current()
	if s == nil || snap.UserID == nil || *snap.UserID != s.UserID {
		snap.Transactions, snap.Wallets, snap.Categories = nil, nil, nil
	}
	c.JSON(http.StatusOK, snap)
}

func (h *FinanceHTTPHandler) HandleSetTheme(c *gin.Context) {
	var req models.ThemeRequest
	if !bindJSON(c, &req) {
		return
	}
	snap := h.service.SetTheme(state.Theme(req.Theme))
	c.JSON(http.StatusOK, gin.H{"theme": snap.Theme})
}

func (h *FinanceHTTPHandler) HandleListTransactions(c *gin.Context) {
	snap, err := h.service.FetchTransactions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if !currentOwner(c, snap) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": snap.Transactions})
}

func (h *FinanceHTTPHandler) HandleAddTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	tx, err := h.service.AddTransaction(c.Request.Context(), req.ToTransaction(c.GetString(userKey)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *FinanceHTTPHandler) HandleUpdateTransaction(c *gin.Context) {
	var req models.UpdateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.UpdateTransaction(c.Request.Context(), c.GetString(userKey), c.Param("id"), req.ToPatch()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHTTPHandler) HandleDeleteTransaction(c *gin.Context) {
	if err := h.service.DeleteTransaction(c.Request.Context(), c.GetString(userKey), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHTTPHandler) HandleListWallets(c *gin.Context) {
	snap, err := h.service.FetchWallets(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if !currentOwner(c, snap) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": snap.Wallets})
}

func (h *FinanceHTTPHandler) HandleAddWallet(c *gin.Context) {
	var req models.CreateWalletRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.service.AddWallet(c.Request.Context(), req.ToWallet(c.GetString(userKey)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *FinanceHTTPHandler) HandleUpdateWallet(c *gin.Context) {
	var req models.UpdateWalletRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.UpdateWallet(c.Request.Context(), c.GetString(userKey), c.Param("id"), req.ToPatch()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHTTPHandler) HandleDeleteWallet(c *gin.Context) {
	if err := h.service.DeleteWallet(c.Request.Context(), c.GetString(userKey), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHTTPHandler) HandleRecomputeBalance(c *gin.Context) {
	balance, err := h.service.RecomputeWalletBalance(c.Request.Context(), c.GetString(userKey), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance.String()})
}

func (h *FinanceHTTPHandler) HandleListCategories(c *gin.Context) {
	snap, err := h.service.FetchCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if !currentOwner(c, snap) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": snap.Categories})
}

func (h *FinanceHTTPHandler) HandleAddCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.service.AddCategory(c.Request.Context(), req.ToCategory(c.GetString(userKey)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *FinanceHTTPHandler) HandleUpdateCategory(c *gin.Context) {
	var req models.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.UpdateCategory(c.Request.Context(), c.GetString(userKey), c.Param("id"), req.ToPatch()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHTTPHandler) HandleDeleteCategory(c *gin.Context) {
	if err := h.service.DeleteCategory(c.Request.Context(), c.GetString(userKey), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHTTPHandler) HandleGetProfile(c *gin.Context) {
	p, ok, err := h.service.Profile(c.Request.Context(), c.GetString(userKey))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *FinanceHTTPHandler) HandleUpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.UpdateProfile(c.Request.Context(), c.GetString(userKey), req.ToPatch()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHTTPHandler) HandleStats(c *gin.Context) {
	view := stats.View(c.DefaultQuery("view", string(stats.ViewExpenses)))
	if !view.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be expenses or income"})
		return
	}
	snap := h.service.Snapshot()
	if !currentOwner(c, snap) {
		return
	}
	balances := stats.Balances(snap.Wallets, snap.Transactions)
	c.JSON(http.StatusOK, gin.H{
		"summary":    stats.Summarize(snap.Transactions),
		"categories": stats.ByCategory(snap.Transactions, snap.Categories, view),
		"balances":   balances,
	})
}

func (h *FinanceHTTPHandler) HandleExport(c *gin.Context) {
	snap := h.service.Snapshot()
	if !currentOwner(c, snap) {
		return
	}
	b, err := h.exporter.Workbook(snap.Transactions, snap.Wallets, snap.Categories)
	if err != nil {
		h.logger.Error("Failed to export transactions", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}
