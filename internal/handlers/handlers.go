package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeline/storeline-golang/internal/auth"
	"github.com/storeline/storeline-golang/internal/checkout"
	"github.com/storeline/storeline-golang/internal/models"
	"github.com/storeline/storeline-golang/internal/notifier"
)

// OrderPlacer is the checkout entry point. Satisfied by
// *checkout.Coordinator; narrowed here so handler tests can stub it.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, user auth.Identity, items []checkout.RequestedItem, address models.Address) (*models.Order, []models.OrderItem, error)
}

// OrderReader is the order read path. Satisfied by *checkout.Queries.
type OrderReader interface {
	List(ctx context.Context, userID int64, page, limit int) (*checkout.OrderPage, error)
	Get(ctx context.Context, userID int64, orderID string) (*checkout.OrderDetail, error)
}

// Handlers holds all dependencies for the HTTP handlers.
type Handlers struct {
	DB          *sql.DB
	Checkout    OrderPlacer
	Orders      OrderReader
	Notifier    notifier.Notifier
	Logger      *slog.Logger
	TokenSecret []byte
}

func New(db *sql.DB, co OrderPlacer, orders OrderReader, n notifier.Notifier, logger *slog.Logger, tokenSecret []byte) *Handlers {
	return &Handlers{
		DB:          db,
		Checkout:    co,
		Orders:      orders,
		Notifier:    n,
		Logger:      logger,
		TokenSecret: tokenSecret,
	}
}

// writeError maps a checkout error kind onto an HTTP response. Unclassified
// errors are infrastructure failures: logged, surfaced as a bare 500.
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch checkout.KindOf(err) {
	case checkout.KindValidation, checkout.KindProductNotFound, checkout.KindInsufficientStock:
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case checkout.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case checkout.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		h.Logger.Error("request failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	}
}
