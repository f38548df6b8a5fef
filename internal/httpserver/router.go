package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/gateway/payment"
	"storefront/internal/metrics"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	usersvc "storefront/internal/service/user"
)

type userService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Verify(ctx context.Context, token string) error
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ResendVerification(ctx context.Context, email string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type tokenParser interface {
	Parse(token string) (*usersvc.Claims, error)
}

type catalogService interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, in catalogsvc.ListInput) (domain.ProductPage, error)
	Create(ctx context.Context, in catalogsvc.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in catalogsvc.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, id string, r io.Reader, filename string) (*domain.Product, error)
	UploadFile(ctx context.Context, r io.Reader, filename string) (string, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, in cartsvc.AddItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type orderService interface {
	PlaceOrder(ctx context.Context, userID, paymentRef string) (*domain.Order, error)
	CreatePaymentIntent(ctx context.Context, userID string) (*payment.Intent, error)
	Advance(ctx context.Context, orderID string, target domain.OrderStatus) (*domain.Order, error)
	Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error)
	Track(ctx context.Context, userID, orderID string) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
}

type wishlistService interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
}

// Deps carries the services the router dispatches to. Metrics and
// CORSOrigins are optional.
type Deps struct {
	Users       userService
	Tokens      tokenParser
	Catalog     catalogService
	Carts       cartService
	Orders      orderService
	Wishlist    wishlistService
	Metrics     *metrics.HTTPMetrics
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.Users == nil:
		return errors.New("httpserver: user service required")
	case d.Tokens == nil:
		return errors.New("httpserver: token parser required")
	case d.Catalog == nil:
		return errors.New("httpserver: catalog service required")
	case d.Carts == nil:
		return errors.New("httpserver: cart service required")
	case d.Orders == nil:
		return errors.New("httpserver: order service required")
	case d.Wishlist == nil:
		return errors.New("httpserver: wishlist service required")
	}
	return nil
}

type api struct {
	deps   Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	h := &api{deps: deps, logger: logger}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	authed := authMiddleware(deps.Tokens, logger)
	admin := requireRole(domain.RoleAdmin)

	users := router.Group("/users")
	users.POST("/register", h.register)
	users.POST("/login", h.login)
	users.GET("/verify", h.verify)
	users.POST("/request-password-reset", h.requestPasswordReset)
	users.POST("/reset-password", h.resetPassword)
	users.POST("/resend-verification", h.resendVerification)
	users.GET("/me", authed, h.me)

	router.GET("/products", h.listProducts)
	router.GET("/products/filter", h.listProducts)
	router.GET("/products/paginated", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)
	router.POST("/products", authed, admin, h.createProduct)
	router.PUT("/products/:id", authed, admin, h.updateProduct)
	router.DELETE("/products/:id", authed, admin, h.deleteProduct)
	router.POST("/products/:id/image", authed, admin, h.uploadProductImage)
	router.POST("/files/upload", authed, admin, h.uploadFile)

	cart := router.Group("/cart", authed)
	cart.GET("", h.getCart)
	cart.POST("/add", h.addToCart)
	cart.DELETE("", h.clearCart)
	cart.DELETE("/items/:productId", h.removeFromCart)
	cart.POST("/checkout", h.createPaymentIntent)

	router.POST("/payments/create-order", authed, h.createPaymentIntent)

	orders := router.Group("/orders", authed)
	orders.POST("/place", h.placeOrder)
	orders.GET("", h.listOrders)
	orders.GET("/:id/track", h.trackOrder)
	orders.PUT("/:id/cancel", h.cancelOrder)
	orders.PUT("/:id/confirm", admin, h.confirmOrder)
	orders.PUT("/:id/status", admin, h.advanceOrder)

	wishlist := router.Group("/wishlist", authed)
	wishlist.GET("", h.listWishlist)
	wishlist.POST("/add", h.addToWishlist)
	wishlist.DELETE("/remove/:productId", h.removeFromWishlist)

	return router, nil
}
