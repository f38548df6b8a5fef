package httpserver

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	"storefront/internal/gateway/payment"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	usersvc "storefront/internal/service/user"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubUserService struct {
	user      *domain.User
	token     string
	err       error
	lastID    string
	lastToken string
	lastLogin string
}

func (s *stubUserService) Register(_ context.Context, in usersvc.RegisterInput) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: "u-new", Username: in.Username, Email: in.Email, Role: domain.RoleUser, Status: domain.UserPending}, nil
}

func (s *stubUserService) Verify(_ context.Context, token string) error {
	s.lastToken = token
	return s.err
}

func (s *stubUserService) Login(_ context.Context, login, _ string) (string, *domain.User, error) {
	s.lastLogin = login
	return s.token, s.user, s.err
}

func (s *stubUserService) RequestPasswordReset(context.Context, string) error { return s.err }

func (s *stubUserService) ResetPassword(_ context.Context, token, _ string) error {
	s.lastToken = token
	return s.err
}

func (s *stubUserService) ResendVerification(context.Context, string) error { return s.err }

func (s *stubUserService) Me(_ context.Context, userID string) (*domain.User, error) {
	s.lastID = userID
	return s.user, s.err
}

type stubCatalogService struct {
	product    *domain.Product
	page       domain.ProductPage
	err        error
	lastList   catalogsvc.ListInput
	lastInput  catalogsvc.ProductInput
	lastUpload string
	uploadBody string
}

func (s *stubCatalogService) Get(context.Context, string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubCatalogService) List(_ context.Context, in catalogsvc.ListInput) (domain.ProductPage, error) {
	s.lastList = in
	if s.err != nil {
		return domain.ProductPage{}, s.err
	}
	if _, err := domain.ParseSortKey(in.SortBy); err != nil {
		return domain.ProductPage{}, err
	}
	return s.page, nil
}

func (s *stubCatalogService) Create(_ context.Context, in catalogsvc.ProductInput) (*domain.Product, error) {
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: "p-new", Name: in.Name, Price: in.Price}, nil
}

func (s *stubCatalogService) Update(_ context.Context, id string, in catalogsvc.ProductInput) (*domain.Product, error) {
	s.lastInput = in
	return &domain.Product{ID: id, Name: in.Name, Price: in.Price}, s.err
}

func (s *stubCatalogService) Delete(context.Context, string) error { return s.err }

func (s *stubCatalogService) UploadImage(_ context.Context, id string, r io.Reader, filename string) (*domain.Product, error) {
	url, err := s.UploadFile(context.Background(), r, filename)
	if err != nil {
		return nil, err
	}
	return &domain.Product{ID: id, ImageURL: url}, nil
}

func (s *stubCatalogService) UploadFile(_ context.Context, r io.Reader, filename string) (string, error) {
	b, _ := io.ReadAll(r)
	s.lastUpload = filename
	s.uploadBody = string(b)
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/" + filename, nil
}

func (s *stubCatalogService) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{Name: "Books", ProductCount: 2}}, s.err
}

type stubCartService struct {
	lastUserID string
	lastAdd    cartsvc.AddItemInput
	err        error
}

func (s *stubCartService) Get(_ context.Context, userID string) (*domain.Cart, error) {
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Cart{UserID: userID, Lines: []domain.CartLine{}}, nil
}

func (s *stubCartService) AddItem(_ context.Context, userID string, in cartsvc.AddItemInput) (*domain.Cart, error) {
	s.lastUserID = userID
	s.lastAdd = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Cart{UserID: userID}, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, userID, _ string) (*domain.Cart, error) {
	s.lastUserID = userID
	return &domain.Cart{UserID: userID}, s.err
}

func (s *stubCartService) Clear(_ context.Context, userID string) error {
	s.lastUserID = userID
	return s.err
}

type stubOrderService struct {
	order      *domain.Order
	err        error
	lastRef    string
	lastTarget domain.OrderStatus
}

func (s *stubOrderService) PlaceOrder(_ context.Context, _, paymentRef string) (*domain.Order, error) {
	s.lastRef = paymentRef
	return s.order, s.err
}

func (s *stubOrderService) CreatePaymentIntent(context.Context, string) (*payment.Intent, error) {
	return &payment.Intent{IntentID: "order_1"}, s.err
}

func (s *stubOrderService) Advance(_ context.Context, _ string, target domain.OrderStatus) (*domain.Order, error) {
	s.lastTarget = target
	return s.order, s.err
}

func (s *stubOrderService) Cancel(context.Context, string, string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Track(context.Context, string, string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{}, s.err
}

type stubWishlistService struct {
	err error
}

func (s *stubWishlistService) Add(context.Context, string, string) error    { return s.err }
func (s *stubWishlistService) Remove(context.Context, string, string) error { return s.err }
func (s *stubWishlistService) List(context.Context, string) ([]domain.WishlistItem, error) {
	return []domain.WishlistItem{}, s.err
}

type testEnv struct {
	router   *gin.Engine
	tokens   *usersvc.TokenManager
	users    *stubUserService
	catalog  *stubCatalogService
	carts    *stubCartService
	orders   *stubOrderService
	wishlist *stubWishlistService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		tokens:   usersvc.NewTokenManager("test-secret", time.Minute),
		users:    &stubUserService{},
		catalog:  &stubCatalogService{},
		carts:    &stubCartService{},
		orders:   &stubOrderService{},
		wishlist: &stubWishlistService{},
	}
	router, err := buildRouter(logDiscard(), nil, Deps{
		Users:    env.users,
		Tokens:   env.tokens,
		Catalog:  env.catalog,
		Carts:    env.carts,
		Orders:   env.orders,
		Wishlist: env.wishlist,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	env.router = router
	return env
}

func (e *testEnv) bearer(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	token, _, err := e.tokens.Issue(domain.User{ID: id, Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}
