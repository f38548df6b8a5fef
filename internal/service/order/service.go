package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/gateway/mail"
	"storefront/internal/gateway/payment"
	orderrepo "storefront/internal/repository/order"
)

type orderRepo interface {
	CreateFromCart(ctx context.Context, userID string, build orderrepo.BuildFunc) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, apply func(*domain.Order) error) (*domain.Order, error)
}

type cartReader interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
}

type userReader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type publisher interface {
	Publish(ctx context.Context, evt events.OrderEvent) error
}

// Options tunes checkout. Zero values select the defaults.
type Options struct {
	Currency string
	// NotifyTimeout bounds the email and event calls made after commit.
	NotifyTimeout time.Duration
}

// Service drives checkout and the order status lifecycle.
type Service struct {
	orders        orderRepo
	carts         cartReader
	users         userReader
	payments      payment.Gateway
	mailer        mailer
	publisher     publisher
	currency      string
	notifyTimeout time.Duration
	logger        *log.Logger
}

func New(orders orderRepo, carts cartReader, users userReader, payments payment.Gateway, m mailer, pub publisher, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if pub == nil {
		pub = events.Noop{}
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	return &Service{
		orders:        orders,
		carts:         carts,
		users:         users,
		payments:      payments,
		mailer:        m,
		publisher:     pub,
		currency:      strings.ToUpper(opts.Currency),
		notifyTimeout: opts.NotifyTimeout,
		logger:        logger,
	}
}

// PlaceOrder converts the user's cart into a Pending order paid by paymentRef.
// The cart is cleared in the same transaction that inserts the order; on any
// failure neither happens.
func (s *Service) PlaceOrder(ctx context.Context, userID, paymentRef string) (*domain.Order, error) {
	ref := strings.TrimSpace(paymentRef)
	if ref == "" {
		return nil, fmt.Errorf("%w: paymentRef required", domain.ErrInvalidArgument)
	}
	u, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.nonEmptyCart(ctx, userID); err != nil {
		return nil, err
	}

	paid, err := s.confirmPayment(ctx, ref)
	if err != nil {
		s.logger.Printf("order service: payment user_id=%s ref=%s error=%v", userID, ref, err)
		return nil, err
	}

	o, err := s.orders.CreateFromCart(ctx, userID, func(c *domain.Cart) (*domain.Order, error) {
		o, err := domain.NewOrderFromCart(c, ref, s.currency)
		if err != nil {
			return nil, err
		}
		if err := covers(paid, o); err != nil {
			return nil, err
		}
		return o, nil
	})
	if err != nil {
		s.logger.Printf("order service: place user_id=%s ref=%s error=%v", userID, ref, err)
		return nil, err
	}
	s.logger.Printf("order service: placed order_id=%s user_id=%s total=%s %s", o.ID, userID, o.TotalAmount.StringFixed(2), o.Currency)

	msg := mail.OrderPlacedMessage(*o)
	s.afterCommit(ctx, *o, u.Email, &msg, events.OrderCreated)
	return o, nil
}

// CreatePaymentIntent asks the gateway for a payable order covering the
// current cart total.
func (s *Service) CreatePaymentIntent(ctx context.Context, userID string) (*payment.Intent, error) {
	c, err := s.nonEmptyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Recalculate()
	intent, err := s.payments.CreateIntent(ctx, c.Total, s.currency)
	if err != nil {
		s.logger.Printf("order service: intent user_id=%s error=%v", userID, err)
		return nil, err
	}
	s.logger.Printf("order service: intent user_id=%s intent_id=%s amount=%s", userID, intent.IntentID, intent.Amount.StringFixed(2))
	return intent, nil
}

// Advance moves any order to target. Confirming an order emails its owner.
func (s *Service) Advance(ctx context.Context, orderID string, target domain.OrderStatus) (*domain.Order, error) {
	if err := domain.CheckID("order", orderID); err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateStatus(ctx, orderID, func(o *domain.Order) error {
		return o.TransitionTo(target)
	})
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, *o)
	return o, nil
}

// Cancel cancels one of the user's own Pending orders. Orders of other users
// are reported as missing.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if err := domain.CheckID("order", orderID); err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateStatus(ctx, orderID, func(o *domain.Order) error {
		if o.UserID != userID {
			return fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
		}
		return o.TransitionTo(domain.OrderCancelled)
	})
	if err != nil {
		return nil, err
	}
	s.statusChanged(ctx, *o)
	return o, nil
}

func (s *Service) Track(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if err := domain.CheckID("order", orderID); err != nil {
		return nil, err
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) activeUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, fmt.Errorf("%w: email not verified", domain.ErrForbidden)
	}
	return u, nil
}

func (s *Service) nonEmptyCart(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	return c, nil
}

// confirmPayment requires the reference to be captured, checking a second
// time before giving up.
func (s *Service) confirmPayment(ctx context.Context, ref string) (*payment.Payment, error) {
	var last *payment.Payment
	for attempt := 0; attempt < 2; attempt++ {
		p, err := s.payments.FetchPayment(ctx, ref)
		if err != nil {
			return nil, err
		}
		if p.Captured() {
			return p, nil
		}
		last = p
	}
	return nil, fmt.Errorf("%w: payment %s is %s", domain.ErrPaymentNotConfirmed, ref, last.Status)
}

func covers(p *payment.Payment, o *domain.Order) error {
	if p.Currency != "" && !strings.EqualFold(p.Currency, o.Currency) {
		return fmt.Errorf("%w: paid in %s, order in %s", domain.ErrPaymentNotConfirmed, p.Currency, o.Currency)
	}
	if p.Amount.LessThan(o.TotalAmount.Round(2)) {
		return fmt.Errorf("%w: paid %s, total %s", domain.ErrPaymentNotConfirmed, p.Amount.StringFixed(2), o.TotalAmount.StringFixed(2))
	}
	return nil
}

func (s *Service) statusChanged(ctx context.Context, o domain.Order) {
	s.logger.Printf("order service: status order_id=%s status=%s", o.ID, o.Status)
	if o.Status != domain.OrderConfirmed {
		s.afterCommit(ctx, o, "", nil, events.OrderStatusChanged)
		return
	}
	to := ""
	if u, err := s.users.GetByID(ctx, o.UserID); err != nil {
		s.logger.Printf("order service: lookup owner order_id=%s error=%v", o.ID, err)
	} else {
		to = u.Email
	}
	msg := mail.OrderConfirmedMessage(o)
	s.afterCommit(ctx, o, to, &msg, events.OrderStatusChanged)
}

// afterCommit sends the notification and event for a committed change. The
// request context may already be cancelled, so both run under their own
// deadline. Failures are logged only.
func (s *Service) afterCommit(ctx context.Context, o domain.Order, to string, msg *mail.Message, eventType string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if msg != nil && to != "" && s.mailer != nil {
		if err := s.mailer.Send(ctx, to, msg.Subject, msg.Body); err != nil {
			s.logger.Printf("order service: notify order_id=%s subject=%q error=%v", o.ID, msg.Subject, err)
		}
	}
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, o)); err != nil {
		s.logger.Printf("order service: publish order_id=%s type=%s error=%v", o.ID, eventType, err)
	}
}
