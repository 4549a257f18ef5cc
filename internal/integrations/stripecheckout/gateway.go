package stripecheckout

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	// QueryToken и QuerySession добавляются к success URL сессии
	QueryToken   = "token"
	QuerySession = "session_id"

	sessionPlaceholder = "{CHECKOUT_SESSION_ID}"
	metadataToken      = "intent_token"

	// MinSessionLifetime Stripe не принимает expires_at раньше чем через 30 минут после создания
	MinSessionLifetime = 31 * time.Minute

	failedCode = "24"
)

// Config настройки Stripe Checkout
type Config struct {
	SecretKey string
	Currency  string
	CancelURL string
}

// Gateway создаёт Checkout Sessions и сверяет их при возврате покупателя
type Gateway struct {
	api      *client.API
	currency string
	cancel   string
	now      func() time.Time
}

// NewGateway создает шлюз; backends == nil означает боевой API Stripe
func NewGateway(cfg Config, backends *stripe.Backends) *Gateway {
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyVND)
	}
	return &Gateway{
		api:      client.New(cfg.SecretKey, backends),
		currency: currency,
		cancel:   cfg.CancelURL,
		now:      time.Now,
	}
}

// Method идентификатор шлюза
func (g *Gateway) Method() domain.PaymentMethod {
	return domain.MethodStripe
}

// Recognizes сообщает, пришёл ли возврат из Stripe Checkout
func (g *Gateway) Recognizes(query url.Values) bool {
	return query.Get(QuerySession) != ""
}

// CreateRedirect создаёт Checkout Session и возвращает её URL
func (g *Gateway) CreateRedirect(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	successURL, err := returnURL(req.ReturnURL, req.Token)
	if err != nil {
		return "", err
	}
	cancelURL := g.cancel
	if cancelURL == "" {
		cancelURL = successURL
	}

	expiresAt := req.ExpiresAt
	if floor := g.now().Add(MinSessionLifetime); expiresAt.Before(floor) {
		expiresAt = floor
	}

	name := req.Description
	if name == "" {
		name = "Appointment " + req.Token
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(req.Token),
		ExpiresAt:         stripe.Int64(expiresAt.Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataToken, req.Token)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create session: %v", ErrUnavailable, err)
	}
	return session.URL, nil
}

// ParseConfirmation загружает сессию, указанную в параметрах возврата, и переводит её
// статус оплаты в код подтверждения
func (g *Gateway) ParseConfirmation(ctx context.Context, query url.Values) (*domain.PaymentConfirmation, error) {
	token := query.Get(QueryToken)
	sessionID := query.Get(QuerySession)
	if token == "" || sessionID == "" || sessionID == sessionPlaceholder {
		return nil, fmt.Errorf("%w: token and session_id are required", ErrMalformed)
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: get session %s: %v", ErrUnavailable, sessionID, err)
	}
	if session.ClientReferenceID != token {
		return nil, fmt.Errorf("%w: session %s", ErrSessionMismatch, sessionID)
	}

	conf := &domain.PaymentConfirmation{
		Token:         token,
		TransactionID: session.ID,
		StatusCode:    failedCode,
		Amount:        session.AmountTotal,
		PayDate:       g.now(),
	}
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		conf.TransactionID = session.PaymentIntent.ID
	}
	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		conf.StatusCode = domain.SuccessCode
	}
	conf.TransactionStatus = string(session.PaymentStatus)
	if conf.StatusCode == domain.SuccessCode {
		conf.TransactionStatus = ""
	}
	return conf, nil
}

func returnURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return "", fmt.Errorf("%w: return url %q", ErrMalformed, base)
	}
	q := u.Query()
	q.Set(QueryToken, token)
	u.RawQuery = q.Encode()
	// плейсхолдер должен остаться неэкранированным, Stripe подставляет его сам
	return u.String() + "&" + QuerySession + "=" + sessionPlaceholder, nil
}
