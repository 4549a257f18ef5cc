package vnpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Gateway подписывает redirect-ссылки VNPay и проверяет возвращаемые подтверждения
type Gateway struct {
	cfg Config
	loc *time.Location
	now func() time.Time
}

// NewGateway создает новый экземпляр шлюза
func NewGateway(cfg Config) *Gateway {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	if cfg.Expire <= 0 {
		cfg.Expire = 15 * time.Minute
	}
	return &Gateway{cfg: cfg, loc: loc, now: time.Now}
}

// Method идентификатор шлюза
func (g *Gateway) Method() domain.PaymentMethod {
	return domain.MethodVNPay
}

// Recognizes сообщает, пришёл ли возврат от VNPay
func (g *Gateway) Recognizes(query url.Values) bool {
	return query.Get(ParamTxnRef) != ""
}

// CreateRedirect формирует подписанную ссылку на оплату
func (g *Gateway) CreateRedirect(_ context.Context, req domain.CheckoutRequest) (string, error) {
	id, err := uuid.Parse(req.Token)
	if err != nil {
		return "", fmt.Errorf("%w: token: %v", ErrInvalidRequest, err)
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	created := g.now().In(g.loc)
	expire := created.Add(g.cfg.Expire)
	if !req.ExpiresAt.IsZero() && req.ExpiresAt.Before(expire) {
		expire = req.ExpiresAt.In(g.loc)
	}

	params := url.Values{}
	params.Set(ParamVersion, version)
	params.Set(ParamCommand, command)
	params.Set(ParamTmnCode, g.cfg.TmnCode)
	params.Set(ParamAmount, strconv.FormatInt(req.Amount*amountScale, 10))
	params.Set(ParamCurrCode, currency)
	params.Set(ParamTxnRef, txnRef(id))
	params.Set(ParamOrderInfo, orderInfo(req))
	params.Set(ParamOrderType, orderType)
	params.Set(ParamLocale, g.cfg.Locale)
	params.Set(ParamReturnURL, req.ReturnURL)
	params.Set(ParamCreateDate, created.Format(dateLayout))
	params.Set(ParamExpireDate, expire.Format(dateLayout))
	if g.cfg.BankCode != "" {
		params.Set(ParamBankCode, g.cfg.BankCode)
	}
	if req.ClientIP != "" {
		params.Set(ParamIPAddr, req.ClientIP)
	}

	signed := canonical(params)
	return g.cfg.PayURL + "?" + signed + "&" + ParamSecureHash + "=" + g.sign(signed), nil
}

// ParseConfirmation проверяет подпись и извлекает результат оплаты из параметров возврата
func (g *Gateway) ParseConfirmation(_ context.Context, query url.Values) (*domain.PaymentConfirmation, error) {
	hash := query.Get(ParamSecureHash)
	if hash == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidSignature, ParamSecureHash)
	}

	fields := url.Values{}
	for k, v := range query {
		if strings.HasPrefix(k, "vnp_") && k != ParamSecureHash && k != ParamSecureHashType {
			fields[k] = v
		}
	}
	expected := g.sign(canonical(fields))
	if !hmac.Equal([]byte(strings.ToLower(hash)), []byte(expected)) {
		return nil, ErrInvalidSignature
	}

	id, err := uuid.Parse(query.Get(ParamTxnRef))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, ParamTxnRef, err)
	}

	code := query.Get(ParamResponseCode)
	if code == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, ParamResponseCode)
	}

	conf := &domain.PaymentConfirmation{
		Token:             id.String(),
		TransactionID:     query.Get(ParamTransactionNo),
		StatusCode:        code,
		TransactionStatus: query.Get(ParamTransactionStatus),
		OrderInfo:         query.Get(ParamOrderInfo),
	}

	if raw := query.Get(ParamAmount); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || amount%amountScale != 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrMalformed, ParamAmount, raw)
		}
		conf.Amount = amount / amountScale
	}

	if raw := query.Get(ParamPayDate); raw != "" {
		payDate, err := time.ParseInLocation(dateLayout, raw, g.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrMalformed, ParamPayDate, raw)
		}
		conf.PayDate = payDate
	}

	return conf, nil
}

func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonical кодирует непустые параметры в порядке возрастания ключей
func canonical(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if len(v) > 0 && v[0] != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params.Get(k)))
	}
	return sb.String()
}

// txnRef VNPay принимает только буквенно-цифровой vnp_TxnRef
func txnRef(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

func orderInfo(req domain.CheckoutRequest) string {
	if req.Description != "" {
		return req.Description
	}
	return "Thanh toan lich hen " + req.Token
}
