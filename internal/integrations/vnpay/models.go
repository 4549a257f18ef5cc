package vnpay

import "time"

const (
	version     = "2.1.0"
	command     = "pay"
	currency    = "VND"
	orderType   = "other"
	dateLayout  = "20060102150405"
	zoneName    = "Asia/Ho_Chi_Minh"
	amountScale = 100
)

// Параметры протокола VNPay
const (
	ParamVersion           = "vnp_Version"
	ParamCommand           = "vnp_Command"
	ParamTmnCode           = "vnp_TmnCode"
	ParamAmount            = "vnp_Amount"
	ParamCurrCode          = "vnp_CurrCode"
	ParamBankCode          = "vnp_BankCode"
	ParamTxnRef            = "vnp_TxnRef"
	ParamOrderInfo         = "vnp_OrderInfo"
	ParamOrderType         = "vnp_OrderType"
	ParamLocale            = "vnp_Locale"
	ParamReturnURL         = "vnp_ReturnUrl"
	ParamIPAddr            = "vnp_IpAddr"
	ParamCreateDate        = "vnp_CreateDate"
	ParamExpireDate        = "vnp_ExpireDate"
	ParamResponseCode      = "vnp_ResponseCode"
	ParamTransactionNo     = "vnp_TransactionNo"
	ParamTransactionStatus = "vnp_TransactionStatus"
	ParamPayDate           = "vnp_PayDate"
	ParamSecureHash        = "vnp_SecureHash"
	ParamSecureHashType    = "vnp_SecureHashType"
)

// Config настройки терминала VNPay
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	Locale     string
	BankCode   string
	Expire     time.Duration
}
