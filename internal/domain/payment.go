package domain

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	PaymentMethodAlipay     PaymentMethod = "alipay"
	PaymentMethodWechat     PaymentMethod = "wechat"
	PaymentMethodCreditCard PaymentMethod = "creditcard"
	PaymentMethodApplePay   PaymentMethod = "applepay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodAlipay, PaymentMethodWechat, PaymentMethodCreditCard, PaymentMethodApplePay:
		return true
	}
	return false
}

type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// PaymentAttempt is the observable state of the payment store.
type PaymentAttempt struct {
	Method     PaymentMethod  `json:"method,omitempty"`
	Processing bool           `json:"processing"`
	Result     *PaymentResult `json:"result,omitempty"`
}

type ChargeRequest struct {
	OrderID string
	Amount  decimal.Decimal
	Method  PaymentMethod
}
