package phonepe

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrMissingAuthorization = errors.New("phonepe: missing authorization header")
	ErrInvalidAuthorization = errors.New("phonepe: invalid authorization header")
	ErrEmptyBody            = errors.New("phonepe: empty webhook body")
	ErrInvalidBody          = errors.New("phonepe: invalid webhook body")
)

// ValidateCallbackAuth checks the Authorization header against the
// configured webhook credentials. The expected value is the hex SHA-256
// of "username:password"; an optional "SHA256 " prefix is tolerated.
func ValidateCallbackAuth(header, username, password string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingAuthorization
	}
	header = strings.TrimPrefix(header, "SHA256 ")

	sum := sha256.Sum256([]byte(username + ":" + password))
	expected := hex.EncodeToString(sum[:])

	if subtle.ConstantTimeCompare([]byte(strings.ToLower(header)), []byte(expected)) != 1 {
		return ErrInvalidAuthorization
	}
	return nil
}

type CallbackRail struct {
	Type                 string `json:"type"`
	UTR                  string `json:"utr,omitempty"`
	UPITransactionID     string `json:"upiTransactionId,omitempty"`
	VPA                  string `json:"vpa,omitempty"`
	TransactionID        string `json:"transactionId,omitempty"`
	AuthorizationCode    string `json:"authorizationCode,omitempty"`
	ServiceTransactionID string `json:"serviceTransactionId,omitempty"`
}

type CallbackInstrument struct {
	Type                string `json:"type"`
	BankTransactionID   string `json:"bankTransactionId,omitempty"`
	BankID              string `json:"bankId,omitempty"`
	ARN                 string `json:"arn,omitempty"`
	BRN                 string `json:"brn,omitempty"`
	IFSC                string `json:"ifsc,omitempty"`
	AccountType         string `json:"accountType,omitempty"`
	MaskedAccountNumber string `json:"maskedAccountNumber,omitempty"`
	AccountHolderName   string `json:"accountHolderName,omitempty"`
}

type CallbackSplitInstrument struct {
	Rail       *CallbackRail       `json:"rail"`
	Instrument *CallbackInstrument `json:"instrument"`
}

type CallbackPaymentDetail struct {
	SplitInstruments []CallbackSplitInstrument `json:"splitInstruments"`
}

type CallbackPayload struct {
	MerchantOrderID   string                  `json:"merchantOrderId"`
	OrderID           string                  `json:"orderId"`
	State             string                  `json:"state"`
	Amount            int64                   `json:"amount"`
	ErrorCode         string                  `json:"errorCode"`
	DetailedErrorCode string                  `json:"detailedErrorCode"`
	PaymentDetails    []CallbackPaymentDetail `json:"paymentDetails"`
}

// Callback is the parsed webhook body.
type Callback struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Payload CallbackPayload `json:"payload"`
}

func ParseCallback(raw []byte) (*Callback, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, ErrEmptyBody
	}
	var cb Callback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, ErrInvalidBody
	}
	if cb.Payload.MerchantOrderID == "" {
		return nil, ErrInvalidBody
	}
	return &cb, nil
}

// IsSuccessState reports whether the gateway state means a completed
// payment. Both spellings are observed from the gateway.
func IsSuccessState(state string) bool {
	return state == "COMPLETED" || state == "SUCCESS"
}

// PaymentMethodDescriptor flattens the first rail/instrument pair of the
// callback into the shape persisted on the transaction row.
func (cb *Callback) PaymentMethodDescriptor() map[string]any {
	out := map[string]any{}
	if len(cb.Payload.PaymentDetails) == 0 {
		return out
	}
	split := cb.Payload.PaymentDetails[0].SplitInstruments
	if len(split) == 0 {
		return out
	}
	part := split[0]

	if rail := part.Rail; rail != nil {
		switch rail.Type {
		case "UPI":
			out["rail"] = map[string]any{
				"type":               rail.Type,
				"utr":                rail.UTR,
				"upi_transaction_id": rail.UPITransactionID,
				"vpa":                rail.VPA,
			}
		case "PG":
			out["rail"] = map[string]any{
				"type":                   rail.Type,
				"transaction_id":         rail.TransactionID,
				"authorization_code":     rail.AuthorizationCode,
				"service_transaction_id": rail.ServiceTransactionID,
			}
		default:
			out["rail"] = map[string]any{"type": rail.Type}
		}
	}

	if inst := part.Instrument; inst != nil {
		pm := map[string]any{"type": inst.Type}
		switch inst.Type {
		case "NET_BANKING", "CREDIT_CARD", "DEBIT_CARD":
			pm["bank_transaction_id"] = inst.BankTransactionID
			pm["bank_id"] = inst.BankID
			pm["arn"] = inst.ARN
			pm["brn"] = inst.BRN
		case "ACCOUNT":
			pm["ifsc"] = inst.IFSC
			pm["account_type"] = inst.AccountType
			pm["masked_account_number"] = inst.MaskedAccountNumber
			pm["account_holder_name"] = inst.AccountHolderName
		}
		out["instrument"] = pm
	}
	return out
}
