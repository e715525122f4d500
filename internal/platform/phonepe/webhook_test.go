package phonepe

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func digestFor(username, password string) string {
	sum := sha256.Sum256([]byte(username + ":" + password))
	return hex.EncodeToString(sum[:])
}

func TestValidateCallbackAuth_AcceptsValidDigest(t *testing.T) {
	require.NoError(t, ValidateCallbackAuth(digestFor("merchant", "secret"), "merchant", "secret"))
}

func TestValidateCallbackAuth_AcceptsSHA256Prefix(t *testing.T) {
	header := "SHA256 " + digestFor("merchant", "secret")
	require.NoError(t, ValidateCallbackAuth(header, "merchant", "secret"))
}

func TestValidateCallbackAuth_AcceptsUppercaseDigest(t *testing.T) {
	header := digestFor("merchant", "secret")
	require.NoError(t, ValidateCallbackAuth(header, "merchant", "secret"))
}

func TestValidateCallbackAuth_MissingHeader(t *testing.T) {
	require.ErrorIs(t, ValidateCallbackAuth("", "merchant", "secret"), ErrMissingAuthorization)
	require.ErrorIs(t, ValidateCallbackAuth("   ", "merchant", "secret"), ErrMissingAuthorization)
}

func TestValidateCallbackAuth_WrongCredentials(t *testing.T) {
	header := digestFor("merchant", "wrong")
	require.ErrorIs(t, ValidateCallbackAuth(header, "merchant", "secret"), ErrInvalidAuthorization)
}

func TestParseCallback_EmptyBody(t *testing.T) {
	_, err := ParseCallback(nil)
	require.ErrorIs(t, err, ErrEmptyBody)

	_, err = ParseCallback([]byte("  \n "))
	require.ErrorIs(t, err, ErrEmptyBody)
}

func TestParseCallback_InvalidJSON(t *testing.T) {
	_, err := ParseCallback([]byte("{not json"))
	require.ErrorIs(t, err, ErrInvalidBody)
}

func TestParseCallback_MissingOrderID(t *testing.T) {
	_, err := ParseCallback([]byte(`{"payload":{"state":"COMPLETED"}}`))
	require.ErrorIs(t, err, ErrInvalidBody)
}

func TestParseCallback_Valid(t *testing.T) {
	cb, err := ParseCallback([]byte(`{
		"event": "checkout.order.completed",
		"payload": {
			"merchantOrderId": "ORD_GEN_NA_1700000000000_abcd1234",
			"state": "COMPLETED",
			"amount": 10000
		}
	}`))
	require.NoError(t, err)
	require.Equal(t, "ORD_GEN_NA_1700000000000_abcd1234", cb.Payload.MerchantOrderID)
	require.Equal(t, int64(10000), cb.Payload.Amount)
	require.True(t, IsSuccessState(cb.Payload.State))
}

func TestIsSuccessState(t *testing.T) {
	require.True(t, IsSuccessState("COMPLETED"))
	require.True(t, IsSuccessState("SUCCESS"))
	require.False(t, IsSuccessState("FAILED"))
	require.False(t, IsSuccessState("PENDING"))
	require.False(t, IsSuccessState("completed"))
}

func TestPaymentMethodDescriptor_UPI(t *testing.T) {
	cb := &Callback{Payload: CallbackPayload{
		PaymentDetails: []CallbackPaymentDetail{{
			SplitInstruments: []CallbackSplitInstrument{{
				Rail: &CallbackRail{Type: "UPI", UTR: "UTR123", VPA: "farmer@upi"},
			}},
		}},
	}}
	desc := cb.PaymentMethodDescriptor()
	rail, ok := desc["rail"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "UPI", rail["type"])
	require.Equal(t, "UTR123", rail["utr"])
	require.Equal(t, "farmer@upi", rail["vpa"])
}

func TestPaymentMethodDescriptor_AccountInstrument(t *testing.T) {
	cb := &Callback{Payload: CallbackPayload{
		PaymentDetails: []CallbackPaymentDetail{{
			SplitInstruments: []CallbackSplitInstrument{{
				Rail:       &CallbackRail{Type: "PG", TransactionID: "PG1"},
				Instrument: &CallbackInstrument{Type: "ACCOUNT", IFSC: "HDFC0000001", MaskedAccountNumber: "XXXX1234"},
			}},
		}},
	}}
	desc := cb.PaymentMethodDescriptor()
	inst, ok := desc["instrument"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ACCOUNT", inst["type"])
	require.Equal(t, "HDFC0000001", inst["ifsc"])
}

func TestPaymentMethodDescriptor_NoDetails(t *testing.T) {
	cb := &Callback{}
	require.Empty(t, cb.PaymentMethodDescriptor())
}
