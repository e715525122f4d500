package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOKTEnvelope(t *testing.T) {
	resp := OKT("created", map[string]string{"id": "abc"})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"success","message":"created","data":{"id":"abc"}}`, string(raw))
}

func TestErrorTEnvelope(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("amount", "must be positive")
	errs.Add("amount", "must have at most two decimals")
	require.False(t, errs.Empty())

	resp := ErrorT("validation failed", errs)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"error","message":"validation failed","errors":{"amount":["must be positive","must have at most two decimals"]}}`, string(raw))
}

func TestErrorTWithoutDetail(t *testing.T) {
	raw, err := json.Marshal(ErrorT("not found", nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"error","message":"not found"}`, string(raw))
}
