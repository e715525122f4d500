package payment

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	merchantOrderIDMaxLen = 63
	modelTagMaxLen        = 8
	objectIDMaxLen        = 12
)

// GenerateMerchantOrderID builds ORD_<MODELTAG>_<OBJID>_<epoch_ms>_<8hex>,
// truncated to 63 chars with the prefix preserved. modelTag and objectID
// default to "GEN" / "NA" when the payment has no owning object.
func GenerateMerchantOrderID(modelTag, objectID string, now time.Time) string {
	if modelTag == "" {
		modelTag = "GEN"
	}
	if objectID == "" {
		objectID = "NA"
	}
	modelTag = sanitizeIDPart(modelTag, modelTagMaxLen)
	objectID = sanitizeIDPart(objectID, objectIDMaxLen)

	var buf [4]byte
	_, _ = rand.Read(buf[:])
	suffix := hex.EncodeToString(buf[:])

	id := fmt.Sprintf("ORD_%s_%s_%d_%s", modelTag, objectID, now.UnixMilli(), suffix)
	if len(id) > merchantOrderIDMaxLen {
		id = id[:merchantOrderIDMaxLen]
	}
	return id
}

func sanitizeIDPart(s string, maxLen int) string {
	s = strings.ToUpper(strings.NewReplacer("_", "", " ", "", "-", "").Replace(s))
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// Checksum is SHA-256 over merchant_order_id || amount || user_identifier.
func Checksum(merchantOrderID string, amount decimal.Decimal, userIdentifier string) string {
	sum := sha256.Sum256([]byte(merchantOrderID + amount.StringFixed(2) + userIdentifier))
	return hex.EncodeToString(sum[:])
}
