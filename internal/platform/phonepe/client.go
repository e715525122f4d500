package phonepe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/kisancoop/dairyops/pkg/config"
)

const requestTimeout = 10 * time.Second

// GatewayError carries the HTTP status and body of a failed gateway call.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("phonepe: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// Client talks to the PhonePe standard-checkout v2 API. OAuth tokens are
// cached until shortly before expiry.
type Client struct {
	cfg  cfgpkg.PhonePeConfig
	http *http.Client
	l    *zap.SugaredLogger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(l *zap.SugaredLogger, cfg *cfgpkg.Config) *Client {
	return &Client{
		cfg:  cfg.PhonePe,
		http: &http.Client{Timeout: requestTimeout},
		l:    l,
	}
}

type PayRequest struct {
	MerchantOrderID string
	AmountMinor     int64
	RedirectURL     string
	UDF             map[string]string
}

type PayResponse struct {
	OrderID     string `json:"orderId"`
	State       string `json:"state"`
	RedirectURL string `json:"redirectUrl"`
	ExpireAt    int64  `json:"expireAt"`
}

// Pay creates a checkout order and returns the hosted checkout URL.
// Idempotent per merchant order id on the gateway side.
func (c *Client) Pay(ctx context.Context, req PayRequest) (*PayResponse, error) {
	metaInfo := map[string]any{}
	for k, v := range req.UDF {
		metaInfo[k] = v
	}
	body := map[string]any{
		"merchantOrderId": req.MerchantOrderID,
		"amount":          req.AmountMinor,
		"metaInfo":        metaInfo,
		"paymentFlow": map[string]any{
			"type": "PG_CHECKOUT",
			"merchantUrls": map[string]any{
				"redirectUrl": req.RedirectURL,
			},
		},
	}

	var out PayResponse
	if err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/checkout/v2/pay", body, &out); err != nil {
		return nil, err
	}
	if out.RedirectURL == "" {
		return nil, &GatewayError{StatusCode: http.StatusBadGateway, Code: "NO_CHECKOUT_URL", Message: "gateway returned no checkout url"}
	}
	return &out, nil
}

type OrderStatusResponse struct {
	OrderID   string `json:"orderId"`
	State     string `json:"state"`
	Amount    int64  `json:"amount"`
	ExpireAt  int64  `json:"expireAt"`
	ErrorCode string `json:"errorCode"`
}

func (c *Client) OrderStatus(ctx context.Context, merchantOrderID string) (*OrderStatusResponse, error) {
	endpoint := fmt.Sprintf("%s/checkout/v2/order/%s/status", c.cfg.BaseURL, url.PathEscape(merchantOrderID))
	var out OrderStatusResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RefundRequest struct {
	MerchantRefundID        string
	OriginalMerchantOrderID string
	AmountMinor             int64
}

type RefundResponse struct {
	RefundID string `json:"refundId"`
	State    string `json:"state"`
	Amount   int64  `json:"amount"`
}

func (c *Client) Refund(ctx context.Context, req RefundRequest) (*RefundResponse, error) {
	body := map[string]any{
		"merchantRefundId":        req.MerchantRefundID,
		"originalMerchantOrderId": req.OriginalMerchantOrderID,
		"amount":                  req.AmountMinor,
	}
	var out RefundResponse
	if err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/payments/v2/refund", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RefundStatusResponse struct {
	MerchantRefundID        string `json:"merchantRefundId"`
	OriginalMerchantOrderID string `json:"originalMerchantOrderId"`
	RefundID                string `json:"refundId"`
	State                   string `json:"state"`
	Amount                  int64  `json:"amount"`
}

func (c *Client) RefundStatus(ctx context.Context, merchantRefundID string) (*RefundStatusResponse, error) {
	endpoint := fmt.Sprintf("%s/payments/v2/refund/%s/status", c.cfg.BaseURL, url.PathEscape(merchantRefundID))
	var out RefundStatusResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "O-Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &GatewayError{StatusCode: http.StatusBadGateway, Code: "NETWORK", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{StatusCode: http.StatusBadGateway, Code: "READ", Message: err.Error()}
	}

	if resp.StatusCode >= 400 {
		var ge struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &ge)
		c.l.Errorw("phonepe request failed", "endpoint", endpoint, "status", resp.StatusCode, "code", ge.Code)
		return &GatewayError{StatusCode: resp.StatusCode, Code: ge.Code, Message: ge.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &GatewayError{StatusCode: http.StatusBadGateway, Code: "PARSE", Message: err.Error()}
		}
	}
	return nil
}

// authToken returns a valid OAuth token, refreshing when less than a
// minute of validity remains.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("client_version", fmt.Sprintf("%d", c.cfg.ClientVersion))
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthBaseURL+"/v1/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &GatewayError{StatusCode: http.StatusBadGateway, Code: "AUTH_NETWORK", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &GatewayError{StatusCode: resp.StatusCode, Code: "AUTH", Message: "token request rejected"}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &GatewayError{StatusCode: http.StatusBadGateway, Code: "AUTH_PARSE", Message: err.Error()}
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Unix(tok.ExpiresAt, 0)
	return c.accessToken, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
