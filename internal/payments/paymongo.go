// Package payments is the client for the PayMongo-style payment gateway.
// Amounts are in centavos. The gateway is an external collaborator: a failed
// call surfaces to the caller, who must re-invoke checkout.
package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.paymongo.com/v1"

var ErrGateway = errors.New("payment gateway error")

// Intent is the slice of a payment intent this service cares about.
type Intent struct {
	ID          string `json:"payment_intent_id"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"status"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, method, description, redirectURL string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	log       *zap.Logger
}

func NewClient(baseURL, secretKey string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

// providerName maps our payment method names onto the gateway's identifiers.
func providerName(method string) string {
	switch method {
	case "gcash":
		return "gcash"
	case "grabpay":
		return "grab_pay"
	case "maya":
		return "paymaya"
	default:
		return method
	}
}

func (c *Client) authHeader() string {
	credentials := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	return "Basic " + credentials
}

type intentEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status      string `json:"status"`
			CheckoutURL string `json:"checkout_url"`
		} `json:"attributes"`
	} `json:"data"`
}

func (c *Client) CreateIntent(ctx context.Context, amount int64, method, description, redirectURL string) (*Intent, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": map[string]interface{}{
				"amount":                 amount,
				"currency":               "PHP",
				"description":            description,
				"statement_descriptor":   "DaingGrader",
				"payment_method_allowed": []string{providerName(method)},
				"redirect": map[string]string{
					"success":   redirectURL,
					"failed":    redirectURL,
					"cancelled": redirectURL,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("payment intent request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.log.Warn("payment intent rejected", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var envelope intentEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if envelope.Data.Attributes.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: no checkout url returned", ErrGateway)
	}

	return &Intent{
		ID:          envelope.Data.ID,
		CheckoutURL: envelope.Data.Attributes.CheckoutURL,
		Status:      envelope.Data.Attributes.Status,
	}, nil
}

func (c *Client) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payment_intents/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var envelope intentEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return &Intent{
		ID:          envelope.Data.ID,
		CheckoutURL: envelope.Data.Attributes.CheckoutURL,
		Status:      envelope.Data.Attributes.Status,
	}, nil
}
