// Package whatsapp delivers text messages through the WhatsApp HTTP gateway.
package whatsapp

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/segyhp/debt-tracker/internal/config"
	"github.com/segyhp/debt-tracker/pkg/utils"

	"go.uber.org/zap"
)

// TransportError means the gateway could not be reached or did not answer in time.
// These are worth retrying.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GatewayError means the gateway answered but rejected the message.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// IsRetryable reports whether a delivery failure may succeed on a later attempt.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

type sendRequest struct {
	Number  string `json:"numero"`
	Message string `json:"mensagem"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client is the send primitive for a single message.
type Client struct {
	url           string
	countryPrefix string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient builds a gateway client. Certificates are always verified; an
// extra CA bundle can be supplied for self-signed gateway deployments.
func NewClient(cfg config.WhatsAppConfig, logger *zap.Logger) (*Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read WHATSAPP_CA_FILE: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("WHATSAPP_CA_FILE contains no certificates")
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	return newClient(cfg.APIURL, cfg.CountryPrefix, &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}, logger), nil
}

func newClient(url, countryPrefix string, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:           url,
		countryPrefix: countryPrefix,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// Send posts one message to phone. A single call is a single attempt.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	number := utils.NormalizePhone(phone, c.countryPrefix)

	body, err := json.Marshal(sendRequest{Number: number, Message: message})
	if err != nil {
		return fmt.Errorf("encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("whatsapp gateway unreachable",
			zap.String("number", number),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		gatewayErr := &GatewayError{StatusCode: resp.StatusCode, Message: gatewayMessage(resp.StatusCode, payload)}
		c.logger.Warn("whatsapp gateway rejected message",
			zap.String("number", number),
			zap.Int("status", resp.StatusCode),
			zap.String("error", gatewayErr.Message))
		return gatewayErr
	}

	c.logger.Info("whatsapp message sent",
		zap.String("number", number),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

func gatewayMessage(status int, payload []byte) string {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("Status %d", status)
}
