package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/errors"
	"github.com/meridianbank/provisiond/internal/httpclient"
)

// HTTPProvisioner creates accounts by calling the account gateway's
// creation endpoint, one POST per account.
type HTTPProvisioner struct {
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewHTTPProvisioner creates a provisioner against a gateway base URL,
// e.g. "http://accounts-gw.sit1.meridianbank.test".
func NewHTTPProvisioner(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *HTTPProvisioner {
	return &HTTPProvisioner{
		baseURL: baseURL,
		client:  httpclient.New(timeout),
		logger:  logger,
	}
}

type createAccountRequest struct {
	ProductCode  string `json:"product_code"`
	ProductType  string `json:"product_type,omitempty"`
	CustomerType string `json:"customer_type"`
	Region       string `json:"region"`
	Source       string `json:"source"`
}

type createAccountResponse struct {
	AccountNumber string `json:"account_number"`
	ProductCode   string `json:"product_code"`
	Message       string `json:"message,omitempty"`
}

// CreateAccount provisions one account through the gateway.
func (p *HTTPProvisioner) CreateAccount(ctx context.Context, req Request) (EntityRef, error) {
	code, err := ProductCode(req.AccountType, req.CustomerType)
	if err != nil {
		return EntityRef{}, err
	}

	payload, err := json.Marshal(createAccountRequest{
		ProductCode:  code,
		ProductType:  req.ProductHint,
		CustomerType: req.CustomerType,
		Region:       req.Region,
		Source:       req.Source,
	})
	if err != nil {
		return EntityRef{}, errors.Wrap(err, "failed to marshal account request")
	}

	url := fmt.Sprintf("%s/v1/accounts", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return EntityRef{}, errors.Wrap(err, "failed to build account request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return EntityRef{}, errors.Wrapf(err, "account gateway call failed for %s in %s", code, req.Region)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return EntityRef{}, errors.Wrap(err, "failed to read gateway response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return EntityRef{}, errors.Newf("account gateway returned %d for %s in %s: %s",
			resp.StatusCode, code, req.Region, string(body))
	}

	var created createAccountResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return EntityRef{}, errors.Wrap(err, "failed to decode gateway response")
	}
	if created.AccountNumber == "" {
		return EntityRef{}, errors.New("account gateway returned no account number")
	}
	if created.ProductCode == "" {
		created.ProductCode = code
	}

	p.logger.Debugw("Provisioned account via gateway",
		"account_number", created.AccountNumber,
		"product_code", created.ProductCode,
		"region", req.Region,
		"source", req.Source)

	return EntityRef{AccountNumber: created.AccountNumber, ProductCode: created.ProductCode}, nil
}
