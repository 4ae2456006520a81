package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPProvisionerCreateAccount(t *testing.T) {
	var got createAccountRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/accounts", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(createAccountResponse{
			AccountNumber: "9123456789",
			ProductCode:   got.ProductCode,
		})
	}))
	defer server.Close()

	prov := NewHTTPProvisioner(server.URL, 5*time.Second, zap.NewNop().Sugar())

	ref, err := prov.CreateAccount(context.Background(), Request{
		AccountType:  "dda",
		CustomerType: "P",
		Region:       "SIT1",
		Source:       SourceSDG,
		ProductHint:  "DDA2",
	})
	require.NoError(t, err)

	assert.Equal(t, "9123456789", ref.AccountNumber)
	assert.Equal(t, "PER", ref.ProductCode)
	assert.Equal(t, "PER", got.ProductCode)
	assert.Equal(t, "DDA2", got.ProductType)
	assert.Equal(t, "SIT1", got.Region)
	assert.Equal(t, SourceSDG, got.Source)
}

func TestHTTPProvisionerGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "product not available in region", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	prov := NewHTTPProvisioner(server.URL, 5*time.Second, zap.NewNop().Sugar())

	_, err := prov.CreateAccount(context.Background(), Request{AccountType: "dda", CustomerType: "P", Region: "SIT1", Source: SourceMining})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestHTTPProvisionerMissingAccountNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createAccountResponse{})
	}))
	defer server.Close()

	prov := NewHTTPProvisioner(server.URL, 5*time.Second, zap.NewNop().Sugar())

	_, err := prov.CreateAccount(context.Background(), Request{AccountType: "cca", CustomerType: "B", Region: "UAT1", Source: SourceMining})
	require.Error(t, err)
}

func TestHTTPProvisionerHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	prov := NewHTTPProvisioner(server.URL, 5*time.Second, zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := prov.CreateAccount(ctx, Request{AccountType: "dda", CustomerType: "P", Region: "SIT1", Source: SourceMining})
	require.Error(t, err)
}
