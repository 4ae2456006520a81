// Package accounts defines the provisioning boundary (one account created
// per call against the banking backends) and the persistence of created
// account records.
package accounts

import (
	"context"

	"github.com/meridianbank/provisiond/errors"
)

// Data sources an account can be provisioned from.
const (
	SourceMining = "Mining" // mined from existing upstream data
	SourceSDG    = "SDG"    // synthetic data generation
)

// Customer types.
const (
	CustomerPersonal = "P"
	CustomerBusiness = "B"
)

// Request identifies one account to provision.
type Request struct {
	AccountType  string // dda, cca
	CustomerType string // P, B
	Region       string
	Source       string // Mining, SDG
	ProductHint  string // optional specific product type
}

// EntityRef references one created account.
type EntityRef struct {
	AccountNumber string
	ProductCode   string
}

// Provisioner creates one account per call. Implementations wrap the
// remote banking APIs: opaque, possibly slow, possibly failing.
type Provisioner interface {
	CreateAccount(ctx context.Context, req Request) (EntityRef, error)
}

// productCodes maps (account type, customer type) to the product code used
// in reserved account records.
var productCodes = map[string]map[string]string{
	"dda": {CustomerPersonal: "PER", CustomerBusiness: "BUS"},
	"dca": {CustomerPersonal: "CD1", CustomerBusiness: "CD2"},
	"cca": {CustomerPersonal: "CC1", CustomerBusiness: "CC2"},
}

// ProductCode resolves the product code for a combination.
func ProductCode(accountType, customerType string) (string, error) {
	code, ok := productCodes[accountType][customerType]
	if !ok {
		return "", errors.Newf("invalid account type %q or customer type %q", accountType, customerType)
	}
	return code, nil
}
