package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPickProductTypeFromCatalog(t *testing.T) {
	picker := NewPicker(42)

	for i := 0; i < 20; i++ {
		pick := picker.PickProductType("dda", CustomerPersonal)
		assert.Contains(t, []string{"DDA1", "DDA2", "DDA5"}, pick)
	}
}

func TestPickProductTypeDeterministicBySeed(t *testing.T) {
	a := NewPicker(7)
	b := NewPicker(7)

	for i := 0; i < 10; i++ {
		assert.Equal(t,
			a.PickProductType("cca", CustomerPersonal),
			b.PickProductType("cca", CustomerPersonal))
	}
}

func TestPickProductTypeUnknownCombination(t *testing.T) {
	picker := NewPicker(1)

	assert.Empty(t, picker.PickProductType("dca", CustomerPersonal))
	assert.Empty(t, picker.PickProductType("dda", "X"))
}

func TestSyntheticProvisionerCreatesUniqueAccounts(t *testing.T) {
	prov := NewSyntheticProvisioner(1, 0, zap.NewNop().Sugar())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref, err := prov.CreateAccount(ctx, Request{AccountType: "dda", CustomerType: "P", Region: "SIT1", Source: SourceMining})
		require.NoError(t, err)
		assert.Equal(t, "PER", ref.ProductCode)
		assert.Len(t, ref.AccountNumber, 10)
		assert.False(t, seen[ref.AccountNumber], "account numbers must be unique")
		seen[ref.AccountNumber] = true
	}
}

func TestSyntheticProvisionerRejectsInvalidCombination(t *testing.T) {
	prov := NewSyntheticProvisioner(1, 0, zap.NewNop().Sugar())

	_, err := prov.CreateAccount(context.Background(), Request{AccountType: "loan", CustomerType: "P"})
	require.Error(t, err)
}

func TestSyntheticProvisionerFailureInjection(t *testing.T) {
	prov := NewSyntheticProvisioner(1, 1.0, zap.NewNop().Sugar())

	_, err := prov.CreateAccount(context.Background(), Request{AccountType: "dda", CustomerType: "P", Region: "SIT1", Source: SourceMining})
	require.Error(t, err)
}

func TestSyntheticProvisionerHonorsContext(t *testing.T) {
	prov := NewSyntheticProvisioner(1, 0, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prov.CreateAccount(ctx, Request{AccountType: "dda", CustomerType: "P", Region: "SIT1", Source: SourceMining})
	assert.ErrorIs(t, err, context.Canceled)
}
