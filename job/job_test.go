package job

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/accounts"
	"github.com/meridianbank/provisiond/errors"
	"github.com/meridianbank/provisiond/internal/util"
	"github.com/meridianbank/provisiond/quota"
	"github.com/meridianbank/provisiond/runner"
)

type fakeGate struct {
	enabled bool

	mu    sync.Mutex
	asked []string
}

func (f *fakeGate) IsEnabled(ctx context.Context, jobName, region string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, jobName)
	return f.enabled
}

type fakeCalc struct {
	deficits map[string]int         // keyed by source, no existing accounts
	quotas   map[string]quota.Quota // keyed by source, overrides deficits
	err      error
	calls    int32
}

func (f *fakeCalc) Compute(ctx context.Context, accountType, customerType, region, source string) (quota.Quota, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return quota.Quota{}, f.err
	}
	if f.quotas != nil {
		return f.quotas[source], nil
	}
	d := f.deficits[source]
	return quota.Quota{Target: d, Deficit: d}, nil
}

type fakeProvisioner struct {
	failEvery int // every Nth call fails; 0 = never

	mu       sync.Mutex
	calls    int
	requests []accounts.Request
}

func (f *fakeProvisioner) CreateAccount(ctx context.Context, req accounts.Request) (accounts.EntityRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, req)
	if f.failEvery > 0 && f.calls%f.failEvery == 0 {
		return accounts.EntityRef{}, errors.Newf("backend rejected call %d", f.calls)
	}
	return accounts.EntityRef{
		AccountNumber: fmt.Sprintf("9%09d", f.calls),
		ProductCode:   "PER",
	}, nil
}

type fakeRecords struct {
	err error

	mu       sync.Mutex
	inserted []string
}

func (f *fakeRecords) Insert(ctx context.Context, ref accounts.EntityRef, customerType, region, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, ref.AccountNumber)
	return nil
}

func testDeps(gate *fakeGate, calc *fakeCalc, prov *fakeProvisioner, records *fakeRecords) Deps {
	return Deps{
		Gate:        gate,
		Calculator:  calc,
		Pool:        runner.NewPool(runner.PoolConfig{Workers: 2}, zap.NewNop().Sugar()),
		Provisioner: prov,
		Records:     records,
		Picker:      accounts.NewPicker(1),
		Logger:      zap.NewNop().Sugar(),
	}
}

func TestExecuteDisabledSkipsWithoutSideEffects(t *testing.T) {
	gate := &fakeGate{enabled: false}
	prov := &fakeProvisioner{}
	records := &fakeRecords{}
	j := NewJob("dda_mining_p", "dda", "P", accounts.SourceMining,
		testDeps(gate, &fakeCalc{deficits: map[string]int{accounts.SourceMining: 5}}, prov, records))

	summary, err := j.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, summary.Status)
	assert.Equal(t, 0, summary.Requested)
	assert.Equal(t, StateSkipped, j.State())
	assert.Zero(t, prov.calls)
	assert.Empty(t, records.inserted)
}

func TestExecuteZeroDeficitCompletesEmpty(t *testing.T) {
	gate := &fakeGate{enabled: true}
	prov := &fakeProvisioner{}
	j := NewJob("dda_mining_p", "dda", "P", accounts.SourceMining,
		testDeps(gate, &fakeCalc{deficits: map[string]int{}}, prov, &fakeRecords{}))

	summary, err := j.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 0, summary.Requested)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, StateCompleted, j.State())
	assert.Zero(t, prov.calls)
}

func TestExecuteProvisionsDeficit(t *testing.T) {
	gate := &fakeGate{enabled: true}
	prov := &fakeProvisioner{}
	records := &fakeRecords{}
	j := NewJob("dda_mining_p", "dda", "P", accounts.SourceMining,
		testDeps(gate, &fakeCalc{deficits: map[string]int{accounts.SourceMining: 3}}, prov, records))

	summary, err := j.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.Requested)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, records.inserted, 3)

	for _, req := range prov.requests {
		assert.Equal(t, "dda", req.AccountType)
		assert.Equal(t, "P", req.CustomerType)
		assert.Equal(t, "SIT1", req.Region)
		assert.Equal(t, accounts.SourceMining, req.Source)
		assert.Empty(t, req.ProductHint, "mining requests carry no product hint")
	}
}

func TestExecuteSDGRequestsCarryProductHint(t *testing.T) {
	gate := &fakeGate{enabled: true}
	prov := &fakeProvisioner{}
	j := NewJob("dda_sdg_p", "dda", "P", accounts.SourceSDG,
		testDeps(gate, &fakeCalc{deficits: map[string]int{accounts.SourceSDG: 2}}, prov, &fakeRecords{}))

	_, err := j.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	for _, req := range prov.requests {
		assert.NotEmpty(t, req.ProductHint)
	}
}

func TestExecuteCountOverrideBypassesCalculator(t *testing.T) {
	gate := &fakeGate{enabled: true}
	calc := &fakeCalc{err: errors.New("calculator must not be called")}
	prov := &fakeProvisioner{}
	j := NewJob("custom_dda_p_mining", "dda", "P", accounts.SourceMining,
		testDeps(gate, calc, prov, &fakeRecords{}))

	summary, err := j.Execute(context.Background(), "SIT1", util.Ptr(4))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Requested)
	assert.Zero(t, atomic.LoadInt32(&calc.calls))
}

func TestExecuteCalculatorErrorPropagates(t *testing.T) {
	gate := &fakeGate{enabled: true}
	prov := &fakeProvisioner{}
	j := NewJob("dda_mining_p", "dda", "P", accounts.SourceMining,
		testDeps(gate, &fakeCalc{err: quota.ErrNoTarget}, prov, &fakeRecords{}))

	_, err := j.Execute(context.Background(), "SIT1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, quota.ErrNoTarget))
	assert.Zero(t, prov.calls)
}

func TestExecutePartialFailuresStayInSummary(t *testing.T) {
	gate := &fakeGate{enabled: true}
	prov := &fakeProvisioner{failEvery: 2}
	j := NewJob("dda_mining_p", "dda", "P", accounts.SourceMining,
		testDeps(gate, &fakeCalc{deficits: map[string]int{accounts.SourceMining: 6}}, prov, &fakeRecords{}))

	summary, err := j.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err, "per-unit failures never escape Execute")

	assert.Equal(t, 6, summary.Requested)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, summary.Requested, summary.Succeeded+summary.Failed)
	assert.Len(t, summary.Outcomes, 6)
}

func TestExecuteRecordFailureCountsAsFailed(t *testing.T) {
	gate := &fakeGate{enabled: true}
	prov := &fakeProvisioner{}
	records := &fakeRecords{err: errors.New("disk full")}
	j := NewJob("dda_mining_p", "dda", "P", accounts.SourceMining,
		testDeps(gate, &fakeCalc{deficits: map[string]int{accounts.SourceMining: 2}}, prov, records))

	summary, err := j.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Requested)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 2, prov.calls, "accounts were created upstream before the record failure")
}

func TestBlendedDisabledSkips(t *testing.T) {
	gate := &fakeGate{enabled: false}
	prov := &fakeProvisioner{}
	b := NewBlendedJob("dda_threshold_p", "dda", "P", 50,
		testDeps(gate, &fakeCalc{deficits: map[string]int{}}, prov, &fakeRecords{}))

	summary, err := b.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, summary.Status)
	assert.Zero(t, prov.calls)
	assert.Equal(t, []string{"dda_threshold_p"}, gate.asked,
		"admission is decided once, under the blended name")
}

func TestBlendedSplitsAcrossSources(t *testing.T) {
	gate := &fakeGate{enabled: true}
	calc := &fakeCalc{deficits: map[string]int{
		accounts.SourceMining: 12,
		accounts.SourceSDG:    8,
	}}
	prov := &fakeProvisioner{}
	b := NewBlendedJob("dda_threshold_p", "dda", "P", 50,
		testDeps(gate, calc, prov, &fakeRecords{}))

	summary, err := b.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	// Combined deficit 20 split 50/50
	assert.Equal(t, 20, summary.Requested)
	assert.Equal(t, 20, summary.Succeeded)
	assert.Equal(t, summary.Requested, summary.Succeeded+summary.Failed)

	var mining, sdg int
	for _, req := range prov.requests {
		switch req.Source {
		case accounts.SourceMining:
			mining++
		case accounts.SourceSDG:
			sdg++
		}
	}
	assert.Equal(t, 10, mining)
	assert.Equal(t, 10, sdg)
}

func TestBlendedSurplusOffsetsOtherSource(t *testing.T) {
	gate := &fakeGate{enabled: true}
	calc := &fakeCalc{quotas: map[string]quota.Quota{
		accounts.SourceMining: {Existing: 60, Target: 50, Deficit: 0},
		accounts.SourceSDG:    {Existing: 20, Target: 50, Deficit: 30},
	}}
	prov := &fakeProvisioner{}
	b := NewBlendedJob("dda_threshold_p", "dda", "P", 50,
		testDeps(gate, calc, prov, &fakeRecords{}))

	summary, err := b.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	// Blended pool: targets 100 against 80 existing, the Mining surplus
	// shrinks the combined deficit to 20
	assert.Equal(t, 20, summary.Requested)
	assert.Equal(t, 20, summary.Succeeded)
}

func TestBlendedSurplusCoversWholePool(t *testing.T) {
	gate := &fakeGate{enabled: true}
	calc := &fakeCalc{quotas: map[string]quota.Quota{
		accounts.SourceMining: {Existing: 90, Target: 50, Deficit: 0},
		accounts.SourceSDG:    {Existing: 30, Target: 50, Deficit: 20},
	}}
	prov := &fakeProvisioner{}
	b := NewBlendedJob("dda_threshold_p", "dda", "P", 50,
		testDeps(gate, calc, prov, &fakeRecords{}))

	summary, err := b.Execute(context.Background(), "SIT1", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Zero(t, summary.Requested)
	assert.Empty(t, prov.requests)
}

func TestBlendedOverrideSplitConservation(t *testing.T) {
	gate := &fakeGate{enabled: true}
	calc := &fakeCalc{err: errors.New("calculator must not be called")}
	prov := &fakeProvisioner{}
	b := NewBlendedJob("custom_dda_p", "dda", "P", 30,
		testDeps(gate, calc, prov, &fakeRecords{}))

	summary, err := b.Execute(context.Background(), "SIT1", util.Ptr(7))
	require.NoError(t, err)

	assert.Equal(t, 7, summary.Requested)
	assert.Zero(t, atomic.LoadInt32(&calc.calls))

	var mining, sdg int
	for _, req := range prov.requests {
		switch req.Source {
		case accounts.SourceMining:
			mining++
		case accounts.SourceSDG:
			sdg++
		}
	}
	assert.Equal(t, 2, mining) // floor(7*30/100)
	assert.Equal(t, 5, sdg)
	assert.Equal(t, 7, mining+sdg)
}

func TestBlendedMissingTargetPropagates(t *testing.T) {
	gate := &fakeGate{enabled: true}
	prov := &fakeProvisioner{}
	b := NewBlendedJob("cca_threshold_b", "cca", "B", 50,
		testDeps(gate, &fakeCalc{err: quota.ErrNoTarget}, prov, &fakeRecords{}))

	_, err := b.Execute(context.Background(), "SIT1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, quota.ErrNoTarget))
	assert.Zero(t, prov.calls)
}
