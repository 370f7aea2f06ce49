package transaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/gateway/gatewaytest"
	"desk-wallet/internal/model"
	"desk-wallet/internal/signer"
	"desk-wallet/internal/stage"
	"desk-wallet/pkg/errno"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGenerationHash = "57F7DA205008026C776CB6AED843393F04CD458E0AA2D9F1D5F31A402072B2D6"
	testCurrency       = model.MosaicID(0x5F160D7851F3CB30)
	cosignerKey        = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	multisigKey        = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
)

func testNetwork() Network {
	return Network{
		Type:                        model.TestNet,
		GenerationHash:              testGenerationHash,
		EpochAdjustment:             1637848847,
		CurrencyMosaicID:            testCurrency,
		LockedFundsPerAggregate:     10_000_000,
		LockDuration:                1000,
		MaxTransactionsPerAggregate: 5,
		Deadline:                    2 * time.Hour,
		ConfirmationTimeout:         time.Minute,
	}
}

func mustAccount(t *testing.T, hexKey string) *signer.Account {
	t.Helper()
	key, err := crypto.HexToECDSA(hexKey)
	require.NoError(t, err)
	return signer.NewAccount(key)
}

func transfer(fee, amount uint64) *model.Transaction {
	return &model.Transaction{
		NetworkType: model.TestNet,
		Version:     model.Version,
		Deadline:    1,
		MaxFee:      fee,
		Body: &model.Transfer{
			Recipient: "7E5F4552091A69125D5DFCB7B8C2659029395BDF",
			Mosaics:   []model.Mosaic{{ID: testCurrency, Amount: amount}},
		},
	}
}

type fixture struct {
	svc      *Service
	gw       *gatewaytest.Gateway
	hub      *gatewaytest.Hub
	cosigner *signer.Account
	multisig model.PublicAccount
	sess     *stage.Session
}

func newFixture(t *testing.T, network Network, opts ...Option) *fixture {
	t.Helper()
	gw := gatewaytest.NewGateway()
	hub := gatewaytest.NewHub()
	return &fixture{
		svc:      NewService(gw, hub.Factory(), network, opts...),
		gw:       gw,
		hub:      hub,
		cosigner: mustAccount(t, cosignerKey),
		multisig: mustAccount(t, multisigKey).PublicAccount(),
		sess:     stage.NewSession(),
	}
}

// recordingSigner 记录每次被签名的交易
type recordingSigner struct {
	signer.Signer
	mu  sync.Mutex
	txs []*model.Transaction
}

func (r *recordingSigner) Sign(ctx context.Context, tx *model.Transaction, gen string) (*model.SignedTransaction, error) {
	r.mu.Lock()
	r.txs = append(r.txs, tx)
	r.mu.Unlock()
	return r.Signer.Sign(ctx, tx, gen)
}

type failingSigner struct {
	signer.Signer
	after int
	n     int
}

func (f *failingSigner) Sign(ctx context.Context, tx *model.Transaction, gen string) (*model.SignedTransaction, error) {
	f.n++
	if f.n > f.after {
		return nil, errors.New("device rejected")
	}
	return f.Signer.Sign(ctx, tx, gen)
}

type panicSink struct{}

func (panicSink) Write(diagnostic.Record) error { panic("disk full") }

type errSink struct{}

func (errSink) Write(diagnostic.Record) error { return errors.New("disk full") }

func TestSignStaged_Normal(t *testing.T) {
	f := newFixture(t, testNetwork())
	require.NoError(t, f.sess.Begin(stage.Options{}))
	f.sess.AddStaged(transfer(100, 1), transfer(200, 2), transfer(300, 3))

	signed, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: f.cosigner})
	require.NoError(t, err)
	require.Len(t, signed, 3)
	for _, st := range signed {
		assert.Equal(t, model.TypeTransfer, st.Type)
		require.NoError(t, signer.Verify(st, testGenerationHash))
	}

	assert.Empty(t, f.sess.Staged())
	got := f.sess.Signed().Snapshot()
	require.Len(t, got, 3)
	for i := range signed {
		assert.Equal(t, signed[i].Hash, got[i].Hash)
	}
}

func TestSignStaged_EmptyStage(t *testing.T) {
	for _, opts := range []stage.Options{{}, {IsAggregate: true}, {IsAggregate: true, IsMultisig: true}} {
		f := newFixture(t, testNetwork())
		require.NoError(t, f.sess.Begin(opts))

		signed, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: f.cosigner, Multisig: &f.multisig})
		require.NoError(t, err)
		assert.Empty(t, signed)
		assert.Equal(t, 0, f.sess.Signed().Len())
	}
}

func TestNewAggregate_LowestFeeKeepsOrder(t *testing.T) {
	f := newFixture(t, testNetwork())
	staged := []*model.Transaction{transfer(300, 1), transfer(100, 2), transfer(200, 3)}

	agg, err := f.svc.NewAggregate(staged, f.cosigner.PublicAccount(), false)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), agg.MaxFee)
	assert.Equal(t, model.TypeAggregateComplete, agg.Type())
	assert.NotZero(t, agg.Deadline)

	body := agg.Body.(*model.Aggregate)
	require.Len(t, body.InnerTransactions, 3)
	for i, inner := range body.InnerTransactions {
		assert.Equal(t, f.cosigner.PublicAccount().PublicKey, inner.SignerPublicKey)
		assert.Zero(t, inner.MaxFee)
		assert.Equal(t, staged[i].Body, inner.Body)
	}
	// 暂存交易本身不被改动
	assert.Equal(t, uint64(300), staged[0].MaxFee)
	assert.Empty(t, staged[0].SignerPublicKey)
}

func TestNewAggregate_Limits(t *testing.T) {
	f := newFixture(t, testNetwork())
	var staged []*model.Transaction
	for i := 0; i < 6; i++ {
		staged = append(staged, transfer(1, 1))
	}
	_, err := f.svc.NewAggregate(staged, f.multisig, true)
	assert.ErrorIs(t, err, errno.ErrValidation)

	nested := &model.Transaction{Body: &model.Aggregate{}}
	_, err = f.svc.NewAggregate([]*model.Transaction{nested}, f.multisig, true)
	assert.ErrorIs(t, err, errno.ErrValidation)
}

func TestSignStaged_Aggregate(t *testing.T) {
	f := newFixture(t, testNetwork())
	require.NoError(t, f.sess.Begin(stage.Options{IsAggregate: true}))
	f.sess.AddStaged(transfer(300, 1), transfer(100, 2))

	signed, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: f.cosigner})
	require.NoError(t, err)
	require.Len(t, signed, 1)
	assert.Equal(t, model.TypeAggregateComplete, signed[0].Type)
	require.NoError(t, signer.Verify(signed[0], testGenerationHash))
}

func TestSignStaged_MultisigLockFromSignedAggregate(t *testing.T) {
	f := newFixture(t, testNetwork())
	rec := &recordingSigner{Signer: f.cosigner}
	require.NoError(t, f.sess.Begin(stage.Options{IsAggregate: true, IsMultisig: true}))
	f.sess.AddStaged(transfer(500, 1), transfer(400, 2))

	signed, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: rec, Multisig: &f.multisig})
	require.NoError(t, err)
	require.Len(t, signed, 2)
	assert.Equal(t, model.TypeHashLock, signed[0].Type)
	assert.Equal(t, model.TypeAggregateBonded, signed[1].Type)

	// 先签聚合交易, 再签引用其哈希的锁
	require.Len(t, rec.txs, 2)
	agg := rec.txs[0].Body.(*model.Aggregate)
	assert.True(t, agg.Bonded)
	for _, inner := range agg.InnerTransactions {
		assert.Equal(t, f.multisig.PublicKey, inner.SignerPublicKey)
	}

	lockTx := rec.txs[1]
	lock := lockTx.Body.(*model.HashLock)
	assert.Equal(t, signed[1].Hash, lock.Hash)
	assert.Equal(t, testCurrency, lock.Mosaic.ID)
	assert.Equal(t, uint64(10_000_000), lock.Mosaic.Amount)
	assert.Equal(t, uint64(1000), lock.Duration)
	assert.Equal(t, uint64(400), lockTx.MaxFee)
}

func TestSignStaged_MultisigRequiresAccount(t *testing.T) {
	f := newFixture(t, testNetwork())
	require.NoError(t, f.sess.Begin(stage.Options{IsMultisig: true}))
	f.sess.AddStaged(transfer(1, 1))

	_, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: f.cosigner})
	assert.ErrorIs(t, err, errno.ErrValidation)
	assert.Len(t, f.sess.Staged(), 1)
}

func TestSignStaged_FailureKeepsStage(t *testing.T) {
	f := newFixture(t, testNetwork())
	require.NoError(t, f.sess.Begin(stage.Options{}))
	f.sess.AddStaged(transfer(1, 1), transfer(2, 2), transfer(3, 3))

	_, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: &failingSigner{Signer: f.cosigner, after: 2}})
	require.Error(t, err)
	assert.Len(t, f.sess.Staged(), 3)
	assert.Equal(t, 0, f.sess.Signed().Len())

	// 失败后可以重试
	signed, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: f.cosigner})
	require.NoError(t, err)
	assert.Len(t, signed, 3)
}

func TestSignStaged_SinkNeverAborts(t *testing.T) {
	for _, sink := range []diagnostic.Sink{panicSink{}, errSink{}} {
		f := newFixture(t, testNetwork(), WithSink(sink))
		require.NoError(t, f.sess.Begin(stage.Options{}))
		f.sess.AddStaged(transfer(1, 1))

		signed, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: f.cosigner})
		require.NoError(t, err)
		assert.Len(t, signed, 1)
	}
}

func TestSignStaged_DebugRecords(t *testing.T) {
	sink := diagnostic.NewMemory(10)
	f := newFixture(t, testNetwork(), WithSink(sink))
	require.NoError(t, f.sess.Begin(stage.Options{}))
	f.sess.AddStaged(transfer(1, 1), transfer(2, 2))

	signed, err := f.svc.SignStaged(context.Background(), f.sess, SignRequest{Signer: f.cosigner})
	require.NoError(t, err)

	records := sink.Records(diagnostic.LevelDebug)
	require.Len(t, records, 2)
	assert.Equal(t, signed[0].Hash, records[0].Fields["hash"])
	assert.Equal(t, f.cosigner.PublicAccount().Address, records[0].Fields["address"])
}

func TestCosignPartialTransaction(t *testing.T) {
	sink := diagnostic.NewMemory(10)
	f := newFixture(t, testNetwork(), WithSink(sink))
	parent := "0A1B2C3D4E5F60718293A4B5C6D7E8F90A1B2C3D4E5F60718293A4B5C6D7E8F9"

	cosig, err := f.svc.CosignPartialTransaction(context.Background(), f.cosigner, parent)
	require.NoError(t, err)
	assert.Equal(t, parent, cosig.ParentHash)
	require.NoError(t, signer.VerifyCosignature(cosig))
	assert.Len(t, sink.Records(diagnostic.LevelDebug), 1)
}
