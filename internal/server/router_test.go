package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/gateway/gatewaytest"
	"desk-wallet/internal/handler"
	"desk-wallet/internal/model"
	"desk-wallet/internal/service/account"
	"desk-wallet/internal/service/metadata"
	"desk-wallet/internal/service/transaction"
	"desk-wallet/internal/signer"
	"desk-wallet/internal/stage"
	"desk-wallet/internal/view"
	"desk-wallet/pkg/cache"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/validator"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGenerationHash = "57F7DA205008026C776CB6AED843393F04CD458E0AA2D9F1D5F31A402072B2D6"
	testCurrency       = model.MosaicID(0x5F160D7851F3CB30)
	walletKey          = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	recipient          = "2B5AD5C4795C026514F8317C7A215E218DCCD6CF"
)

type keyUnlocker struct {
	account *signer.Account
}

func (u keyUnlocker) Address() (string, error) { return u.account.PublicAccount().Address, nil }

func (u keyUnlocker) Unlock(password string) (signer.Signer, error) {
	if password != "pw" {
		return nil, errno.ErrPasswordIncorrect
	}
	return u.account, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []model.BroadcastResult
}

func (p *recordingPublisher) Publish(ctx context.Context, signer string, results []model.BroadcastResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, results...)
	return nil
}

func (p *recordingPublisher) History(ctx context.Context, limit int) ([]model.AnnouncementRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.AnnouncementRecord
	for _, r := range p.results {
		out = append(out, model.AnnouncementRecord{Hash: r.Hash, TxType: uint16(r.Type), Status: model.AnnouncementAnnounced})
	}
	return out, nil
}

type memoryPasswords struct {
	password string
	hint     string
}

func (p *memoryPasswords) ChangePassword(oldPassword, newPassword, hint string) error {
	if oldPassword != p.password {
		return errno.ErrPasswordIncorrect
	}
	p.password, p.hint = newPassword, hint
	return nil
}

type memoryContacts struct {
	mu       sync.Mutex
	contacts map[string]model.Contact
}

func (m *memoryContacts) List(ctx context.Context, blacklisted *bool) ([]model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Contact
	for _, c := range m.contacts {
		if blacklisted == nil || c.IsBlackListed == *blacklisted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryContacts) Get(ctx context.Context, addr string) (*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[addr]
	if !ok {
		return nil, errno.ErrNotFound
	}
	return &c, nil
}

func (m *memoryContacts) Save(ctx context.Context, c model.Contact) (*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[c.Address] = c
	return &c, nil
}

func (m *memoryContacts) Remove(ctx context.Context, addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[addr]; !ok {
		return errno.ErrNotFound
	}
	delete(m.contacts, addr)
	return nil
}

type memoryStore struct{}

func (memoryStore) List(ctx context.Context, generationHash, addr string) ([]model.MetadataEntry, error) {
	return nil, nil
}

func (memoryStore) Save(ctx context.Context, generationHash, addr string, entries []model.MetadataEntry) error {
	return nil
}

type testServer struct {
	router    *gin.Engine
	gw        *gatewaytest.Gateway
	publisher *recordingPublisher
	sink      *diagnostic.Memory
	wallet    *signer.Account
	passwords *memoryPasswords
	contacts  *memoryContacts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Init()

	key, err := crypto.HexToECDSA(walletKey)
	require.NoError(t, err)
	wallet := signer.NewAccount(key)

	network := transaction.Network{
		Type:                        model.TestNet,
		GenerationHash:              testGenerationHash,
		EpochAdjustment:             1637848847,
		CurrencyMosaicID:            testCurrency,
		LockedFundsPerAggregate:     10_000_000,
		LockDuration:                1000,
		MaxTransactionsPerAggregate: 10,
		Deadline:                    2 * time.Hour,
		ConfirmationTimeout:         time.Second,
	}

	gw := gatewaytest.NewGateway()
	hub := gatewaytest.NewHub()
	sink := diagnostic.NewMemory(diagnostic.DefaultCapacity)
	txs := transaction.NewService(gw, hub.Factory(), network, transaction.WithSink(sink))
	accounts := account.NewService(gw, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute,
		account.WithCurrency(model.MosaicInfo{ID: testCurrency, Divisibility: 6}, "symbol.xym"))
	meta := metadata.NewService(gw, memoryStore{}, network)
	publisher := &recordingPublisher{}

	base := view.Context{
		NetworkType:     model.TestNet,
		EpochAdjustment: network.EpochAdjustment,
		DeadlineWindow:  network.Deadline,
		DefaultMaxFee:   20000,
		MaxMessageSize:  1024,
	}

	session := stage.NewSession()
	passwords := &memoryPasswords{password: "pw"}
	contacts := &memoryContacts{contacts: map[string]model.Contact{}}
	router := NewHTTPRouter(Handlers{
		Health:      handler.NewHealthHandler(session, keyUnlocker{wallet}, model.TestNet),
		Transaction: handler.NewTransactionHandler(session, txs, accounts, meta, keyUnlocker{wallet}, publisher, base),
		Account:     handler.NewAccountHandler(accounts, meta),
		Wallet:      handler.NewWalletHandler(passwords, contacts),
		Diagnostic:  handler.NewDiagnosticHandler(sink),
	})
	return &testServer{
		router:    router,
		gw:        gw,
		publisher: publisher,
		sink:      sink,
		wallet:    wallet,
		passwords: passwords,
		contacts:  contacts,
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func transferForm() map[string]interface{} {
	return map[string]interface{}{
		"type": "transfer",
		"form": map[string]interface{}{
			"recipient": recipient,
			"mosaics":   []map[string]string{{"mosaic_id": "5F160D7851F3CB30", "amount": "1.5"}},
			"max_fee":   20000,
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	env := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, 0, env.Code)
	var status handler.HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "UP", status.Status)
	assert.Equal(t, s.wallet.PublicAccount().Address, status.Wallet)
	assert.Equal(t, uint8(model.TestNet), status.NetworkType)
	assert.Equal(t, 0, status.Staged)

	env = s.do(t, http.MethodPost, "/api/v1/stage", transferForm())
	require.Equal(t, 0, env.Code, env.Msg)
	env = s.do(t, http.MethodGet, "/health", nil)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, 1, status.Staged)
}

func TestStage_MosaicAlias(t *testing.T) {
	s := newTestServer(t)
	form := transferForm()
	form["form"].(map[string]interface{})["mosaics"] = []map[string]string{{"mosaic_id": "@unknown.coin", "amount": "1"}}

	env := s.do(t, http.MethodPost, "/api/v1/stage", form)
	assert.Equal(t, errno.ErrValidation.Code, env.Code)

	form["form"].(map[string]interface{})["mosaics"] = []map[string]string{{"mosaic_id": "@symbol.xym", "amount": "1.5"}}
	env = s.do(t, http.MethodPost, "/api/v1/stage", form)
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Contains(t, string(env.Data), "1.5 "+testCurrency.Hex())
}

func TestUpdatePassword(t *testing.T) {
	s := newTestServer(t)

	env := s.do(t, http.MethodPost, "/api/v1/wallet/password", map[string]string{
		"old_password": "pw", "new_password": "new-password", "password_confirm": "mismatch",
	})
	assert.Equal(t, errno.ErrBind.Code, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/wallet/password", map[string]string{
		"old_password": "wrong", "new_password": "new-password", "password_confirm": "new-password",
	})
	assert.Equal(t, errno.ErrPasswordIncorrect.Code, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/wallet/password", map[string]string{
		"old_password": "pw", "new_password": "new-password", "password_confirm": "new-password", "hint": "pet",
	})
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, "new-password", s.passwords.password)
	assert.Equal(t, "pet", s.passwords.hint)
}

func TestContacts(t *testing.T) {
	s := newTestServer(t)

	env := s.do(t, http.MethodGet, "/api/v1/contacts", nil)
	require.Equal(t, 0, env.Code)
	assert.JSONEq(t, "[]", string(env.Data))

	env = s.do(t, http.MethodPut, "/api/v1/contacts", map[string]interface{}{"address": "XYZ", "name": "bob"})
	assert.Equal(t, errno.ErrBind.Code, env.Code)

	env = s.do(t, http.MethodPut, "/api/v1/contacts", map[string]interface{}{
		"address": recipient, "name": "bob", "is_black_listed": true,
	})
	require.Equal(t, 0, env.Code, env.Msg)

	env = s.do(t, http.MethodGet, "/api/v1/contacts?black_listed=true", nil)
	require.Equal(t, 0, env.Code, env.Msg)
	var contacts []model.Contact
	require.NoError(t, json.Unmarshal(env.Data, &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "bob", contacts[0].Name)

	env = s.do(t, http.MethodGet, "/api/v1/contacts/"+recipient, nil)
	require.Equal(t, 0, env.Code)

	env = s.do(t, http.MethodDelete, "/api/v1/contacts/"+recipient, nil)
	require.Equal(t, 0, env.Code)
	env = s.do(t, http.MethodDelete, "/api/v1/contacts/"+recipient, nil)
	assert.Equal(t, errno.ErrNotFound.Code, env.Code)
}

func TestStageSignAnnounce(t *testing.T) {
	s := newTestServer(t)

	env := s.do(t, http.MethodPost, "/api/v1/stage/options", map[string]bool{})
	require.Equal(t, 0, env.Code, env.Msg)

	env = s.do(t, http.MethodPost, "/api/v1/stage", transferForm())
	require.Equal(t, 0, env.Code, env.Msg)
	var item handler.StagedItem
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, "transfer", item.Type)
	assert.NotEmpty(t, item.Details)

	// 流程未完成时不能重新开始
	env = s.do(t, http.MethodPost, "/api/v1/stage/options", map[string]bool{"is_aggregate": true})
	assert.Equal(t, errno.ErrStagePending.Code, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/sign", map[string]string{"password": "wrong"})
	assert.Equal(t, errno.ErrPasswordIncorrect.Code, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/sign", map[string]string{"password": "pw"})
	require.Equal(t, 0, env.Code, env.Msg)
	var signed []model.SignedTransaction
	require.NoError(t, json.Unmarshal(env.Data, &signed))
	require.Len(t, signed, 1)
	assert.Equal(t, s.wallet.PublicAccount().PublicKey, signed[0].SignerPublicKey)

	env = s.do(t, http.MethodPost, "/api/v1/announce", nil)
	require.Equal(t, 0, env.Code, env.Msg)
	var results []model.BroadcastResult
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, signed[0].Hash, results[0].Hash)

	assert.Equal(t, []gatewaytest.Call{{Method: "announce", Hash: signed[0].Hash}}, s.gw.Calls())
	assert.Len(t, s.publisher.results, 1)

	// 签名留下的诊断记录
	env = s.do(t, http.MethodGet, "/api/v1/diagnostics?level=debug", nil)
	require.Equal(t, 0, env.Code)
	var records []diagnostic.Record
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.NotEmpty(t, records)

	env = s.do(t, http.MethodGet, "/api/v1/announcements?limit=5", nil)
	assert.Equal(t, 0, env.Code)
}

func TestStage_InvalidForm(t *testing.T) {
	s := newTestServer(t)

	form := transferForm()
	form["form"].(map[string]interface{})["recipient"] = "not-an-address"
	env := s.do(t, http.MethodPost, "/api/v1/stage", form)
	assert.Equal(t, errno.ErrValidation.Code, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/stage", map[string]string{"type": "unknown"})
	assert.Equal(t, errno.ErrBind.Code, env.Code)

	env = s.do(t, http.MethodGet, "/api/v1/stage", nil)
	require.Equal(t, 0, env.Code)
	assert.Contains(t, string(env.Data), `"staged":[]`)
}

func TestCancelStage(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, 0, s.do(t, http.MethodPost, "/api/v1/stage", transferForm()).Code)

	require.Equal(t, 0, s.do(t, http.MethodDelete, "/api/v1/stage", nil).Code)

	env := s.do(t, http.MethodPost, "/api/v1/stage/options", map[string]bool{"is_aggregate": true})
	assert.Equal(t, 0, env.Code)
	assert.Empty(t, s.gw.Calls())
}

func TestCosign(t *testing.T) {
	s := newTestServer(t)
	parent := "8A0E3D4C6F4E2B1A0E3D4C6F4E2B1A0E3D4C6F4E2B1A0E3D4C6F4E2B1A0E3D4C"

	env := s.do(t, http.MethodPost, "/api/v1/cosign", map[string]interface{}{
		"password": "pw",
		"hashes":   []string{parent},
	})
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, []gatewaytest.Call{{Method: "announceCosignature", Hash: parent}}, s.gw.Calls())

	env = s.do(t, http.MethodPost, "/api/v1/cosign", map[string]interface{}{"password": "pw"})
	assert.Equal(t, errno.ErrBind.Code, env.Code)
}

func TestAccountRoutes(t *testing.T) {
	s := newTestServer(t)
	s.gw.Accounts[recipient] = &model.AccountInfo{Address: recipient, Mosaics: []model.Mosaic{{ID: testCurrency, Amount: 7}}}

	env := s.do(t, http.MethodGet, "/api/v1/accounts/"+recipient+"/info", nil)
	require.Equal(t, 0, env.Code, env.Msg)
	var info model.AccountInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, recipient, info.Address)

	env = s.do(t, http.MethodGet, "/api/v1/accounts/nope/info", nil)
	assert.Equal(t, errno.ErrInvalidAddress.Code, env.Code)

	for _, p := range []string{"balances", "multisig", "mosaics", "namespaces", "metadata", "signers"} {
		env = s.do(t, http.MethodGet, "/api/v1/accounts/"+recipient+"/"+p, nil)
		assert.Equal(t, 0, env.Code, "%s: %s", p, env.Msg)
	}
}
