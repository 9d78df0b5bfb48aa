package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
	"github.com/adipundir/donatrade/internal/config"
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/crypto"
	"github.com/adipundir/donatrade/internal/log"
	"github.com/adipundir/donatrade/internal/storage/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "donatraded version "+Version)
	assert.Contains(t, out, "Go version")
}

func TestKeygenCommand(t *testing.T) {
	out, _, err := runCommand(t, "", "keygen", "--seed", "alice")
	require.NoError(t, err)

	var info keyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	key := crypto.KeyPairFromSeed("alice")
	assert.Equal(t, addresscodec.EncodeAccountID(key.AccountID()), info.Address)
	assert.Equal(t, strings.ToUpper(hex.EncodeToString(key.PublicKey())), info.PublicKey)

	// a secret reproduces the same key
	out, _, err = runCommand(t, "", "keygen", "--secret", info.PrivateKey)
	require.NoError(t, err)
	var again keyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &again))
	assert.Equal(t, info, again)

	// random keys differ
	out, _, err = runCommand(t, "", "keygen")
	require.NoError(t, err)
	var random keyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &random))
	assert.NotEqual(t, info.Address, random.Address)

	_, _, err = runCommand(t, "", "keygen", "--seed", "a", "--secret", "00")
	assert.Error(t, err)
}

func TestSignCommand(t *testing.T) {
	op := `{"TransactionType":"Deposit","Amount":25}`
	out, _, err := runCommand(t, op, "sign", "--seed", "alice", "--sequence", "7", "-")
	require.NoError(t, err)

	var signed signedOperation
	require.NoError(t, json.Unmarshal([]byte(out), &signed))

	blob, err := hex.DecodeString(signed.TxBlob)
	require.NoError(t, err)
	pub, err := hex.DecodeString(signed.PublicKey)
	require.NoError(t, err)
	sig, err := hex.DecodeString(signed.Signature)
	require.NoError(t, err)

	parsed, err := tx.VerifySigned(blob, pub, sig)
	require.NoError(t, err)
	common := parsed.GetCommon()
	assert.Equal(t, addresscodec.EncodeAccountID(crypto.KeyPairFromSeed("alice").AccountID()), common.Account)
	require.NotNil(t, common.Sequence)
	assert.Equal(t, uint32(7), *common.Sequence)
}

func TestSignCommand_Errors(t *testing.T) {
	_, _, err := runCommand(t, "", "sign", `{"TransactionType":"Deposit","Amount":1}`)
	assert.ErrorContains(t, err, "signing key is required")

	_, _, err = runCommand(t, "", "sign", "--seed", "alice", `{"TransactionType":"Nope"}`)
	assert.Error(t, err)

	_, _, err = runCommand(t, "", "sign", "--seed", "alice", `{"TransactionType":"Deposit","Amount":1}`)
	assert.ErrorContains(t, err, "Sequence is required")

	_, _, err = runCommand(t, "", "sign", "--seed", "alice", "--sequence", "1",
		`{"TransactionType":"TransferShares","CompanyID":1,"ShareAmount":1}`)
	assert.ErrorIs(t, err, tx.ErrMissingRequiredField)
}

func TestRPCCommand(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		if got["method"] == "broken" {
			w.Write([]byte(`{"result":{"status":"error","error":"unknownCmd","error_message":"Unknown method"}}`))
			return
		}
		w.Write([]byte(`{"result":{"status":"success","echo":true}}`))
	}))
	defer srv.Close()

	out, _, err := runCommand(t, "", "rpc", "company_info", `{"company_id":3}`, "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"echo": true`)
	assert.Equal(t, "company_info", got["method"])
	params := got["params"].([]interface{})
	assert.Equal(t, float64(3), params[0].(map[string]interface{})["company_id"])

	out, _, err = runCommand(t, "", "rpc", "broken", "--url", srv.URL)
	assert.ErrorContains(t, err, "unknownCmd")
	assert.Contains(t, out, `"status": "error"`)

	_, _, err = runCommand(t, "", "rpc", "ping", "{not json", "--url", srv.URL)
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestRunServer_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, fmt.Sprintf(`
[storage]
backend = "memory"

[journal]
enabled = true
driver = "sqlite"
database = %q

[faucet]
enabled = true
`, filepath.Join(dir, "journal.db")))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, cfg, log.Nop(), ln) }()

	client := newRPCClient("http://"+ln.Addr().String(), 5*time.Second)
	call := func(method string, params interface{}) map[string]interface{} {
		t.Helper()
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		res, err := client.Call(ctx, method, raw)
		require.NoError(t, err)
		return res
	}
	submit := func(op string, key *crypto.KeyPair, sequence uint32) map[string]interface{} {
		t.Helper()
		signed, err := signOperation([]byte(op), key, sequence, true)
		require.NoError(t, err)
		return call("submit", signed)
	}

	alice := crypto.KeyPairFromSeed("alice")
	aliceAddr := addresscodec.EncodeAccountID(alice.AccountID())

	res, err := client.Call(ctx, "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "success", res["status"])

	res = submit(`{"TransactionType":"InitializeGlobalVault"}`, alice, 1)
	assert.Equal(t, "tesSUCCESS", res["engine_result"])

	res = call("fund", map[string]interface{}{"account": aliceAddr, "amount": 100})
	assert.Equal(t, float64(100), res["balance"])

	res = submit(`{"TransactionType":"Deposit","Amount":60}`, alice, 2)
	assert.Equal(t, "tesSUCCESS", res["engine_result"])

	res = call("token_balance", map[string]interface{}{"account": aliceAddr})
	assert.Equal(t, float64(40), res["balance"])

	res = call("account_history", map[string]interface{}{"account": aliceAddr})
	assert.Len(t, res["operations"], 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunServer_RefusesVolatileOracleOnPersistentStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	path := writeConfig(t, fmt.Sprintf(`
[storage]
backend = "pebble"
path = %q

[engine]
platform_admin = "D5EQRCnPMXmRvUoZwC7gu7fYspean3PQ9a"
`, dir))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = runServer(context.Background(), cfg, log.Nop(), ln)
	assert.ErrorIs(t, err, config.ErrVolatileOracle)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "store must not be created")
}

func TestSnapshotAndInspectCommands(t *testing.T) {
	confFor := func(dir string) string {
		return writeConfig(t, fmt.Sprintf(`
[storage]
backend = "leveldb"
path = %q

[journal]
enabled = false
`, dir))
	}
	source := confFor(filepath.Join(t.TempDir(), "source"))
	target := confFor(filepath.Join(t.TempDir(), "target"))

	owner := crypto.KeyPairFromSeed("alice").AccountID()
	data, err := entries.Encode(&entries.TokenAccount{Owner: owner, Balance: 42})
	require.NoError(t, err)
	key := keylet.TokenAccount(owner).Key

	cfg, err := config.LoadConfig(source)
	require.NoError(t, err)
	dbs, store, err := openStore(cfg.Storage)
	require.NoError(t, err)
	require.NoError(t, store.Commit([]state.Change{{Key: key, Data: data}}))
	require.NoError(t, dbs.Close())

	file := filepath.Join(t.TempDir(), "state.snap")
	_, stderr, err := runCommand(t, "", "snapshot", "export", file, "--conf", source)
	require.NoError(t, err)
	assert.Contains(t, stderr, "exported 1 entries")

	_, stderr, err = runCommand(t, "", "snapshot", "import", file, "--conf", target)
	require.NoError(t, err)
	assert.Contains(t, stderr, "imported 1 entries")

	_, _, err = runCommand(t, "", "snapshot", "import", file, "--conf", target)
	assert.ErrorIs(t, err, snapshot.ErrStoreNotEmpty)

	out, _, err := runCommand(t, "", "inspect", "--conf", target, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, strings.ToUpper(hex.EncodeToString(key[:])))
	assert.Contains(t, out, "TokenAccount")
	assert.Contains(t, out, "Balance:42")

	out, _, err = runCommand(t, "", "inspect", "--conf", target, "--type", "Company")
	require.NoError(t, err)
	assert.NotContains(t, out, "TokenAccount")
}
