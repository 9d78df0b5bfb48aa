package rpc

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	addresscodec "github.com/adipundir/donatrade/internal/codec/address-codec"
	"github.com/adipundir/donatrade/internal/core/encrypted"
	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/crypto"
	"github.com/adipundir/donatrade/internal/custody"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200

	// MaxDecryptValidity bounds how far in the future a decrypt request
	// may expire.
	MaxDecryptValidity = 5 * time.Minute
)

// decryptPrefix domain-separates decrypt request signatures.
var decryptPrefix = []byte("DEC\x00")

// DecryptPayload is the message a viewer signs to reveal handle: the
// handle, the unix second the request expires at and a client nonce.
func DecryptPayload(h encrypted.Handle, expires int64, nonce uint64) []byte {
	out := make([]byte, 0, len(decryptPrefix)+len(h)+16)
	out = append(out, decryptPrefix...)
	out = append(out, h[:]...)
	out = binary.BigEndian.AppendUint64(out, uint64(expires))
	return binary.BigEndian.AppendUint64(out, nonce)
}

func (s *Server) registerAllMethods() {
	s.registry.Register("ping", MethodFunc(s.ping))
	s.registry.Register("server_info", MethodFunc(s.serverInfo))
	s.registry.Register("global_vault_info", MethodFunc(s.globalVaultInfo))
	s.registry.Register("company_info", MethodFunc(s.companyInfo))
	s.registry.Register("vault_info", MethodFunc(s.vaultInfo))
	s.registry.Register("position_info", MethodFunc(s.positionInfo))
	s.registry.Register("offer_info", MethodFunc(s.offerInfo))
	s.registry.Register("token_balance", MethodFunc(s.tokenBalance))
	s.registry.Register("account_info", MethodFunc(s.accountInfo))
	s.registry.Register("account_history", MethodFunc(s.accountHistory))
	s.registry.Register("submit", MethodFunc(s.submit))
	s.registry.Register("fund", MethodFunc(s.fund))
	s.registry.Register("decrypt", MethodFunc(s.decrypt))
	s.registry.Register("company_apply", MethodFunc(s.companyApply))
	s.registry.Register("company_applications", MethodFunc(s.companyApplications))
	s.registry.Register("company_application", MethodFunc(s.companyApplication))
	s.registry.Register("company_approve", MethodFunc(s.companyApprove))
}

func parseParams(params json.RawMessage, v interface{}) *RpcError {
	if len(params) == 0 {
		return RpcErrorInvalidParams("Missing params")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func parseAccount(field, address string) ([20]byte, *RpcError) {
	if address == "" {
		return [20]byte{}, RpcErrorInvalidParams("Missing field '" + field + "'")
	}
	id, err := addresscodec.DecodeAccountID(address)
	if err != nil {
		return [20]byte{}, RpcErrorActMalformed(address)
	}
	return id, nil
}

func parseHex(field, value string) ([]byte, *RpcError) {
	if value == "" {
		return nil, RpcErrorInvalidParams("Missing field '" + field + "'")
	}
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil, RpcErrorInvalidParams("Field '" + field + "' is not hex")
	}
	return raw, nil
}

func address(id [20]byte) string {
	return addresscodec.EncodeAccountID(id)
}

func indexHex(k keylet.Keylet) string {
	return strings.ToUpper(hex.EncodeToString(k.Key[:]))
}

// load reads an entry from committed state, mapping absence to
// entryNotFound.
func (s *Server) load(k keylet.Keylet, e entries.LedgerEntry, what string) *RpcError {
	found, err := state.Load(s.services.Engine.View(), k, e)
	if err != nil {
		s.logger.Error("ledger read failed", "type", k.Type, "error", err)
		return RpcErrorInternal("ledger read failed")
	}
	if !found {
		return RpcErrorEntryNotFound(what)
	}
	return nil
}

func (s *Server) ping(_ *RpcContext, _ json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}

func (s *Server) serverInfo(_ *RpcContext, _ json.RawMessage) (interface{}, *RpcError) {
	cfg := s.services.Engine.Config()
	initialized, err := s.services.Engine.View().Exists(keylet.GlobalVault())
	if err != nil {
		return nil, RpcErrorInternal("ledger read failed")
	}
	info := map[string]interface{}{
		"version":           s.services.Version,
		"methods":           s.registry.List(),
		"vault_initialized": initialized,
		"faucet":            s.services.Faucet != nil,
		"history":           s.services.History != nil,
		"decrypt":           s.services.Decrypter != nil,
		"traffic":           s.traffic.GetAllStats(),
	}
	if !crypto.IsZeroAccountID(cfg.PlatformAdmin) {
		info["platform_admin"] = address(cfg.PlatformAdmin)
	}
	return map[string]interface{}{"info": info}, nil
}

func (s *Server) globalVaultInfo(_ *RpcContext, _ json.RawMessage) (interface{}, *RpcError) {
	var gv entries.GlobalVault
	k := keylet.GlobalVault()
	if rpcErr := s.load(k, &gv, "Platform vault"); rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{
		"index": indexHex(k),
		"global_vault": map[string]interface{}{
			"admin":           address(gv.Admin),
			"authority":       address(gv.Authority),
			"custody_account": strings.ToUpper(hex.EncodeToString(gv.CustodyAccount[:])),
			"bump":            gv.Bump,
		},
	}, nil
}

func (s *Server) companyInfo(_ *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		CompanyID *uint64 `json:"company_id"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.CompanyID == nil {
		return nil, RpcErrorInvalidParams("Missing field 'company_id'")
	}

	var c entries.CompanyAccount
	k := keylet.Company(*req.CompanyID)
	if rpcErr := s.load(k, &c, "Company"); rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{
		"index": indexHex(k),
		"company": map[string]interface{}{
			"company_id":       c.CompanyID,
			"admin":            address(c.Admin),
			"revenue":          c.Revenue,
			"shares_available": c.SharesAvailable,
			"price_per_share":  c.PricePerShare,
			"active":           c.Active,
			"bump":             c.Bump,
		},
	}, nil
}

func (s *Server) vaultInfo(_ *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount("account", req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var v entries.InvestorVault
	k := keylet.InvestorVault(owner)
	if rpcErr := s.load(k, &v, "Vault"); rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{
		"index": indexHex(k),
		"vault": map[string]interface{}{
			"owner":   address(v.Owner),
			"balance": v.Balance,
			"bump":    v.Bump,
		},
	}, nil
}

func (s *Server) positionInfo(_ *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Account   string  `json:"account"`
		CompanyID *uint64 `json:"company_id"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount("account", req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if req.CompanyID == nil {
		return nil, RpcErrorInvalidParams("Missing field 'company_id'")
	}

	var p entries.PositionAccount
	k := keylet.Position(*req.CompanyID, owner)
	if rpcErr := s.load(k, &p, "Position"); rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{
		"index": indexHex(k),
		"position": map[string]interface{}{
			"owner":      address(p.Owner),
			"company_id": p.CompanyID,
			"shares":     p.Shares,
			"bump":       p.Bump,
		},
	}, nil
}

func (s *Server) offerInfo(_ *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Seller  string  `json:"seller"`
		OfferID *uint64 `json:"offer_id"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	seller, rpcErr := parseAccount("seller", req.Seller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if req.OfferID == nil {
		return nil, RpcErrorInvalidParams("Missing field 'offer_id'")
	}

	var o entries.OfferAccount
	k := keylet.Offer(seller, *req.OfferID)
	if rpcErr := s.load(k, &o, "Offer"); rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{
		"index": indexHex(k),
		"offer": map[string]interface{}{
			"offer_id":        o.OfferID,
			"seller":          address(o.Seller),
			"company_id":      o.CompanyID,
			"share_amount":    o.ShareAmount,
			"price_per_share": o.PricePerShare,
			"active":          o.IsActive(),
			"escrow_status":   o.Escrow.Status.String(),
			"escrow_shares":   o.Escrow.Shares,
			"bump":            o.Bump,
		},
	}, nil
}

func (s *Server) tokenBalance(_ *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount("account", req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	balance, exists, err := custody.Balance(s.services.Engine.View(), owner)
	if err != nil {
		return nil, RpcErrorInternal("ledger read failed")
	}
	return map[string]interface{}{
		"account": req.Account,
		"balance": balance,
		"exists":  exists,
	}, nil
}

func (s *Server) accountInfo(_ *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseAccount("account", req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	next, err := s.services.Engine.NextSequence(id)
	if err != nil {
		return nil, RpcErrorInternal("ledger read failed")
	}
	return map[string]interface{}{
		"account":  req.Account,
		"sequence": next,
	}, nil
}

func (s *Server) accountHistory(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.services.History == nil {
		return nil, RpcErrorNotEnabled("Operation journal")
	}
	var req struct {
		Account string `json:"account"`
		Limit   int    `json:"limit"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if _, rpcErr := parseAccount("account", req.Account); rpcErr != nil {
		return nil, rpcErr
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	list, err := s.services.History.ListByAccount(ctx.Context, req.Account, limit)
	if err != nil {
		s.logger.Error("journal read failed", "account", req.Account, "error", err)
		return nil, RpcErrorInternal("journal read failed")
	}
	ops := make([]map[string]interface{}, 0, len(list))
	for _, e := range list {
		op := map[string]interface{}{
			"type":               e.Type,
			"engine_result":      e.Result,
			"engine_result_code": e.ResultCode,
			"applied":            e.Applied,
			"message":            e.Message,
			"date":               e.CreatedAt.Unix(),
		}
		if e.Hash != "" {
			op["hash"] = e.Hash
		}
		if e.Metadata != "" {
			op["meta"] = json.RawMessage(e.Metadata)
		}
		ops = append(ops, op)
	}
	return map[string]interface{}{
		"account":    req.Account,
		"limit":      limit,
		"operations": ops,
	}, nil
}

// signedRequest carries a JSON operation and its signer's signature.
type signedRequest struct {
	TxBlob    string `json:"tx_blob"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// verify decodes the operation and checks it was signed by its Account.
func (r *signedRequest) verify() (tx.Transaction, []byte, *RpcError) {
	raw, rpcErr := parseHex("tx_blob", r.TxBlob)
	if rpcErr != nil {
		return nil, nil, rpcErr
	}
	pub, rpcErr := parseHex("public_key", r.PublicKey)
	if rpcErr != nil {
		return nil, nil, rpcErr
	}
	sig, rpcErr := parseHex("signature", r.Signature)
	if rpcErr != nil {
		return nil, nil, rpcErr
	}

	op, err := tx.VerifySigned(raw, pub, sig)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidPublicKey) || errors.Is(err, crypto.ErrInvalidSignature) ||
			errors.Is(err, tx.ErrSignerMismatch) {
			return nil, nil, RpcErrorBadSignature(err.Error())
		}
		return nil, nil, RpcErrorInvalidParams("Invalid operation: " + err.Error())
	}
	if op.GetCommon().Sequence == nil {
		return nil, nil, RpcErrorInvalidParams("Signed operations must carry a Sequence")
	}
	return op, raw, nil
}

// applySigned applies op unless its blob was applied recently.
func (s *Server) applySigned(ctx context.Context, op tx.Transaction, raw []byte) (tx.ApplyResult, *RpcError) {
	digest := blobDigest(raw)
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	if s.replay.Seen(digest) {
		return tx.ApplyResult{}, NewRpcError(RpcALREADY_APPLIED, "alreadyApplied", "alreadyApplied",
			"This signed operation has already been applied")
	}
	res := s.services.Engine.Apply(ctx, op)
	if res.Applied {
		s.replay.Remember(digest)
	}
	return res, nil
}

func engineResult(res tx.ApplyResult, raw []byte) map[string]interface{} {
	result := map[string]interface{}{
		"engine_result":         res.Result.String(),
		"engine_result_code":    int(res.Result),
		"engine_result_message": res.Message,
		"applied":               res.Applied,
		"tx_json":               json.RawMessage(raw),
	}
	if res.Hash != ([32]byte{}) {
		result["hash"] = res.HashHex()
	}
	if res.Metadata != nil {
		result["meta"] = res.Metadata
	}
	return result
}

func (s *Server) submit(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req signedRequest
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	op, raw, rpcErr := req.verify()
	if rpcErr != nil {
		return nil, rpcErr
	}
	res, rpcErr := s.applySigned(ctx.Context, op, raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return engineResult(res, raw), nil
}

func (s *Server) fund(_ *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.services.Faucet == nil {
		return nil, RpcErrorNotEnabled("Faucet")
	}
	var req struct {
		Account string `json:"account"`
		Amount  uint64 `json:"amount"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount("account", req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if req.Amount == 0 {
		return nil, RpcErrorInvalidParams("Field 'amount' must be positive")
	}

	_, err := s.services.Engine.Mutate(func(view state.View) error {
		return s.services.Faucet.Fund(view, owner, req.Amount)
	})
	if err != nil {
		return nil, RpcErrorInvalidParams("Funding failed: " + err.Error())
	}
	balance, _, err := custody.Balance(s.services.Engine.View(), owner)
	if err != nil {
		return nil, RpcErrorInternal("ledger read failed")
	}
	s.logger.Info("faucet funded", "account", req.Account, "amount", req.Amount)
	return map[string]interface{}{
		"account": req.Account,
		"balance": balance,
	}, nil
}

func (s *Server) decrypt(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.services.Decrypter == nil {
		return nil, RpcErrorNotEnabled("Decryption")
	}
	var req struct {
		Handle    string `json:"handle"`
		Expires   int64  `json:"expires"`
		Nonce     uint64 `json:"nonce"`
		PublicKey string `json:"public_key"`
		Signature string `json:"signature"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	h, err := encrypted.ParseHandle(req.Handle)
	if err != nil {
		return nil, RpcErrorInvalidParams("Field 'handle' is malformed")
	}
	now := s.now()
	expires := time.Unix(req.Expires, 0)
	if req.Expires == 0 {
		return nil, RpcErrorInvalidParams("Missing field 'expires'")
	}
	if !expires.After(now) {
		return nil, RpcErrorInvalidParams("Decrypt request has expired")
	}
	if expires.Sub(now) > MaxDecryptValidity {
		return nil, RpcErrorInvalidParams(fmt.Sprintf("Field 'expires' is more than %s ahead", MaxDecryptValidity))
	}
	pub, rpcErr := parseHex("public_key", req.PublicKey)
	if rpcErr != nil {
		return nil, rpcErr
	}
	sig, rpcErr := parseHex("signature", req.Signature)
	if rpcErr != nil {
		return nil, rpcErr
	}
	payload := DecryptPayload(h, req.Expires, req.Nonce)
	if err := crypto.Verify(pub, payload, sig); err != nil {
		return nil, RpcErrorBadSignature(err.Error())
	}

	// A request is served once. Its expiry bounds how long it must be
	// remembered.
	digest := blobDigest(append(payload, pub...))
	s.submitMu.Lock()
	seen := s.decrypts.Seen(digest)
	if !seen {
		s.decrypts.Remember(digest)
	}
	s.submitMu.Unlock()
	if seen {
		return nil, NewRpcError(RpcALREADY_APPLIED, "alreadyApplied", "alreadyApplied",
			"This decrypt request has already been served")
	}

	viewer := crypto.CalcAccountID(pub)
	value, err := s.services.Decrypter.Decrypt(ctx.Context, h, viewer)
	if err != nil {
		if errors.Is(err, encrypted.ErrNotAllowed) {
			return nil, NewRpcError(RpcBAD_SIGNATURE, "notAllowed", "notAllowed", "Viewer is not allowed to decrypt this handle")
		}
		if errors.Is(err, encrypted.ErrUnknownHandle) {
			return nil, RpcErrorEntryNotFound("Handle")
		}
		return nil, RpcErrorInternal("decryption failed")
	}
	return map[string]interface{}{
		"handle": h,
		"viewer": address(viewer),
		"value":  value.String(),
	}, nil
}
