package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adipundir/donatrade/internal/core/ledger/entry/entries"
	"github.com/adipundir/donatrade/internal/core/ledger/keylet"
	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/core/tx/platform"
	"github.com/adipundir/donatrade/internal/crypto"
	"github.com/adipundir/donatrade/internal/storage/relationaldb"
)

// applicationPrefix domain-separates application signatures from
// operation and decrypt signatures.
var applicationPrefix = []byte("APP\x00")

// ApplicationPayload is the message a company admin signs to file the
// JSON encoded application blob.
func ApplicationPayload(blob []byte) []byte {
	out := make([]byte, 0, len(applicationPrefix)+len(blob))
	out = append(out, applicationPrefix...)
	return append(out, blob...)
}

// ApplicationRequest is the body of a company_apply blob.
type ApplicationRequest struct {
	Wallet        string `json:"wallet"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Sector        string `json:"sector"`
	OfferingURL   string `json:"offering_url"`
	LogoURL       string `json:"logo_url,omitempty"`
	InitialShares uint64 `json:"initial_shares"`
	PricePerShare uint64 `json:"price_per_share"`
}

func applicationJSON(a *relationaldb.Application) map[string]interface{} {
	out := map[string]interface{}{
		"id":              a.ID,
		"wallet":          a.Wallet,
		"name":            a.Name,
		"description":     a.Description,
		"sector":          a.Sector,
		"offering_url":    a.OfferingURL,
		"logo_url":        a.LogoURL,
		"initial_shares":  a.InitialShares,
		"price_per_share": a.PricePerShare,
		"status":          string(a.Status),
		"date":            a.CreatedAt.Unix(),
	}
	if a.Status == relationaldb.StatusActive {
		out["legal_agreement_url"] = a.LegalAgreementURL
		out["company_id"] = a.CompanyID
	}
	return out
}

func (s *Server) applicationError(op string, err error) *RpcError {
	switch {
	case errors.Is(err, relationaldb.ErrApplicationNotFound):
		return RpcErrorEntryNotFound("Company application")
	case errors.Is(err, relationaldb.ErrMissingField), errors.Is(err, relationaldb.ErrInvalidStatus):
		return RpcErrorInvalidParams(err.Error())
	case errors.Is(err, relationaldb.ErrApplicationActive):
		return NewRpcError(RpcALREADY_APPLIED, "alreadyApplied", "alreadyApplied", err.Error())
	}
	s.logger.Error("application registry failed", "op", op, "error", err)
	return RpcErrorInternal("application registry failed")
}

func (s *Server) companyApply(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.services.Applications == nil {
		return nil, RpcErrorNotEnabled("Company registry")
	}
	var req struct {
		ApplicationBlob string `json:"application_blob"`
		PublicKey       string `json:"public_key"`
		Signature       string `json:"signature"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	blob, rpcErr := parseHex("application_blob", req.ApplicationBlob)
	if rpcErr != nil {
		return nil, rpcErr
	}
	pub, rpcErr := parseHex("public_key", req.PublicKey)
	if rpcErr != nil {
		return nil, rpcErr
	}
	sig, rpcErr := parseHex("signature", req.Signature)
	if rpcErr != nil {
		return nil, rpcErr
	}
	payload := ApplicationPayload(blob)
	if err := crypto.Verify(pub, payload, sig); err != nil {
		return nil, RpcErrorBadSignature(err.Error())
	}

	var body ApplicationRequest
	if err := json.Unmarshal(blob, &body); err != nil {
		return nil, RpcErrorInvalidParams("Invalid application: " + err.Error())
	}
	wallet, rpcErr := parseAccount("wallet", body.Wallet)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if crypto.CalcAccountID(pub) != wallet {
		return nil, RpcErrorBadSignature("Application must be signed by its wallet")
	}

	digest := blobDigest(append(payload, pub...))
	s.submitMu.Lock()
	seen := s.replay.Seen(digest)
	if !seen {
		s.replay.Remember(digest)
	}
	s.submitMu.Unlock()
	if seen {
		return nil, NewRpcError(RpcALREADY_APPLIED, "alreadyApplied", "alreadyApplied",
			"This application has already been filed")
	}

	a := &relationaldb.Application{
		Wallet:        body.Wallet,
		Name:          body.Name,
		Description:   body.Description,
		Sector:        body.Sector,
		OfferingURL:   body.OfferingURL,
		LogoURL:       body.LogoURL,
		InitialShares: body.InitialShares,
		PricePerShare: body.PricePerShare,
	}
	if err := s.services.Applications.CreateApplication(ctx.Context, a); err != nil {
		return nil, s.applicationError("create", err)
	}
	s.logger.Info("company application filed", "id", a.ID, "wallet", a.Wallet, "name", a.Name)
	return map[string]interface{}{"application": applicationJSON(a)}, nil
}

func (s *Server) companyApplications(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.services.Applications == nil {
		return nil, RpcErrorNotEnabled("Company registry")
	}
	var req struct {
		Status string `json:"status"`
	}
	if len(params) > 0 {
		if rpcErr := parseParams(params, &req); rpcErr != nil {
			return nil, rpcErr
		}
	}
	list, err := s.services.Applications.ListApplications(ctx.Context, relationaldb.ApplicationStatus(req.Status))
	if err != nil {
		return nil, s.applicationError("list", err)
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, a := range list {
		out = append(out, applicationJSON(a))
	}
	return map[string]interface{}{"applications": out}, nil
}

// companyApplication looks an application up by ID or by wallet.
func (s *Server) companyApplication(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.services.Applications == nil {
		return nil, RpcErrorNotEnabled("Company registry")
	}
	var req struct {
		ID     int64  `json:"id"`
		Wallet string `json:"wallet"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}

	var (
		a   *relationaldb.Application
		err error
	)
	switch {
	case req.ID > 0:
		a, err = s.services.Applications.Application(ctx.Context, req.ID)
	case req.Wallet != "":
		if _, rpcErr := parseAccount("wallet", req.Wallet); rpcErr != nil {
			return nil, rpcErr
		}
		a, err = s.services.Applications.ApplicationByWallet(ctx.Context, req.Wallet)
	default:
		return nil, RpcErrorInvalidParams("Missing field 'id' or 'wallet'")
	}
	if err != nil {
		return nil, s.applicationError("get", err)
	}
	return map[string]interface{}{"application": applicationJSON(a)}, nil
}

// companyApprove applies the platform admin's signed ActivateCompany for a
// pending application and then marks the application active. A company
// already on the ledger with the application's admin also completes the
// approval, so a retry after a failed registry write converges.
func (s *Server) companyApprove(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if s.services.Applications == nil {
		return nil, RpcErrorNotEnabled("Company registry")
	}
	var req struct {
		ApplicationID     int64  `json:"application_id"`
		LegalAgreementURL string `json:"legal_agreement_url"`
		signedRequest
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if req.LegalAgreementURL == "" {
		return nil, RpcErrorInvalidParams("Missing field 'legal_agreement_url'")
	}
	op, raw, rpcErr := req.verify()
	if rpcErr != nil {
		return nil, rpcErr
	}
	activate, ok := op.(*platform.ActivateCompany)
	if !ok {
		return nil, RpcErrorInvalidParams("Approval must carry an ActivateCompany operation")
	}

	s.approveMu.Lock()
	defer s.approveMu.Unlock()

	app, err := s.services.Applications.Application(ctx.Context, req.ApplicationID)
	if err != nil {
		return nil, s.applicationError("get", err)
	}
	if app.Status != relationaldb.StatusPending {
		return nil, NewRpcError(RpcALREADY_APPLIED, "alreadyApplied", "alreadyApplied",
			fmt.Sprintf("Company application %d is already active", app.ID))
	}
	if activate.CompanyAdmin != app.Wallet || activate.InitialShares != app.InitialShares ||
		activate.PricePerShare != app.PricePerShare {
		return nil, RpcErrorInvalidParams(fmt.Sprintf("ActivateCompany does not match company application %d", app.ID))
	}

	res, rpcErr := s.applySigned(ctx.Context, op, raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	result := engineResult(res, raw)
	if !res.Applied && !(res.Result == tx.TefALREADY_INITIALIZED && s.listedFor(activate.CompanyID, app.Wallet)) {
		result["application"] = applicationJSON(app)
		return result, nil
	}

	app, err = s.services.Applications.ActivateApplication(ctx.Context, app.ID, req.LegalAgreementURL, activate.CompanyID)
	if err != nil {
		return nil, s.applicationError("activate", err)
	}
	s.logger.Info("company application approved", "id", app.ID, "company", app.CompanyID)
	result["application"] = applicationJSON(app)
	return result, nil
}

// listedFor reports whether company companyID is on the ledger with wallet
// as its admin.
func (s *Server) listedFor(companyID uint64, wallet string) bool {
	var company entries.CompanyAccount
	found, err := state.Load(s.services.Engine.View(), keylet.Company(companyID), &company)
	return err == nil && found && address(company.Admin) == wallet
}
