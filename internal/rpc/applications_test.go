package rpc_test

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/adipundir/donatrade/internal/core/tx"
	"github.com/adipundir/donatrade/internal/core/tx/platform"
	"github.com/adipundir/donatrade/internal/core/tx/vault"
	"github.com/adipundir/donatrade/internal/crypto"
	"github.com/adipundir/donatrade/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applicationRequest(t *testing.T, body rpc.ApplicationRequest, key *crypto.KeyPair) map[string]interface{} {
	t.Helper()
	blob, err := json.Marshal(body)
	require.NoError(t, err)
	return map[string]interface{}{
		"application_blob": hex.EncodeToString(blob),
		"public_key":       hex.EncodeToString(key.PublicKey()),
		"signature":        hex.EncodeToString(key.Sign(rpc.ApplicationPayload(blob))),
	}
}

func solaris(wallet string) rpc.ApplicationRequest {
	return rpc.ApplicationRequest{
		Wallet:        wallet,
		Name:          "Solaris",
		Description:   "Community solar",
		Sector:        "Energy",
		OfferingURL:   "https://example.com/solaris/offering.pdf",
		InitialShares: 1000,
		PricePerShare: 5,
	}
}

// approval wraps a signed ActivateCompany carrying the admin's next sequence.
func (f *fixture) approval(t *testing.T, id float64, op tx.Transaction) map[string]interface{} {
	t.Helper()
	common := op.GetCommon()
	info := f.call(t, "account_info", map[string]interface{}{"account": common.Account})
	requireSuccess(t, info)
	common.SetSequence(uint32(info["sequence"].(float64)))

	req := signed(t, op, f.admin)
	req["application_id"] = id
	req["legal_agreement_url"] = "https://example.com/solaris/agreement.pdf"
	return req
}

func TestServer_CompanyApply(t *testing.T) {
	f := newFixture(t, func(s *rpc.Services) { s.Applications = s.History.(rpc.Applications) })
	acme := crypto.KeyPairFromSeed("acme")
	bob := crypto.KeyPairFromSeed("bob")

	req := applicationRequest(t, solaris(addressOf(acme)), acme)
	res := f.call(t, "company_apply", req)
	requireSuccess(t, res)
	app := res["application"].(map[string]interface{})
	assert.Equal(t, "pending", app["status"])
	assert.Equal(t, addressOf(acme), app["wallet"])
	assert.Nil(t, app["company_id"])

	// the same signed application is filed once
	requireError(t, f.call(t, "company_apply", req), "alreadyApplied")

	// only the wallet may file for itself
	requireError(t, f.call(t, "company_apply", applicationRequest(t, solaris(addressOf(acme)), bob)), "badSignature")

	forged := applicationRequest(t, solaris(addressOf(bob)), bob)
	forged["signature"] = req["signature"]
	requireError(t, f.call(t, "company_apply", forged), "badSignature")

	missing := solaris(addressOf(bob))
	missing.Sector = ""
	requireError(t, f.call(t, "company_apply", applicationRequest(t, missing, bob)), "invalidParams")

	tidal := solaris(addressOf(bob))
	tidal.Name = "Tidal"
	requireSuccess(t, f.call(t, "company_apply", applicationRequest(t, tidal, bob)))

	list := f.call(t, "company_applications", nil)
	requireSuccess(t, list)
	assert.Len(t, list["applications"], 2)

	pending := f.call(t, "company_applications", map[string]interface{}{"status": "pending"})
	assert.Len(t, pending["applications"], 2)
	requireError(t, f.call(t, "company_applications", map[string]interface{}{"status": "listed"}), "invalidParams")

	byWallet := f.call(t, "company_application", map[string]interface{}{"wallet": addressOf(bob)})
	requireSuccess(t, byWallet)
	assert.Equal(t, "Tidal", byWallet["application"].(map[string]interface{})["name"])

	byID := f.call(t, "company_application", map[string]interface{}{"id": app["id"]})
	assert.Equal(t, "Solaris", byID["application"].(map[string]interface{})["name"])

	requireError(t, f.call(t, "company_application", map[string]interface{}{"id": 99}), "entryNotFound")
	requireError(t, f.call(t, "company_application", map[string]interface{}{}), "invalidParams")
}

func TestServer_CompanyApprove(t *testing.T) {
	f := newFixture(t, func(s *rpc.Services) { s.Applications = s.History.(rpc.Applications) })
	acme := crypto.KeyPairFromSeed("acme")
	admin := addressOf(f.admin)

	requireSuccess(t, f.submit(t, platform.NewInitializeGlobalVault(admin), f.admin))
	res := f.call(t, "company_apply", applicationRequest(t, solaris(addressOf(acme)), acme))
	requireSuccess(t, res)
	id := res["application"].(map[string]interface{})["id"].(float64)

	// terms differing from the application are refused before the engine
	res = f.call(t, "company_approve", f.approval(t, id, platform.NewActivateCompany(admin, 3, addressOf(acme), 1000, 6)))
	requireError(t, res, "invalidParams")
	res = f.call(t, "company_approve", f.approval(t, id, vault.NewDeposit(admin, 1)))
	requireError(t, res, "invalidParams")
	res = f.call(t, "company_approve", f.approval(t, id+1, platform.NewActivateCompany(admin, 3, addressOf(acme), 1000, 5)))
	requireError(t, res, "entryNotFound")

	res = f.call(t, "company_approve", f.approval(t, id, platform.NewActivateCompany(admin, 3, addressOf(acme), 1000, 5)))
	requireSuccess(t, res)
	assert.Equal(t, "tesSUCCESS", res["engine_result"])
	app := res["application"].(map[string]interface{})
	assert.Equal(t, "active", app["status"])
	assert.Equal(t, float64(3), app["company_id"])
	assert.Equal(t, "https://example.com/solaris/agreement.pdf", app["legal_agreement_url"])

	company := f.call(t, "company_info", map[string]interface{}{"company_id": 3})
	requireSuccess(t, company)
	assert.Equal(t, addressOf(acme), company["company"].(map[string]interface{})["admin"])

	active := f.call(t, "company_applications", map[string]interface{}{"status": "active"})
	assert.Len(t, active["applications"], 1)

	res = f.call(t, "company_approve", f.approval(t, id, platform.NewActivateCompany(admin, 4, addressOf(acme), 1000, 5)))
	requireError(t, res, "alreadyApplied")
}

func TestServer_CompanyApproveNeedsAdmin(t *testing.T) {
	f := newFixture(t, func(s *rpc.Services) { s.Applications = s.History.(rpc.Applications) })
	acme := crypto.KeyPairFromSeed("acme")

	requireSuccess(t, f.submit(t, platform.NewInitializeGlobalVault(addressOf(f.admin)), f.admin))
	res := f.call(t, "company_apply", applicationRequest(t, solaris(addressOf(acme)), acme))
	id := res["application"].(map[string]interface{})["id"].(float64)

	// the applicant cannot activate its own listing
	op := platform.NewActivateCompany(addressOf(acme), 3, addressOf(acme), 1000, 5)
	op.SetSequence(1)
	req := signed(t, op, acme)
	req["application_id"] = id
	req["legal_agreement_url"] = "https://example.com/solaris/agreement.pdf"
	res = f.call(t, "company_approve", req)
	requireSuccess(t, res)
	assert.Equal(t, false, res["applied"])
	assert.Equal(t, "pending", res["application"].(map[string]interface{})["status"])

	requireError(t, f.call(t, "company_info", map[string]interface{}{"company_id": 3}), "entryNotFound")
}

func TestServer_CompanyRegistryDisabled(t *testing.T) {
	f := newFixture(t, nil)
	acme := crypto.KeyPairFromSeed("acme")

	requireError(t, f.call(t, "company_apply", applicationRequest(t, solaris(addressOf(acme)), acme)), "notEnabled")
	requireError(t, f.call(t, "company_applications", nil), "notEnabled")
	requireError(t, f.call(t, "company_application", map[string]interface{}{"id": 1}), "notEnabled")
	requireError(t, f.call(t, "company_approve", map[string]interface{}{"application_id": 1}), "notEnabled")
}
