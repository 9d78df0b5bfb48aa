package tx

// Type represents a ledger operation type
type Type uint16

// Operation types
const (
	TypeInvalid               Type = 0
	TypeInitializeGlobalVault Type = 1
	TypeActivateCompany       Type = 2
	TypeDeposit               Type = 3
	TypeWithdraw              Type = 4
	TypeBuyShares             Type = 5
	TypeSellShares            Type = 6
	TypeUpdateOffering        Type = 7
	TypeTransferShares        Type = 8
	TypeWithdrawCompanyFunds  Type = 9
	TypeCreateOffer           Type = 10
	TypeExecuteTrade          Type = 11
	TypeAuthorizeDecryption   Type = 12
)

var typeNames = map[Type]string{
	TypeInitializeGlobalVault: "InitializeGlobalVault",
	TypeActivateCompany:       "ActivateCompany",
	TypeDeposit:               "Deposit",
	TypeWithdraw:              "Withdraw",
	TypeBuyShares:             "BuyShares",
	TypeSellShares:            "SellShares",
	TypeUpdateOffering:        "UpdateOffering",
	TypeTransferShares:        "TransferShares",
	TypeWithdrawCompanyFunds:  "WithdrawCompanyFunds",
	TypeCreateOffer:           "CreateOffer",
	TypeExecuteTrade:          "ExecuteTrade",
	TypeAuthorizeDecryption:   "AuthorizeDecryption",
}

// String returns the operation name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// TypeFromName returns the type for an operation name
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeInvalid, false
}
