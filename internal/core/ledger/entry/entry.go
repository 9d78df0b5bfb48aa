package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	TypeGlobalVault   Type = 0x0047 // Platform custody authority (singleton)
	TypeAccountRoot   Type = 0x0061 // Signer sequence
	TypeCompany       Type = 0x0063 // Company share inventory
	TypeOffer         Type = 0x006f // Escrowed peer offer
	TypePosition      Type = 0x0070 // Investor share position
	TypeTokenAccount  Type = 0x0074 // Custody token balance
	TypeInvestorVault Type = 0x0076 // Investor cash vault
)

// String returns the string representation of the entry type
func (t Type) String() string {
	switch t {
	case TypeGlobalVault:
		return "GlobalVault"
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeCompany:
		return "Company"
	case TypeOffer:
		return "Offer"
	case TypePosition:
		return "Position"
	case TypeTokenAccount:
		return "TokenAccount"
	case TypeInvestorVault:
		return "InvestorVault"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(t))
	}
}

// IsValid returns true if the type is a known ledger entry type
func (t Type) IsValid() bool {
	switch t {
	case TypeGlobalVault, TypeAccountRoot, TypeCompany, TypeOffer, TypePosition,
		TypeTokenAccount, TypeInvestorVault:
		return true
	}
	return false
}
