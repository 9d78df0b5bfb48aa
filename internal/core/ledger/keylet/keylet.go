package keylet

import (
	"encoding/binary"

	"github.com/adipundir/donatrade/internal/core/ledger/entry"
	crypto "github.com/adipundir/donatrade/internal/crypto/common"
)

// Space identifiers for keylet generation. Each account kind hashes under
// its own tag so two different kinds never resolve to the same key.
const (
	spaceVaultAuthority uint16 = 'A' // Platform vault authority (singleton)
	spaceAccount        uint16 = 'a' // Signer account root
	spaceCompany        uint16 = 'c' // Company account
	spaceInvestorVault  uint16 = 'v' // Investor cash vault
	spacePosition       uint16 = 'p' // Investor position in a company
	spaceOffer          uint16 = 'o' // Peer offer
	spaceToken          uint16 = 't' // Custody token account
)

// VaultAuthoritySeed is the seed the platform vault authority identity is
// derived from.
var VaultAuthoritySeed = []byte("vault_authority")

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// GlobalVault returns the keylet for the singleton platform vault entry.
func GlobalVault() Keylet {
	return Keylet{
		Type: entry.TypeGlobalVault,
		Key:  indexHash(spaceVaultAuthority),
	}
}

// Account returns the keylet for a signer's account root.
func Account(id [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeAccountRoot,
		Key:  indexHash(spaceAccount, id[:]),
	}
}

// Company returns the keylet for a company account.
func Company(companyID uint64) Keylet {
	return Keylet{
		Type: entry.TypeCompany,
		Key:  indexHash(spaceCompany, uint64Bytes(companyID)),
	}
}

// InvestorVault returns the keylet for an investor's cash vault.
func InvestorVault(owner [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeInvestorVault,
		Key:  indexHash(spaceInvestorVault, owner[:]),
	}
}

// Position returns the keylet for an investor's position in a company.
func Position(companyID uint64, owner [20]byte) Keylet {
	return Keylet{
		Type: entry.TypePosition,
		Key:  indexHash(spacePosition, uint64Bytes(companyID), owner[:]),
	}
}

// Offer returns the keylet for a seller's offer.
func Offer(seller [20]byte, offerID uint64) Keylet {
	return Keylet{
		Type: entry.TypeOffer,
		Key:  indexHash(spaceOffer, seller[:], uint64Bytes(offerID)),
	}
}

// TokenAccount returns the keylet for the custody token account of owner.
func TokenAccount(owner [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeTokenAccount,
		Key:  indexHash(spaceToken, owner[:]),
	}
}
