package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireTxSuccess asserts that an operation result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected operation success, got %s: %s", result.Code, result.Message)
	require.Equal(t, tesSUCCESS, result.Code,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that an operation failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"Expected operation failure with code %s, but operation succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireVaultBalance asserts the decrypted cash balance of an account.
func RequireVaultBalance(t *testing.T, env *TestEnv, acc *Account, expected uint64) {
	t.Helper()
	actual := env.VaultBalance(acc)
	require.Equal(t, expected, actual,
		"Vault balance mismatch for %s: expected %d, got %d", acc.Name, expected, actual)
}

// RequirePosition asserts the decrypted share count of an account.
func RequirePosition(t *testing.T, env *TestEnv, acc *Account, companyID, expected uint64) {
	t.Helper()
	actual := env.Shares(acc, companyID)
	require.Equal(t, expected, actual,
		"Position mismatch for %s in company %d: expected %d, got %d", acc.Name, companyID, expected, actual)
}

// RequireSharesAvailable asserts a company's public inventory.
func RequireSharesAvailable(t *testing.T, env *TestEnv, companyID, expected uint64) {
	t.Helper()
	actual := env.Company(companyID).SharesAvailable
	require.Equal(t, expected, actual,
		"Shares available mismatch for company %d: expected %d, got %d", companyID, expected, actual)
}

// RequireRevenue asserts the decrypted revenue of a company.
func RequireRevenue(t *testing.T, env *TestEnv, companyID, expected uint64) {
	t.Helper()
	actual := env.Revenue(companyID)
	require.Equal(t, expected, actual,
		"Revenue mismatch for company %d: expected %d, got %d", companyID, expected, actual)
}

// RequireTokens asserts the custody token balance of an account.
func RequireTokens(t *testing.T, env *TestEnv, acc *Account, expected uint64) {
	t.Helper()
	actual := env.Tokens(acc)
	require.Equal(t, expected, actual,
		"Token balance mismatch for %s: expected %d, got %d", acc.Name, expected, actual)
}

// RequireUnchanged asserts the ledger matches an earlier snapshot.
func RequireUnchanged(t *testing.T, env *TestEnv, before map[[32]byte]string) {
	t.Helper()
	require.Equal(t, before, env.Snapshot(), "Ledger changed after a failed operation")
}
