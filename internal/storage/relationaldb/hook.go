package relationaldb

import (
	"context"
	"encoding/json"

	"github.com/adipundir/donatrade/internal/core/tx"
)

// EntryFromResult converts an engine outcome to a journal entry.
func EntryFromResult(res tx.ApplyResult) *Entry {
	e := &Entry{
		Type:       res.Type.String(),
		Account:    res.Account,
		Result:     res.Result.String(),
		ResultCode: int(res.Result),
		Applied:    res.Applied,
		Message:    res.Message,
	}
	if res.Hash != ([32]byte{}) {
		e.Hash = res.HashHex()
	}
	if res.Metadata != nil {
		if raw, err := json.Marshal(res.Metadata); err == nil {
			e.Metadata = string(raw)
		}
	}
	return e
}

// Hook returns an engine commit hook that journals every outcome. Write
// failures are logged and never affect the operation.
func (j *Journal) Hook() tx.CommitHook {
	return func(_ tx.Transaction, res tx.ApplyResult) {
		e := EntryFromResult(res)
		if err := j.Record(context.Background(), e); err != nil {
			j.logger.Error("failed to journal operation",
				"type", e.Type, "account", e.Account, "hash", e.Hash, "error", err)
		}
	}
}
