package rpc

import (
	crypto "github.com/adipundir/donatrade/internal/crypto/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultReplayWindow is the number of applied blobs remembered.
const DefaultReplayWindow = 65536

// replayGuard remembers the digests of recently served signed requests.
// For submit it only answers repeats early: the signer's account sequence
// in ledger state is what refuses a replayed operation. For decrypt it is
// the whole check, and request expiry keeps the window short.
type replayGuard struct {
	seen *lru.Cache[[32]byte, struct{}]
}

func newReplayGuard(size int) *replayGuard {
	if size <= 0 {
		size = DefaultReplayWindow
	}
	cache, _ := lru.New[[32]byte, struct{}](size)
	return &replayGuard{seen: cache}
}

func blobDigest(raw []byte) [32]byte {
	return crypto.Sha512Half(raw)
}

func (g *replayGuard) Seen(digest [32]byte) bool {
	return g.seen.Contains(digest)
}

func (g *replayGuard) Remember(digest [32]byte) {
	g.seen.Add(digest, struct{}{})
}
