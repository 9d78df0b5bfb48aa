// Package snapshot exports and imports the committed ledger state as an
// LZ4 compressed stream.
//
// Stream layout, inside a single LZ4 frame:
//
//	magic "DNTS" | version u8
//	repeated: tag 0x01 | key [32] | uvarint len | data
//	tag 0x00 | count u64 BE | digest [32]
//
// The digest is SHA-512Half over every key and data in stream order.
package snapshot

import (
	"bufio"
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/adipundir/donatrade/internal/core/ledger/state"
	"github.com/pierrec/lz4"
)

const (
	version byte = 1

	tagEnd   byte = 0x00
	tagEntry byte = 0x01

	// maxEntrySize bounds a single entry when importing.
	maxEntrySize = 1 << 20

	// importBatch is the number of entries committed per batch on import.
	importBatch = 512
)

var magic = []byte("DNTS")

var (
	ErrBadMagic       = errors.New("snapshot: bad magic")
	ErrBadVersion     = errors.New("snapshot: unsupported version")
	ErrDigestMismatch = errors.New("snapshot: digest mismatch")
	ErrCountMismatch  = errors.New("snapshot: entry count mismatch")
	ErrEntryTooLarge  = errors.New("snapshot: entry too large")
	ErrStoreNotEmpty  = errors.New("snapshot: target store is not empty")
	ErrUnexpectedTag  = errors.New("snapshot: unexpected record tag")
)

// Source is the state a snapshot is taken from.
type Source interface {
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// Target is the state a snapshot is restored into.
type Target interface {
	Source
	state.Committer
}

// Summary describes a written or read snapshot.
type Summary struct {
	Entries uint64
	Digest  [32]byte
}

type digester struct {
	h hash.Hash
}

func newDigester() *digester {
	return &digester{h: sha512.New()}
}

func (d *digester) add(key [32]byte, data []byte) {
	d.h.Write(key[:])
	d.h.Write(data)
}

func (d *digester) sum() [32]byte {
	var out [32]byte
	copy(out[:], d.h.Sum(nil)[:32])
	return out
}

// Export streams every entry of src to w.
func Export(w io.Writer, src Source) (Summary, error) {
	zw := lz4.NewWriter(w)
	bw := bufio.NewWriter(zw)

	if _, err := bw.Write(append(append([]byte{}, magic...), version)); err != nil {
		return Summary{}, err
	}

	var (
		sum    Summary
		d      = newDigester()
		werr   error
		lenBuf [binary.MaxVarintLen64]byte
	)
	err := src.ForEach(func(key [32]byte, data []byte) bool {
		if werr = bw.WriteByte(tagEntry); werr != nil {
			return false
		}
		if _, werr = bw.Write(key[:]); werr != nil {
			return false
		}
		n := binary.PutUvarint(lenBuf[:], uint64(len(data)))
		if _, werr = bw.Write(lenBuf[:n]); werr != nil {
			return false
		}
		if _, werr = bw.Write(data); werr != nil {
			return false
		}
		d.add(key, data)
		sum.Entries++
		return true
	})
	if err != nil {
		return Summary{}, fmt.Errorf("iterate state: %w", err)
	}
	if werr != nil {
		return Summary{}, fmt.Errorf("write entry: %w", werr)
	}

	sum.Digest = d.sum()
	trailer := make([]byte, 1+8+32)
	trailer[0] = tagEnd
	binary.BigEndian.PutUint64(trailer[1:9], sum.Entries)
	copy(trailer[9:], sum.Digest[:])
	if _, err := bw.Write(trailer); err != nil {
		return Summary{}, err
	}
	if err := bw.Flush(); err != nil {
		return Summary{}, err
	}
	if err := zw.Close(); err != nil {
		return Summary{}, fmt.Errorf("close lz4 stream: %w", err)
	}
	return sum, nil
}

// Read decodes a snapshot and calls fn for each entry. The count and
// digest are verified once the trailer is reached; callers that must not
// act on a corrupt stream should buffer until Read returns.
func Read(r io.Reader, fn func(key [32]byte, data []byte) error) (Summary, error) {
	br := bufio.NewReader(lz4.NewReader(r))

	head := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(br, head); err != nil {
		return Summary{}, fmt.Errorf("read header: %w", err)
	}
	if !bytes.Equal(head[:len(magic)], magic) {
		return Summary{}, ErrBadMagic
	}
	if head[len(magic)] != version {
		return Summary{}, fmt.Errorf("%w: %d", ErrBadVersion, head[len(magic)])
	}

	var (
		count uint64
		d     = newDigester()
	)
	for {
		tag, err := br.ReadByte()
		if err != nil {
			return Summary{}, fmt.Errorf("read tag: %w", err)
		}
		switch tag {
		case tagEntry:
			var key [32]byte
			if _, err := io.ReadFull(br, key[:]); err != nil {
				return Summary{}, fmt.Errorf("read key: %w", err)
			}
			size, err := binary.ReadUvarint(br)
			if err != nil {
				return Summary{}, fmt.Errorf("read length: %w", err)
			}
			if size > maxEntrySize {
				return Summary{}, ErrEntryTooLarge
			}
			data := make([]byte, size)
			if _, err := io.ReadFull(br, data); err != nil {
				return Summary{}, fmt.Errorf("read data: %w", err)
			}
			d.add(key, data)
			count++
			if err := fn(key, data); err != nil {
				return Summary{}, err
			}
		case tagEnd:
			trailer := make([]byte, 8+32)
			if _, err := io.ReadFull(br, trailer); err != nil {
				return Summary{}, fmt.Errorf("read trailer: %w", err)
			}
			sum := Summary{Entries: count, Digest: d.sum()}
			if binary.BigEndian.Uint64(trailer[:8]) != count {
				return Summary{}, ErrCountMismatch
			}
			if !bytes.Equal(trailer[8:], sum.Digest[:]) {
				return Summary{}, ErrDigestMismatch
			}
			return sum, nil
		default:
			return Summary{}, fmt.Errorf("%w: 0x%02x", ErrUnexpectedTag, tag)
		}
	}
}

// Import restores a snapshot into an empty target. Nothing is written
// unless the whole stream verifies.
func Import(r io.Reader, dst Target) (Summary, error) {
	empty := true
	if err := dst.ForEach(func([32]byte, []byte) bool {
		empty = false
		return false
	}); err != nil {
		return Summary{}, fmt.Errorf("inspect target: %w", err)
	}
	if !empty {
		return Summary{}, ErrStoreNotEmpty
	}

	var changes []state.Change
	sum, err := Read(r, func(key [32]byte, data []byte) error {
		changes = append(changes, state.Change{Key: key, Data: data})
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	for start := 0; start < len(changes); start += importBatch {
		end := start + importBatch
		if end > len(changes) {
			end = len(changes)
		}
		if err := dst.Commit(changes[start:end]); err != nil {
			return Summary{}, fmt.Errorf("commit entries %d-%d: %w", start, end, err)
		}
	}
	return sum, nil
}
