package archive

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
)

// Index file layout (little-endian):
//
//	magic   "MIDX"
//	version u16, pad u16
//	count   u32
//	count entries of 52 bytes:
//	    assetID u32, tier u8, encoding u8, part u16,
//	    rawSize u32, storedSize u32, digest [32]byte, pad u32
//	crc32   u32 (IEEE, over magic..entries)
const (
	indexMagic     = "MIDX"
	indexVersion   = 1
	indexEntrySize = 52
	indexHeadSize  = 12
)

// Blob encodings.
const (
	encodingRaw  uint8 = 0
	encodingZstd uint8 = 1
)

type indexEntry struct {
	AssetID    uint32
	Tier       Tier
	Encoding   uint8
	Part       uint16
	RawSize    uint32
	StoredSize uint32
	Digest     [32]byte
}

func (e *indexEntry) marshal(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], e.AssetID)
	dst[4] = uint8(e.Tier)
	dst[5] = e.Encoding
	binary.LittleEndian.PutUint16(dst[6:8], e.Part)
	binary.LittleEndian.PutUint32(dst[8:12], e.RawSize)
	binary.LittleEndian.PutUint32(dst[12:16], e.StoredSize)
	copy(dst[16:48], e.Digest[:])
	binary.LittleEndian.PutUint32(dst[48:52], 0)
}

func unmarshalIndexEntry(src []byte) indexEntry {
	var e indexEntry
	e.AssetID = binary.LittleEndian.Uint32(src[0:4])
	e.Tier = Tier(src[4])
	e.Encoding = src[5]
	e.Part = binary.LittleEndian.Uint16(src[6:8])
	e.RawSize = binary.LittleEndian.Uint32(src[8:12])
	e.StoredSize = binary.LittleEndian.Uint32(src[12:16])
	copy(e.Digest[:], src[16:48])
	return e
}

// readIndexFile parses and checksums one index file.
func readIndexFile(path string) ([]indexEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorruptIndex, path, err)
	}
	if len(raw) < indexHeadSize+4 {
		return nil, fmt.Errorf("%w: %q: %d bytes", ErrCorruptIndex, path, len(raw))
	}
	if string(raw[0:4]) != indexMagic {
		return nil, fmt.Errorf("%w: %q: bad magic %q", ErrCorruptIndex, path, raw[0:4])
	}
	if v := binary.LittleEndian.Uint16(raw[4:6]); v != indexVersion {
		return nil, fmt.Errorf("%w: %q: version %d", ErrCorruptIndex, path, v)
	}

	count := binary.LittleEndian.Uint32(raw[8:12])
	want := indexHeadSize + int(count)*indexEntrySize + 4
	if len(raw) != want {
		return nil, fmt.Errorf("%w: %q: %d bytes for %d entries, want %d", ErrCorruptIndex, path, len(raw), count, want)
	}

	body := raw[:len(raw)-4]
	sum := binary.LittleEndian.Uint32(raw[len(raw)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, fmt.Errorf("%w: %q: checksum mismatch", ErrCorruptIndex, path)
	}

	entries := make([]indexEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		off := indexHeadSize + int(i)*indexEntrySize
		e := unmarshalIndexEntry(body[off : off+indexEntrySize])
		if e.Encoding > encodingZstd {
			return nil, fmt.Errorf("%w: %q: entry %d: encoding %d", ErrCorruptIndex, path, i, e.Encoding)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// marshalIndex serializes entries into a checksummed index file image.
func marshalIndex(entries []indexEntry) []byte {
	out := make([]byte, indexHeadSize+len(entries)*indexEntrySize+4)
	copy(out[0:4], indexMagic)
	binary.LittleEndian.PutUint16(out[4:6], indexVersion)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(entries)))
	for i := range entries {
		entries[i].marshal(out[indexHeadSize+i*indexEntrySize:])
	}
	body := out[:len(out)-4]
	binary.LittleEndian.PutUint32(out[len(out)-4:], crc32.ChecksumIEEE(body))
	return out
}
