package texture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const (
	// mipMagicCopy marks an uncompressed mip body.
	mipMagicCopy = "COPY"
	// mipMagicLZ4 marks an LZ4 chunk-stream mip body.
	mipMagicLZ4 = "LZ4 "

	// chunkSize is the chunk granularity of LZ4 mip bodies.
	chunkSize = 64 * 1024
)

// mipBody is one mip level's stored body.
type mipBody struct {
	Magic            string
	Size             int32
	UncompressedSize int32
	Data             []byte
}

type mipTableEntry struct {
	Magic string
	Size  int32
}

// readMipTable reads the per-mip block table that follows the header.
// LZ4 bodies are a Gen2 feature; older generations only carry COPY.
func readMipTable(r io.Reader, h *Header) ([]mipTableEntry, error) {
	entries := make([]mipTableEntry, 0, h.MipCount)
	for i := uint32(0); i < h.MipCount; i++ {
		var raw [8]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return nil, fmt.Errorf("%w: mip %d table entry: %v", ErrTruncatedData, i, err)
		}

		magic := string(raw[0:4])
		size := int32(binary.LittleEndian.Uint32(raw[4:8]))

		switch magic {
		case mipMagicCopy:
		case mipMagicLZ4:
			if h.Generation < Gen2 {
				return nil, fmt.Errorf("%w: LZ4 body in generation %d", ErrUnsupportedVariant, h.Generation)
			}
		default:
			return nil, fmt.Errorf("%w: mip %d: %q", ErrMipTableMagic, i, magic)
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: mip %d: %d", ErrMipTableSize, i, size)
		}

		entries = append(entries, mipTableEntry{Magic: magic, Size: size})
	}

	return entries, nil
}

// readMipBody reads one mip body of the declared size.
func readMipBody(r io.Reader, e mipTableEntry) (*mipBody, error) {
	data := make([]byte, e.Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: %s body: %v", ErrTruncatedData, e.Magic, err)
	}
	return &mipBody{Magic: e.Magic, Size: e.Size, Data: data}, nil
}

// compressMip compresses a raw mip payload into an LZ4 chunk stream or
// falls back to COPY when compression does not pay off.
func compressMip(data []byte) (*mipBody, error) {
	if len(data) > maxInt32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(data))
	}
	uncompressedSize, err := i32FromInt(len(data))
	if err != nil {
		return nil, err
	}

	if len(data) < 1024 {
		return &mipBody{Magic: mipMagicCopy, Size: uncompressedSize, Data: data}, nil
	}

	var chunkStream bytes.Buffer
	compressBuf := make([]byte, lz4.CompressBlockBound(chunkSize))

	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		srcChunk := data[i:end]
		isLast := end == len(data)

		cn, err := lz4.CompressBlockHC(srcChunk, compressBuf, 0, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Compress, err)
		}
		if cn == 0 || float64(cn) > float64(len(srcChunk))*0.85 {
			return &mipBody{Magic: mipMagicCopy, Size: uncompressedSize, Data: data}, nil
		}
		if cn > 0x7FFFFF {
			return nil, fmt.Errorf("%w: %d", ErrChunkTooLarge, cn)
		}

		chunkStream.WriteByte(byte(cn))
		chunkStream.WriteByte(byte(cn >> 8))
		chunkStream.WriteByte(byte(cn >> 16))
		if isLast {
			chunkStream.WriteByte(0x80)
		} else {
			chunkStream.WriteByte(0x00)
		}
		chunkStream.Write(compressBuf[:cn])
	}

	compressedData := chunkStream.Bytes()
	total := 4 + len(compressedData)
	if total > maxInt32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCompressedTooLarge, total)
	}
	if float64(total) > float64(len(data))*0.85 {
		return &mipBody{Magic: mipMagicCopy, Size: uncompressedSize, Data: data}, nil
	}

	size, err := i32FromInt(total)
	if err != nil {
		return nil, err
	}

	return &mipBody{
		Magic:            mipMagicLZ4,
		Size:             size,
		UncompressedSize: uncompressedSize,
		Data:             compressedData,
	}, nil
}

// writeMipBody writes the body payload (no table entry).
func writeMipBody(w io.Writer, body *mipBody) error {
	if body.Magic == mipMagicLZ4 {
		if err := binary.Write(w, binary.LittleEndian, body.UncompressedSize); err != nil {
			return err
		}
	}
	_, err := w.Write(body.Data)
	return err
}

// decompressMip inflates a mip body into its raw payload.
// expectedSize < 0 skips the length check (variable-length families).
func decompressMip(body *mipBody, expectedSize int) ([]byte, error) {
	if body.Magic == mipMagicCopy {
		if expectedSize >= 0 && len(body.Data) != expectedSize {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrCopySizeMismatch, expectedSize, len(body.Data))
		}
		out := make([]byte, len(body.Data))
		copy(out, body.Data)
		return out, nil
	}
	if body.Magic != mipMagicLZ4 {
		return nil, fmt.Errorf("%w: %q", ErrMipTableMagic, body.Magic)
	}

	if len(body.Data) < 4 {
		return nil, fmt.Errorf("%w: no uncompressed size", ErrChunkStreamTruncated)
	}
	targetSize := int(binary.LittleEndian.Uint32(body.Data[:4]))
	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: target size %d", ErrInvalidChunkSize, targetSize)
	}
	if expectedSize >= 0 && targetSize != expectedSize {
		return nil, fmt.Errorf("%w: expected %d, declared %d", ErrDecodedSizeMismatch, expectedSize, targetSize)
	}

	const dictCap = 64 * 1024
	dict := make([]byte, dictCap)
	dictSize := 0

	target := make([]byte, targetSize)
	outIdx := 0

	r := bytes.NewReader(body.Data[4:])

	for {
		if r.Len() < 4 {
			return nil, fmt.Errorf("%w: need 4 bytes header, have %d", ErrChunkStreamTruncated, r.Len())
		}

		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkStreamTruncated, err)
		}

		cSize := int(hdr[0]) | (int(hdr[1]) << 8) | (int(hdr[2]) << 16)
		flags := hdr[3]
		if (flags &^ 0x80) != 0 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownChunkFlags, flags)
		}
		if cSize <= 0 || cSize > r.Len() {
			return nil, fmt.Errorf("%w: %d (remaining %d)", ErrInvalidChunkSize, cSize, r.Len())
		}

		compressed := make([]byte, cSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkStreamTruncated, err)
		}

		remaining := targetSize - outIdx
		if remaining <= 0 {
			return nil, ErrDecodeOverrun
		}
		want := chunkSize
		if want > remaining {
			want = remaining
		}
		dst := target[outIdx : outIdx+want]

		n, err := lz4.UncompressBlockWithDict(compressed, dst, dict[:dictSize])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}

		outIdx += n

		decoded := target[outIdx-n : outIdx]
		if len(decoded) >= dictCap {
			copy(dict, decoded[len(decoded)-dictCap:])
			dictSize = dictCap
		} else {
			avail := dictCap - dictSize
			if len(decoded) <= avail {
				copy(dict[dictSize:], decoded)
				dictSize += len(decoded)
			} else {
				shift := len(decoded) - avail
				copy(dict, dict[shift:dictSize])
				copy(dict[dictCap-len(decoded):], decoded)
				dictSize = dictCap
			}
		}

		if (flags & 0x80) != 0 {
			break
		}
	}

	if outIdx != targetSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSizeMismatch, targetSize, outIdx)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left after decode", ErrDecodedSizeMismatch, r.Len())
	}

	return target, nil
}
