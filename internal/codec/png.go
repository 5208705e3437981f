package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// PNG color types that carry an alpha sample.
const (
	pngGrayAlpha = 4
	pngRGBA      = 6
)

// pngHasAlpha walks the chunk list up to the first IDAT. An image has alpha
// when the IHDR color type includes it or a tRNS chunk is present.
func pngHasAlpha(data []byte) (bool, error) {
	br := bufio.NewReader(bytes.NewReader(data))

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return false, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return false, errors.New("invalid PNG signature")
	}

	seenHeader := false
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		typeBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, typeBuf); err != nil {
			return false, err
		}

		switch string(typeBuf) {
		case "IHDR":
			if length < 13 {
				return false, errors.New("short IHDR chunk")
			}
			hdr := make([]byte, length)
			if _, err := io.ReadFull(br, hdr); err != nil {
				return false, err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return false, err
			}
			seenHeader = true
			if ct := hdr[9]; ct == pngGrayAlpha || ct == pngRGBA {
				return true, nil
			}
			continue
		case "tRNS":
			return true, nil
		case "IDAT", "IEND":
			if !seenHeader {
				return false, errors.New("missing IHDR chunk")
			}
			return false, nil
		}

		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return false, err
		}
	}
}
