package codec

import (
	"encoding/binary"
	"errors"
)

// TIFF tags read by tiffHasAlpha.
const (
	tiffTagExtraSamples = 338
	tiffTypeShort       = 3
)

// ExtraSamples values that mean the extra channel is alpha.
const (
	tiffAssociatedAlpha   = 1
	tiffUnassociatedAlpha = 2
)

// tiffHasAlpha reads the first IFD. An image has alpha when its ExtraSamples
// tag marks the first extra channel as associated or unassociated alpha.
func tiffHasAlpha(data []byte) (bool, error) {
	if len(data) < 8 {
		return false, errors.New("short TIFF header")
	}

	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return false, errors.New("invalid TIFF byte order")
	}

	ifd := int(order.Uint32(data[4:8]))
	if ifd < 8 || ifd+2 > len(data) {
		return false, errors.New("TIFF IFD offset out of range")
	}
	count := int(order.Uint16(data[ifd : ifd+2]))
	entries := data[ifd+2:]
	if len(entries) < count*12 {
		return false, errors.New("truncated TIFF IFD")
	}

	for i := 0; i < count; i++ {
		e := entries[i*12 : i*12+12]
		if order.Uint16(e[0:2]) != tiffTagExtraSamples {
			continue
		}
		if order.Uint16(e[2:4]) != tiffTypeShort || order.Uint32(e[4:8]) == 0 {
			return false, nil
		}

		// Up to two SHORT values sit inline; more are stored at the offset.
		value := e[8:10]
		if order.Uint32(e[4:8]) > 2 {
			off := int(order.Uint32(e[8:12]))
			if off+2 > len(data) {
				return false, errors.New("TIFF ExtraSamples offset out of range")
			}
			value = data[off : off+2]
		}
		switch order.Uint16(value) {
		case tiffAssociatedAlpha, tiffUnassociatedAlpha:
			return true, nil
		}
		return false, nil
	}
	return false, nil
}
