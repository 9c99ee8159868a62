// Package edid synthesizes EDID blocks for the virtual display. The block
// is handed to the kernel on connect and decides what mode the desktop
// detects, so the preferred timing descriptor is rewritten per request
// while the rest stays a fixed template.
package edid

import (
	"github.com/magne4000/displayd/internal/logging"
)

// Length is the size of a base EDID block in bytes.
const Length = 128

// Descriptor block offsets within the base block.
const (
	preferredTimingOffset = 54
	nameOffset            = 72
	rangeLimitsOffset     = 90
	paddingOffset         = 108
)

// baseTemplate is a complete EDID 1.4 block for a generic digital display.
// The preferred timing descriptor at offset 54 is overwritten per request;
// the trailing checksum byte is recomputed after every change.
var baseTemplate = [Length]byte{
	// Header
	0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00,
	// Manufacturer ID
	0x10, 0xAC,
	// Product code
	0x00, 0x00,
	// Serial number
	0x00, 0x00, 0x00, 0x00,
	// Week of manufacture
	0x01,
	// Year of manufacture (2020)
	0x1E,
	// EDID version 1.4
	0x01, 0x04,
	// Digital input, 8 bits per color
	0xA5,
	// Screen size (52cm x 32cm)
	0x34, 0x20,
	// Display gamma 2.2
	0x78,
	// Features: DPMS, preferred timing mode, sRGB
	0x3A,
	// Chromaticity coordinates
	0xEE, 0x91, 0xA3, 0x54, 0x4C, 0x99, 0x26, 0x0F, 0x50, 0x54,
	// Established timings
	0x00, 0x00, 0x00,
	// Standard timing information (8 blocks, all unused)
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	// Descriptor 1: preferred timing, rewritten by Synthesize
	0x02, 0x3A, 0x80, 0x18, 0x71, 0x38, 0x2D, 0x40,
	0x58, 0x2C, 0x45, 0x00, 0x09, 0x25, 0x21, 0x00,
	0x00, 0x1E,
	// Descriptor 2: display name
	0x00, 0x00, 0x00, 0xFC, 0x00,
	'D', 'i', 's', 'p', 'l', 'a', 'y', 'd', ' ', 'V', 'D', '\n', ' ',
	// Descriptor 3: display range limits
	0x00, 0x00, 0x00, 0xFD, 0x00,
	0x38, 0x4C, 0x1E, 0x53, 0x11, 0x00, 0x0A, 0x20, 0x20, 0x20, 0x20, 0x20, 0x20,
	// Descriptor 4: dummy
	0x00, 0x00, 0x00, 0x10, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	// Extension flag and checksum
	0x00, 0x00,
}

// Synthesize builds an EDID block advertising the requested mode as the
// preferred timing. HDR metadata would need a CTA-861 extension block and
// is not emitted; hdrEnabled is accepted so the intent reaches the log.
func Synthesize(width, height, refreshRate int, hdrEnabled bool) []byte {
	logger := logging.GetLogger("edid")

	block := make([]byte, Length)
	copy(block, baseTemplate[:])

	writeTimingDescriptor(block[preferredTimingOffset:], width, height, refreshRate)

	logger.Debug("Generated EDID with custom preferred timing",
		"width", width, "height", height, "refresh_rate", refreshRate)

	if hdrEnabled {
		logger.Debug("HDR requested but HDR EDID extension not yet implemented")
	}

	block[Length-1] = checksum(block[:Length-1])

	return block
}

// writeTimingDescriptor fills an 18-byte detailed timing descriptor using
// simplified CVT reduced-blanking values. The blanking approximations keep
// pixel clocks reasonable without a full CVT calculation.
func writeTimingDescriptor(dtd []byte, width, height, refreshRate int) {
	hBlank := width / 5
	vBlank := 30
	hSync := 32
	vSync := 4

	pixelClockKHz := ((width + hBlank) * (height + vBlank) * refreshRate) / 1000

	// Pixel clock in 10 kHz units, little endian
	dtd[0] = byte((pixelClockKHz / 10) & 0xFF)
	dtd[1] = byte(((pixelClockKHz / 10) >> 8) & 0xFF)

	// Horizontal addressable pixels and blanking
	dtd[2] = byte(width & 0xFF)
	dtd[3] = byte(hBlank & 0xFF)
	dtd[4] = byte(((width >> 8) & 0x0F) | (((hBlank >> 8) & 0x0F) << 4))

	// Vertical addressable lines and blanking
	dtd[5] = byte(height & 0xFF)
	dtd[6] = byte(vBlank & 0xFF)
	dtd[7] = byte(((height >> 8) & 0x0F) | (((vBlank >> 8) & 0x0F) << 4))

	// Sync pulse parameters
	hSyncOffset := (hBlank - hSync) / 2
	vSyncOffset := 3

	dtd[8] = byte(hSyncOffset & 0xFF)
	dtd[9] = byte(hSync & 0xFF)
	dtd[10] = byte(((vSyncOffset & 0x0F) << 4) | (vSync & 0x0F))
	dtd[11] = byte(((hSyncOffset >> 8) & 0x03) |
		(((hSync >> 8) & 0x03) << 2) |
		(((vSyncOffset >> 4) & 0x03) << 4) |
		(((vSync >> 4) & 0x03) << 6))

	// Image size (52cm x 32cm, a generic 24" 16:9 panel)
	dtd[12] = 0x20
	dtd[13] = 0x34
	dtd[14] = 0x00

	// No borders
	dtd[15] = 0x00
	dtd[16] = 0x00

	// Digital separate sync, positive polarity
	dtd[17] = 0x1E
}

// checksum returns the byte that makes the whole block sum to 0 mod 256.
func checksum(body []byte) byte {
	sum := 0
	for _, b := range body {
		sum += int(b)
	}
	return byte((256 - sum%256) % 256)
}
