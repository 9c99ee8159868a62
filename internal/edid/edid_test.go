package edid

import (
	"bytes"
	"testing"
)

// decodeTiming unpacks the mode fields of the preferred timing descriptor.
func decodeTiming(block []byte) (width, height, clockKHz int) {
	dtd := block[preferredTimingOffset:]
	clockKHz = (int(dtd[0]) | int(dtd[1])<<8) * 10
	width = int(dtd[2]) | (int(dtd[4]&0x0F) << 8)
	height = int(dtd[5]) | (int(dtd[7]&0x0F) << 8)
	return width, height, clockKHz
}

func TestSynthesizeChecksum(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		refreshRate int
	}{
		{"1080p60", 1920, 1080, 60},
		{"1440p120", 2560, 1440, 120},
		{"4k60", 3840, 2160, 60},
		{"odd mode", 1366, 768, 59},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := Synthesize(tt.width, tt.height, tt.refreshRate, false)
			if len(block) != Length {
				t.Fatalf("len = %d, want %d", len(block), Length)
			}

			sum := 0
			for _, b := range block {
				sum += int(b)
			}
			if sum%256 != 0 {
				t.Errorf("block sum %% 256 = %d, want 0", sum%256)
			}
		})
	}
}

func TestSynthesizeTimingRoundTrip(t *testing.T) {
	tests := []struct {
		width       int
		height      int
		refreshRate int
	}{
		{1920, 1080, 60},
		{2560, 1440, 120},
		{3840, 2160, 60},
	}

	for _, tt := range tests {
		block := Synthesize(tt.width, tt.height, tt.refreshRate, false)
		width, height, clockKHz := decodeTiming(block)

		if width != tt.width || height != tt.height {
			t.Errorf("decoded %dx%d, want %dx%d", width, height, tt.width, tt.height)
		}

		hBlank := tt.width / 5
		wantClock := ((tt.width + hBlank) * (tt.height + 30) * tt.refreshRate) / 1000
		// Stored in 10 kHz units, so up to 10 kHz is lost to truncation
		if clockKHz > wantClock || wantClock-clockKHz >= 10 {
			t.Errorf("decoded clock %d kHz, want within 10 of %d", clockKHz, wantClock)
		}
	}
}

func TestSynthesize1080pPixelClockBytes(t *testing.T) {
	block := Synthesize(1920, 1080, 60, false)

	// (1920+384)*(1080+30)*60/1000 = 153446 kHz, 15344 in 10 kHz units
	if block[54] != 0xF0 || block[55] != 0x3B {
		t.Errorf("pixel clock bytes = %02x %02x, want f0 3b", block[54], block[55])
	}
}

func TestSynthesizeHeaderAndDescriptors(t *testing.T) {
	block := Synthesize(1920, 1080, 60, false)

	wantHeader := []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	if !bytes.Equal(block[:8], wantHeader) {
		t.Errorf("header = % x", block[:8])
	}

	// Display name descriptor carries the fixed product name
	if block[nameOffset+3] != 0xFC {
		t.Errorf("name descriptor tag = %02x, want fc", block[nameOffset+3])
	}
	if got := string(block[nameOffset+5 : nameOffset+16]); got != "Displayd VD" {
		t.Errorf("display name = %q", got)
	}

	if block[rangeLimitsOffset+3] != 0xFD {
		t.Errorf("range limits tag = %02x, want fd", block[rangeLimitsOffset+3])
	}
	if block[paddingOffset+3] != 0x10 {
		t.Errorf("dummy descriptor tag = %02x, want 10", block[paddingOffset+3])
	}

	// No extension blocks
	if block[126] != 0x00 {
		t.Errorf("extension flag = %02x, want 00", block[126])
	}
}

func TestSynthesizeHDRDoesNotChangeLayout(t *testing.T) {
	plain := Synthesize(1920, 1080, 60, false)
	hdr := Synthesize(1920, 1080, 60, true)

	// HDR is accepted but no extension block is emitted yet
	if !bytes.Equal(plain, hdr) {
		t.Error("HDR flag changed the block, expected identical output")
	}
}
