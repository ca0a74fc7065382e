package oggopus

import "fmt"

// configSamples maps a TOC configuration number to the 48kHz sample
// count of one frame in that configuration.
var configSamples = [32]int{
	480, 960, 1920, 2880, // SILK narrowband
	480, 960, 1920, 2880, // SILK medium band
	480, 960, 1920, 2880, // SILK wideband
	480, 960, // hybrid super-wideband
	480, 960, // hybrid fullband
	120, 240, 480, 960, // CELT narrowband
	120, 240, 480, 960, // CELT wideband
	120, 240, 480, 960, // CELT super-wideband
	120, 240, 480, 960, // CELT fullband
}

// packetSamples returns the 48kHz sample count a packet decodes to,
// derived from its TOC byte. Empty packets count for nothing.
func packetSamples(packet []byte) (int, error) {
	if len(packet) == 0 {
		return 0, nil
	}

	toc := packet[0]
	perFrame := configSamples[toc>>3]
	switch toc & 0x03 {
	case 0:
		return perFrame, nil
	case 1, 2:
		return 2 * perFrame, nil
	default:
		if len(packet) < 2 {
			return 0, fmt.Errorf("%w: code 3 packet without a frame count", ErrBadPacket)
		}
		return int(packet[1]&0x3F) * perFrame, nil
	}
}
