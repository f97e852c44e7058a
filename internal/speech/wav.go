package speech

import "encoding/binary"

// wavFormat is the subset of a RIFF/WAVE fmt chunk needed to describe audio to a recognizer.
type wavFormat struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// parseWAV reads the fmt chunk of a RIFF/WAVE file. ok is false for anything else.
func parseWAV(data []byte) (wavFormat, bool) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return wavFormat{}, false
	}
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if id == "fmt " {
			if size < 16 || body+16 > len(data) {
				return wavFormat{}, false
			}
			return wavFormat{
				AudioFormat:   binary.LittleEndian.Uint16(data[body:]),
				Channels:      binary.LittleEndian.Uint16(data[body+2:]),
				SampleRate:    binary.LittleEndian.Uint32(data[body+4:]),
				BitsPerSample: binary.LittleEndian.Uint16(data[body+14:]),
			}, true
		}
		// chunks are padded to an even size
		off = body + size + size%2
	}
	return wavFormat{}, false
}
