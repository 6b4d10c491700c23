package videocodec

import (
	"encoding/binary"
	"fmt"

	"github.com/vpcc-go/vpcc-core/internal/imagegen"
)

// NopCodec serializes an ImageGrid verbatim (width/height/channels/
// bitDepth header followed by the raw uint16 samples). It lets the
// encoder/decoder orchestration and their tests exercise the full
// EncodeFrame/DecodeFrame boundary without a real video codec in the
// loop.
type NopCodec struct{}

// EncodeFrame implements Encoder.
func (NopCodec) EncodeFrame(img *imagegen.ImageGrid) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("videocodec: nil image grid")
	}
	header := make([]byte, 16)
	binary.BigEndian.PutUint32(header[0:4], uint32(img.Width))
	binary.BigEndian.PutUint32(header[4:8], uint32(img.Height))
	binary.BigEndian.PutUint32(header[8:12], uint32(img.Channels))
	binary.BigEndian.PutUint32(header[12:16], uint32(img.BitDepth))

	out := make([]byte, 16+2*len(img.Data))
	copy(out, header)
	for i, v := range img.Data {
		binary.BigEndian.PutUint16(out[16+2*i:18+2*i], v)
	}
	return out, nil
}

// DecodeFrame implements Decoder.
func (NopCodec) DecodeFrame(data []byte) (*imagegen.ImageGrid, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("videocodec: truncated header")
	}
	width := int(binary.BigEndian.Uint32(data[0:4]))
	height := int(binary.BigEndian.Uint32(data[4:8]))
	channels := int(binary.BigEndian.Uint32(data[8:12]))
	bitDepth := int(binary.BigEndian.Uint32(data[12:16]))

	want := 16 + 2*width*height*channels
	if len(data) != want {
		return nil, fmt.Errorf("videocodec: payload length %d, want %d", len(data), want)
	}

	img := imagegen.NewImageGrid(width, height, channels, bitDepth)
	for i := range img.Data {
		img.Data[i] = binary.BigEndian.Uint16(data[16+2*i : 18+2*i])
	}
	return img, nil
}
