// Package videocodec defines the narrow boundary between the core and
// an external 2D video codec (HEVC/AVC or similar). The core only ever
// talks to this interface; no transform coding lives in this module.
package videocodec

import "github.com/vpcc-go/vpcc-core/internal/imagegen"

// Encoder compresses one image grid (occupancy, geometry or texture)
// into an opaque byte stream.
type Encoder interface {
	EncodeFrame(img *imagegen.ImageGrid) ([]byte, error)
}

// Decoder is Encoder's inverse.
type Decoder interface {
	DecodeFrame(data []byte) (*imagegen.ImageGrid, error)
}

// Codec is the combined read/write boundary handed to the orchestration
// layer.
type Codec interface {
	Encoder
	Decoder
}
