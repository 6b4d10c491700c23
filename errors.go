package vpcc

import "errors"

// Sentinel errors returned by the encoder/decoder orchestration.
var (
	// ErrMalformedInput is returned when a decoded bitstream's patch
	// frame descriptor references a patch, block or map index outside
	// the bounds its own header declares.
	ErrMalformedInput = errors.New("vpcc: malformed input")

	// ErrCanvasOverflow is returned when a patch depth (encoder) or a
	// decoded geometry sample (decoder) exceeds the largest value the
	// geometry bit depth can carry.
	ErrCanvasOverflow = errors.New("vpcc: canvas overflow")

	// ErrConfigurationInvalid is returned when EncoderParameters or
	// DecoderParameters carry a value outside its valid range.
	ErrConfigurationInvalid = errors.New("vpcc: invalid configuration")

	// ErrEOMBitcountViolation is returned when enhanced-delta-depth
	// coding is enabled with a surface thickness (D1-D0 range) above the
	// 10 intermediate depths the EDD code can carry.
	ErrEOMBitcountViolation = errors.New("vpcc: eom bitcount violation")
)
