package videocodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/imagegen"
)

func TestNopCodec_RoundTrip(t *testing.T) {
	img := imagegen.NewImageGrid(4, 3, 2, 10)
	for i := range img.Data {
		img.Data[i] = uint16(i * 7 % 1024)
	}

	var c NopCodec
	data, err := c.EncodeFrame(img)
	require.NoError(t, err)

	got, err := c.DecodeFrame(data)
	require.NoError(t, err)
	require.Equal(t, img.Width, got.Width)
	require.Equal(t, img.Height, got.Height)
	require.Equal(t, img.Channels, got.Channels)
	require.Equal(t, img.BitDepth, got.BitDepth)
	require.Equal(t, img.Data, got.Data)
}

func TestNopCodec_DecodeFrame_RejectsTruncated(t *testing.T) {
	var c NopCodec
	_, err := c.DecodeFrame([]byte{1, 2, 3})
	require.Error(t, err)
}
