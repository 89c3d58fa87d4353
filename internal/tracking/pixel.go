package tracking

import "encoding/base64"

// pixelPNGBase64 is the smallest valid 1x1 transparent PNG. The open
// endpoint returns it for every request so email clients that fetch the
// image never see broken-image behavior, regardless of what happened on
// the recording side.
const pixelPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

// PixelPNG holds the transparent tracking pixel bytes.
var PixelPNG = mustDecodePixel()

func mustDecodePixel() []byte {
	b, err := base64.StdEncoding.DecodeString(pixelPNGBase64)
	if err != nil {
		panic("tracking: invalid pixel constant: " + err.Error())
	}
	return b
}
