package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"floresya-images/internal/domain"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Deriver resizes a decoded source into a bounding box using a cover policy
// (centered crop to the box's aspect, then scale down) and re-encodes it as
// lossy WebP. Sources smaller than the box keep their original dimensions
// and are only re-encoded; nothing is ever upscaled.
type Deriver struct{}

func NewDeriver() *Deriver {
	return &Deriver{}
}

// Decode parses the original upload. WebP, PNG and JPEG decoders are
// registered.
func (d *Deriver) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return img, nil
}

// Derive produces one derivative for the given box. The caller fills in
// naming and hashing fields.
func (d *Deriver) Derive(src image.Image, bucket domain.SizeBucket, box domain.BoundingBox) (*domain.Derivative, error) {
	out := cover(src, box)

	buf := new(bytes.Buffer)
	err := webp.Encode(buf, out, &webp.Options{
		Lossless: false,
		Quality:  float32(domain.WebPQuality),
		Exact:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode derivative: %w", err)
	}

	bounds := out.Bounds()
	return &domain.Derivative{
		Bucket:   bucket,
		Data:     buf.Bytes(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: domain.MimeWebP,
	}, nil
}

func cover(src image.Image, box domain.BoundingBox) image.Image {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	// clamp the target to the source so no axis is ever upscaled
	targetW := box.Width
	if srcW < targetW {
		targetW = srcW
	}
	targetH := box.Height
	if srcH < targetH {
		targetH = srcH
	}

	if targetW == srcW && targetH == srcH {
		return src
	}

	// centered crop to the target's aspect ratio, then scale down
	cropW := srcW
	cropH := srcH
	if srcW*targetH > srcH*targetW {
		cropW = srcH * targetW / targetH
	} else {
		cropH = srcW * targetH / targetW
	}

	x0 := bounds.Min.X + (srcW-cropW)/2
	y0 := bounds.Min.Y + (srcH-cropH)/2
	cropRect := image.Rect(x0, y0, x0+cropW, y0+cropH)

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, cropRect, xdraw.Src, nil)
	return dst
}
