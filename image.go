package hilbpix

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// jpegQuality matches the original tool's save parameter.
const jpegQuality = 95

var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".bmp":  bmp.Decode,
	".tiff": tiff.Decode,
	".tif":  tiff.Decode,
	".webp": webp.Decode,
}

// SupportedExtensions lists the file extensions the codec adapter reads.
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".webp", ".tiff", ".tif"}
}

// SupportedFile reports whether the path has a readable image extension.
func SupportedFile(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// OutputPath maps an input path to where its transformed counterpart goes.
// With an empty outDir the file is rewritten in place. webp has no Go
// encoder, so webp inputs come back out as png.
func OutputPath(input, outDir string) string {
	out := input
	if outDir != "" {
		out = filepath.Join(outDir, filepath.Base(input))
	}
	if strings.EqualFold(filepath.Ext(out), ".webp") {
		out = strings.TrimSuffix(out, filepath.Ext(out)) + ".png"
	}
	return out
}

// DecodeImageFile reads an image file into a PixelBuffer.
func DecodeImageFile(path string) (*PixelBuffer, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading image: %w", err)
	}
	defer file.Close()

	img, err := dec(file)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", filepath.Base(path), err)
	}
	return FromImage(img)
}

// EncodeImageFile writes a PixelBuffer to path, choosing the codec from the
// extension.
func EncodeImageFile(path string, buf *PixelBuffer) error {
	img, err := ToImage(buf)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error writing image: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality})
	case ".bmp":
		err = bmp.Encode(file, img)
	case ".tiff", ".tif":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: cannot encode %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FromImage converts a decoded image into the flat sample layout the
// permutation engine works on. Grayscale stays single-channel at its native
// depth, jpeg's YCbCr becomes a 3-channel RGB buffer, everything with alpha
// becomes 4-channel.
func FromImage(img image.Image) (*PixelBuffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	switch src := img.(type) {
	case *image.Gray:
		buf, err := NewPixelBuffer(w, h, 1, 8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			copy(buf.Pix8[y*w:(y+1)*w], row[:w])
		}
		return buf, nil

	case *image.Gray16:
		buf, err := NewPixelBuffer(w, h, 1, 16)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				buf.Pix16[y*w+x] = uint16(row[2*x])<<8 | uint16(row[2*x+1])
			}
		}
		return buf, nil

	case *image.NRGBA:
		buf, err := NewPixelBuffer(w, h, 4, 8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			copy(buf.Pix8[y*w*4:(y+1)*w*4], row[:w*4])
		}
		return buf, nil

	case *image.NRGBA64:
		buf, err := NewPixelBuffer(w, h, 4, 16)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w*4; x++ {
				buf.Pix16[y*w*4+x] = uint16(row[2*x])<<8 | uint16(row[2*x+1])
			}
		}
		return buf, nil

	case *image.YCbCr:
		buf, err := NewPixelBuffer(w, h, 3, 8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := src.YCbCrAt(bounds.Min.X+x, bounds.Min.Y+y)
				r, g, b := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				i := (y*w + x) * 3
				buf.Pix8[i] = r
				buf.Pix8[i+1] = g
				buf.Pix8[i+2] = b
			}
		}
		return buf, nil
	}

	// Paletted, premultiplied and exotic types go through per-pixel
	// conversion to non-premultiplied RGBA.
	buf, err := NewPixelBuffer(w, h, 4, 8)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*w + x) * 4
			buf.Pix8[i] = c.R
			buf.Pix8[i+1] = c.G
			buf.Pix8[i+2] = c.B
			buf.Pix8[i+3] = c.A
		}
	}
	return buf, nil
}

// ToImage converts a PixelBuffer back into an encodable image. 3-channel
// buffers come back fully opaque; jpeg drops the alpha again on encode.
func ToImage(buf *PixelBuffer) (image.Image, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}
	w, h := buf.Width, buf.Height
	rect := image.Rect(0, 0, w, h)

	switch {
	case buf.Channels == 1 && buf.Depth == 8:
		img := image.NewGray(rect)
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w], buf.Pix8[y*w:(y+1)*w])
		}
		return img, nil

	case buf.Channels == 1 && buf.Depth == 16:
		img := image.NewGray16(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				s := buf.Pix16[y*w+x]
				img.Pix[y*img.Stride+2*x] = uint8(s >> 8)
				img.Pix[y*img.Stride+2*x+1] = uint8(s)
			}
		}
		return img, nil

	case buf.Channels == 3 && buf.Depth == 8:
		img := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				si := (y*w + x) * 3
				di := y*img.Stride + x*4
				img.Pix[di] = buf.Pix8[si]
				img.Pix[di+1] = buf.Pix8[si+1]
				img.Pix[di+2] = buf.Pix8[si+2]
				img.Pix[di+3] = 0xff
			}
		}
		return img, nil

	case buf.Channels == 3 && buf.Depth == 16:
		img := image.NewNRGBA64(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				si := (y*w + x) * 3
				di := y*img.Stride + x*8
				for c := 0; c < 3; c++ {
					s := buf.Pix16[si+c]
					img.Pix[di+2*c] = uint8(s >> 8)
					img.Pix[di+2*c+1] = uint8(s)
				}
				img.Pix[di+6] = 0xff
				img.Pix[di+7] = 0xff
			}
		}
		return img, nil

	case buf.Channels == 4 && buf.Depth == 8:
		img := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w*4], buf.Pix8[y*w*4:(y+1)*w*4])
		}
		return img, nil

	case buf.Channels == 4 && buf.Depth == 16:
		img := image.NewNRGBA64(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w*4; x++ {
				s := buf.Pix16[y*w*4+x]
				img.Pix[y*img.Stride+2*x] = uint8(s >> 8)
				img.Pix[y*img.Stride+2*x+1] = uint8(s)
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: %d channels at %d bit", ErrUnsupportedChannels, buf.Channels, buf.Depth)
}
