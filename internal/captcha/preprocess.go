package captcha

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"sort"

	"golang.org/x/image/draw"
)

const (
	scaleFactor     = 2
	contrastFactor  = 2.0
	sharpnessFactor = 2.0
	binaryThreshold = 128
)

// Preprocess prepares a captcha for recognition: upscale 2x, grayscale,
// contrast and sharpness boosted, binarized at 128 and median filtered.
func Preprocess(src image.Image) *image.Gray {
	b := src.Bounds()
	scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*scaleFactor, b.Dy()*scaleFactor))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)

	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, image.Point{}, draw.Src)

	gray = enhanceContrast(gray, contrastFactor)
	gray = enhanceSharpness(gray, sharpnessFactor)
	binarize(gray, binaryThreshold)
	return medianFilter(gray)
}

// PreprocessPNG decodes any supported image format and returns the
// preprocessed result encoded as PNG.
func PreprocessPNG(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	err = png.Encode(&out, Preprocess(src))
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// enhanceContrast blends each pixel away from the mean gray level.
func enhanceContrast(img *image.Gray, factor float64) *image.Gray {
	if len(img.Pix) == 0 {
		return img
	}
	var sum int
	for _, p := range img.Pix {
		sum += int(p)
	}
	mean := float64(int(float64(sum)/float64(len(img.Pix)) + 0.5))

	out := image.NewGray(img.Bounds())
	for i, p := range img.Pix {
		out.Pix[i] = clamp(mean + factor*(float64(p)-mean))
	}
	return out
}

// enhanceSharpness blends each pixel away from a smoothed copy. Border
// pixels are left untouched.
func enhanceSharpness(img *image.Gray, factor float64) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	copy(out.Pix, img.Pix)
	kernel := [3][3]float64{{1, 1, 1}, {1, 5, 1}, {1, 1, 1}}

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			var smooth float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					smooth += kernel[ky+1][kx+1] * float64(img.GrayAt(x+kx, y+ky).Y)
				}
			}
			smooth /= 13
			orig := float64(img.GrayAt(x, y).Y)
			out.SetGray(x, y, color.Gray{Y: clamp(smooth + factor*(orig-smooth))})
		}
	}
	return out
}

func binarize(img *image.Gray, threshold uint8) {
	for i, p := range img.Pix {
		if p > threshold {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}

// medianFilter applies a 3x3 median, edges are extended.
func medianFilter(img *image.Gray) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	window := make([]uint8, 0, 9)

	at := func(x, y int) uint8 {
		if x < b.Min.X {
			x = b.Min.X
		} else if x >= b.Max.X {
			x = b.Max.X - 1
		}
		if y < b.Min.Y {
			y = b.Min.Y
		} else if y >= b.Max.Y {
			y = b.Max.Y - 1
		}
		return img.GrayAt(x, y).Y
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			window = window[:0]
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					window = append(window, at(x+kx, y+ky))
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.SetGray(x, y, color.Gray{Y: window[4]})
		}
	}
	return out
}
