package imaging

import (
	"image"
	"image/color"
	"math"
)

const (
	// Binarization neighbourhood and offset.
	thresholdBlockSize = 11
	thresholdOffset    = 2
	medianSize         = 3
)

// smallGaussian5 is the fixed 5-tap kernel used when sigma is left to the
// engine default for a 5x5 window.
var smallGaussian5 = []float64{0.0625, 0.25, 0.375, 0.25, 0.0625}

// Normalize converts img into a strictly binary (0/255) single-channel image
// of the same width and height: grayscale, 5x5 Gaussian smoothing, Gaussian
// adaptive threshold (block 11, C 2), then a 3x3 median filter. The source is
// never modified. The returned image's bounds start at the origin.
//
// A 1x1 morphological closing would sit between threshold and median; with
// a single-pixel structuring element it is the identity, so it is skipped.
func Normalize(img image.Image) *image.Gray {
	gray := Grayscale(img)
	blurred := convolveSeparable(gray, smallGaussian5)
	binary := adaptiveThreshold(blurred, thresholdBlockSize, thresholdOffset)
	return medianFilter(binary, medianSize)
}

// Grayscale applies the standard luma transform (0.299 R + 0.587 G + 0.114 B)
// to straight (non-premultiplied) channel values. Alpha is ignored.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src[:b.Dx()])
		}
		return out
	}
	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			l := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			row[x] = clamp8(l)
		}
	}
	return out
}

// convolveSeparable blurs src with kernel applied horizontally then
// vertically, mirroring at the edges without repeating the border pixel.
func convolveSeparable(src *image.Gray, kernel []float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := len(kernel) / 2
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += kernel[k+r] * float64(row[reflect101(x+k, w)])
			}
			tmp[y*w+x] = sum
		}
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += kernel[k+r] * tmp[reflect101(y+k, h)*w+x]
			}
			out.Pix[y*out.Stride+x] = clamp8(sum)
		}
	}
	return out
}

// adaptiveThreshold sets a pixel to 255 when it is brighter than the
// Gaussian-weighted mean of its blockSize neighbourhood minus c, else 0.
func adaptiveThreshold(src *image.Gray, blockSize int, c int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	kernel := gaussianKernel(blockSize)
	r := blockSize / 2
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += kernel[k+r] * float64(row[replicate(x+k, w)])
			}
			tmp[y*w+x] = sum
		}
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += kernel[k+r] * tmp[replicate(y+k, h)*w+x]
			}
			mean := int(clamp8(sum))
			if int(src.Pix[y*src.Stride+x])-mean > -c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// medianFilter replaces each pixel with the median of its size x size window,
// replicating edge pixels.
func medianFilter(src *image.Gray, size int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := size / 2
	out := image.NewGray(image.Rect(0, 0, w, h))
	window := make([]uint8, 0, size*size)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -r; dy <= r; dy++ {
				row := src.Pix[replicate(y+dy, h)*src.Stride:]
				for dx := -r; dx <= r; dx++ {
					window = append(window, row[replicate(x+dx, w)])
				}
			}
			insertionSort(window)
			out.Pix[y*out.Stride+x] = window[len(window)/2]
		}
	}
	return out
}

// gaussianKernel builds a normalized 1-D kernel with the automatic sigma
// for the given size: 0.3*((n-1)*0.5-1)+0.8.
func gaussianKernel(n int) []float64 {
	if n == 5 {
		return smallGaussian5
	}
	sigma := 0.3*((float64(n)-1)*0.5-1) + 0.8
	k := make([]float64, n)
	var sum float64
	for i := range k {
		x := float64(i - n/2)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func insertionSort(v []uint8) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
