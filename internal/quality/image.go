package quality

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/dshills/materialcheck/internal/fetch"
	"github.com/dshills/materialcheck/internal/schema"
)

// ImageSpec holds the constraints for one image field. Zero values are unchecked.
type ImageSpec struct {
	Formats          []string
	MinWidth         int
	MinHeight        int
	RecommendedWidth int
	MaxSize          int64
}

// ImageSpecFor derives the image constraints of a requirement.
func ImageSpecFor(req schema.ContentRequirement) ImageSpec {
	return ImageSpec{
		Formats:          req.Rules.Formats,
		MinWidth:         req.Rules.MinWidth,
		MinHeight:        req.Rules.MinHeight,
		RecommendedWidth: req.Rules.RecommendedWidth,
		MaxSize:          req.Rules.MaxSize,
	}
}

// largePNG is the size above which a PNG photo is better served as JPEG or WebP.
const largePNG = 1 << 20

// ValidateImage reads an image and checks it against spec. Only the header
// is decoded; the whole stream is consumed to measure the file size.
// Details are filled in as far as the file could be read.
func ValidateImage(r io.Reader, spec ImageSpec) schema.ImageValidationResult {
	res := schema.ImageValidationResult{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}
	data, err := io.ReadAll(r)
	if errors.Is(err, fetch.ErrTooLarge) {
		// The bytes read so far are not the real size.
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	res.Details.FileSize = int64(len(data))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("unable to read file: %v", err))
		return res
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		res.Errors = append(res.Errors, "file is not a readable image (supported: jpeg, png, gif, webp)")
		return res
	}
	res.Details.Width = cfg.Width
	res.Details.Height = cfg.Height
	res.Details.Format = format

	d := res.Details
	if len(spec.Formats) > 0 && !acceptsFormat(spec.Formats, format) {
		res.Errors = append(res.Errors, fmt.Sprintf("format %s is not accepted (allowed: %s)", format, strings.Join(spec.Formats, ", ")))
	}
	if d.Width < spec.MinWidth || d.Height < spec.MinHeight {
		res.Errors = append(res.Errors, fmt.Sprintf("image is %d×%d, minimum is %d×%d (%s)",
			d.Width, d.Height, spec.MinWidth, spec.MinHeight, shortfall(d, spec)))
	}
	if spec.MaxSize > 0 && d.FileSize > spec.MaxSize {
		res.Errors = append(res.Errors, fmt.Sprintf("file is %s, maximum is %s", humanSize(d.FileSize), humanSize(spec.MaxSize)))
	}
	res.IsValid = len(res.Errors) == 0

	if res.IsValid && spec.MaxSize > 0 && float64(d.FileSize) >= float64(spec.MaxSize)*(1-borderline) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("file is %s, close to the %s limit", humanSize(d.FileSize), humanSize(spec.MaxSize)))
	}
	if d.Width >= spec.MinWidth && spec.RecommendedWidth > 0 && d.Width < spec.RecommendedWidth {
		res.Suggestions = append(res.Suggestions, fmt.Sprintf("An image at least %dpx wide will look sharper on large screens", spec.RecommendedWidth))
	}
	if format == "png" && d.FileSize > largePNG {
		res.Suggestions = append(res.Suggestions, "Photos saved as JPEG or WebP are usually much smaller than PNG")
	}
	return res
}

func shortfall(d schema.ImageDetails, spec ImageSpec) string {
	var parts []string
	if d.Width < spec.MinWidth {
		parts = append(parts, fmt.Sprintf("%dpx too narrow", spec.MinWidth-d.Width))
	}
	if d.Height < spec.MinHeight {
		parts = append(parts, fmt.Sprintf("%dpx too short", spec.MinHeight-d.Height))
	}
	return strings.Join(parts, ", ")
}

// acceptsFormat matches the decoder's format name; "jpg" is accepted as an alias.
func acceptsFormat(formats []string, format string) bool {
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "jpg" {
			f = "jpeg"
		}
		if f == format {
			return true
		}
	}
	return false
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d KB", (n+1023)/1024)
}
