// Package imaging builds certificate image URLs for the upstream image
// transformation service. Certificates are never pre-rendered: every view
// re-derives the URL from the stored template settings, so the overlay
// parameters here are a wire contract with the image service, not a general
// geometry model.
package imaging

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"certforge/internal/domain"
)

// Fallback pixel dimensions for the text box when the template stores a
// zero width or height.
const (
	fallbackBoxWidth  = 800
	fallbackBoxHeight = 150
)

// Watermark overlay settings for the verification code stamp.
const (
	watermarkFont   = "Arial"
	watermarkSize   = 16
	watermarkColor  = "FFFFFF"
	watermarkOffset = 20
)

// CertificateURL returns the transformed image URL with the participant name
// burned into the template's text box and, when verificationCode is
// non-empty, a small watermark with the code in the bottom-right corner.
//
// The percent-to-pixel mapping is fixed by the image service's coordinate
// system: box width = width% x 11, height = height% x 9, and the box center
// is offset from center gravity by (percent - 50) x 10 on each axis.
// URLs that do not contain an "/upload/" segment cannot carry
// transformations and are returned unchanged.
func CertificateURL(imageURL, name, verificationCode string, t *domain.CertificateTemplate) string {
	base, rest, found := strings.Cut(imageURL, "/upload/")
	if !found {
		return imageURL
	}

	w := int(math.Round(t.Width * 11))
	if t.Width == 0 {
		w = fallbackBoxWidth
	}
	h := int(math.Round(t.Height * 9))
	if t.Height == 0 {
		h = fallbackBoxHeight
	}
	x := int(math.Round((t.PositionX - 50) * 10))
	y := int(math.Round((t.PositionY - 50) * 10))

	family := t.FontFamily
	if family == "" {
		family = domain.DefaultFontFamily
	}
	size := t.FontSize
	if size == 0 {
		size = domain.DefaultFontSize
	}
	color := strings.TrimPrefix(t.FontColor, "#")
	if color == "" {
		color = strings.TrimPrefix(domain.DefaultFontColor, "#")
	}

	nameOverlay := fmt.Sprintf("l_text:%s_%d:%s,co_rgb:%s,c_fit,w_%d,h_%d,g_center,x_%d,y_%d",
		escapeOverlayText(family), size, escapeOverlayText(name), color, w, h, x, y)

	transformations := []string{nameOverlay}
	if verificationCode != "" {
		watermark := fmt.Sprintf("l_text:%s_%d:%s,co_rgb:%s,g_south_east,x_%d,y_%d",
			watermarkFont, watermarkSize, escapeOverlayText(verificationCode),
			watermarkColor, watermarkOffset, watermarkOffset)
		transformations = append(transformations, watermark)
	}

	return base + "/upload/" + strings.Join(transformations, "/") + "/" + rest
}

// escapeOverlayText percent-encodes text for use inside a transformation
// component. Commas and slashes are parameter and component separators in
// the transformation grammar, so they must be encoded beyond what plain
// path escaping covers.
func escapeOverlayText(s string) string {
	escaped := url.PathEscape(s)
	escaped = strings.ReplaceAll(escaped, ",", "%2C")
	escaped = strings.ReplaceAll(escaped, "/", "%2F")
	return escaped
}
