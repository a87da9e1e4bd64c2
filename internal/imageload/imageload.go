// Package imageload fetches remote thumbnails and turns them into terminal
// pictures drawn with half-block characters.
package imageload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imageorient"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Shape selects how the source image is fitted.
type Shape int

const (
	// ShapeCenterCrop fills the slot, cropping the overflow evenly.
	ShapeCenterCrop Shape = iota
	// ShapeCircle center-crops and masks everything outside the inscribed
	// ellipse.
	ShapeCircle
)

func (s Shape) String() string {
	if s == ShapeCircle {
		return "circle"
	}
	return "center-crop"
}

// Request describes one load. Width and Height are in terminal cells; each
// cell holds two pixel rows.
type Request struct {
	URL    string
	Width  int
	Height int
	Shape  Shape
}

// ErrEmptyRequest is returned for a request without a URL or size.
var ErrEmptyRequest = errors.New("image request needs a url and a size")

const maxImageBytes = 8 << 20

// Loader fetches images over HTTP.
type Loader struct {
	client *http.Client
}

// NewLoader returns a loader using client, or a client with a short timeout
// when client is nil.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Loader{client: client}
}

// Load downloads and decodes req.URL. It returns ctx.Err() when the load is
// cancelled.
func (l *Loader) Load(ctx context.Context, req Request) (*Picture, error) {
	if req.URL == "" || req.Width <= 0 || req.Height <= 0 {
		return nil, ErrEmptyRequest
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	hreq.Header.Set("User-Agent", "frontpage")

	resp, err := l.client.Do(hreq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", req.URL, resp.Status)
	}
	return Decode(io.LimitReader(resp.Body, maxImageBytes), req)
}

// Picture is a decoded image scaled to a cell grid.
type Picture struct {
	width  int // pixels, equal to cells
	height int // pixels, twice the cells
	pixels []colorful.Color
	opaque []bool
	bg     colorful.Color
}

// Decode reads an image, applies its EXIF orientation and fits it to req.
func Decode(r io.Reader, req Request) (*Picture, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, ErrEmptyRequest
	}
	src, _, err := imageorient.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return Fit(src, req), nil
}

// Fit center-crops src to the aspect ratio of req and scales it down.
func Fit(src image.Image, req Request) *Picture {
	pw, ph := req.Width, req.Height*2
	scaled := resize.Resize(uint(pw), uint(ph), centerCrop(src, pw, ph), resize.Bilinear)

	p := &Picture{
		width:  pw,
		height: ph,
		pixels: make([]colorful.Color, pw*ph),
		opaque: make([]bool, pw*ph),
	}
	b := scaled.Bounds()
	for y := range ph {
		for x := range pw {
			i := y*pw + x
			c, ok := colorful.MakeColor(scaled.At(b.Min.X+x, b.Min.Y+y))
			p.pixels[i] = c
			p.opaque[i] = ok
			if req.Shape == ShapeCircle && !insideEllipse(x, y, pw, ph) {
				p.opaque[i] = false
			}
		}
	}
	return p
}

func centerCrop(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return src
	}

	cw, ch := sw, sw*h/w
	if ch > sh {
		cw, ch = sh*w/h, sh
	}
	x0 := b.Min.X + (sw-cw)/2
	y0 := b.Min.Y + (sh-ch)/2

	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(dst, dst.Bounds(), src, image.Pt(x0, y0), draw.Src)
	return dst
}

func insideEllipse(x, y, w, h int) bool {
	rx, ry := float64(w)/2, float64(h)/2
	dx := (float64(x) + 0.5 - rx) / rx
	dy := (float64(y) + 0.5 - ry) / ry
	return dx*dx+dy*dy <= 1
}

// Size returns the picture size in cells.
func (p *Picture) Size() (width, height int) {
	return p.width, p.height / 2
}

// Render draws the picture with half blocks. alpha blends every pixel from
// the background towards its own colour, which is how loads fade in.
func (p *Picture) Render(alpha float64) string {
	alpha = min(max(alpha, 0), 1)

	var sb strings.Builder
	for y := 0; y < p.height; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range p.width {
			top, bottom := y*p.width+x, (y+1)*p.width+x
			sb.WriteString(p.cell(top, bottom, alpha))
		}
	}
	return sb.String()
}

func (p *Picture) cell(top, bottom int, alpha float64) string {
	topOK := p.opaque[top]
	bottomOK := bottom < len(p.opaque) && p.opaque[bottom]

	switch {
	case topOK && bottomOK:
		return lipgloss.NewStyle().
			Foreground(p.color(top, alpha)).
			Background(p.color(bottom, alpha)).
			Render("▀")
	case topOK:
		return lipgloss.NewStyle().Foreground(p.color(top, alpha)).Render("▀")
	case bottomOK:
		return lipgloss.NewStyle().Foreground(p.color(bottom, alpha)).Render("▄")
	}
	return " "
}

func (p *Picture) color(i int, alpha float64) lipgloss.Color {
	return lipgloss.Color(p.bg.BlendRgb(p.pixels[i], alpha).Clamped().Hex())
}
