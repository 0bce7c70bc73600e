package domain

import (
	"fmt"
	"math"
)

// PageSize is the physical size of a page in PDF points (1/72 inch)
type PageSize struct {
	Name   string  `json:"name" yaml:"name"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// A4 is the default page size
var A4 = PageSize{Name: "A4", Width: 595, Height: 842}

// String returns a human readable page size
func (p PageSize) String() string {
	if p.Name != "" {
		return fmt.Sprintf("%s (%gx%g pt)", p.Name, p.Width, p.Height)
	}
	return fmt.Sprintf("%gx%g pt", p.Width, p.Height)
}

// Placement describes where a scaled image sits on a page.
// X and Y are the lower-left corner in PDF user space.
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// PlaceOnPage centers an image of the given pixel size on the page and scales
// it so it is fully contained without cropping or distortion. The dominant
// constraint (width or height) decides the scale factor.
//
// Non-positive dimensions are rejected during normalization; for them this
// returns a zero Placement.
func PlaceOnPage(imageWidth, imageHeight int, page PageSize) Placement {
	if imageWidth <= 0 || imageHeight <= 0 || page.Width <= 0 || page.Height <= 0 {
		return Placement{}
	}

	w := float64(imageWidth)
	h := float64(imageHeight)

	scale := math.Min(page.Width/w, page.Height/h)
	scaledWidth := w * scale
	scaledHeight := h * scale

	return Placement{
		X:      (page.Width - scaledWidth) / 2,
		Y:      (page.Height - scaledHeight) / 2,
		Width:  scaledWidth,
		Height: scaledHeight,
		Scale:  scale,
	}
}

// Fits reports whether the placement lies inside the page bounds,
// allowing for floating point error.
func (p Placement) Fits(page PageSize) bool {
	const eps = 1e-9
	return p.X >= -eps && p.Y >= -eps &&
		p.X+p.Width <= page.Width+eps &&
		p.Y+p.Height <= page.Height+eps
}

// Page is one fixed-size page holding exactly one placed image
type Page struct {
	Number      int       `json:"number"`
	Source      string    `json:"source"`
	Size        PageSize  `json:"size"`
	Format      string    `json:"format"`
	PixelWidth  int       `json:"pixel_width"`
	PixelHeight int       `json:"pixel_height"`
	Placement   Placement `json:"placement"`
}

// Document is the ordered set of pages built from one assembly
type Document struct {
	Size  PageSize
	Pages []Page
}

// NewDocument creates an empty document with a fixed page size
func NewDocument(size PageSize) *Document {
	return &Document{Size: size}
}

// AddPage appends a page for the normalized image and returns it.
// Page numbers follow insertion order, starting at 1.
func (d *Document) AddPage(img *NormalizedImage) Page {
	page := Page{
		Number:      len(d.Pages) + 1,
		Source:      img.Source.Name(),
		Size:        d.Size,
		Format:      string(img.Format),
		PixelWidth:  img.Width,
		PixelHeight: img.Height,
		Placement:   PlaceOnPage(img.Width, img.Height, d.Size),
	}
	d.Pages = append(d.Pages, page)
	return page
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}
