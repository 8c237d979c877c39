// Package geom converts between the three coordinate spaces the editor
// deals with: screen pixels (scaled by the current zoom), page-local
// pixels at 100% render scale, and normalized page fractions. A fourth
// conversion targets PDF point space, whose origin sits at the bottom-left
// of the page while screen space anchors at the top-left.
package geom

// Point is a position in any of the 2D spaces handled here.
type Point struct {
	X float64
	Y float64
}

// Rect is a normalized field rectangle in PDF point space.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ScreenToLocal converts a screen-space point into container-relative
// coordinates at 100% render scale.
func ScreenToLocal(screen, containerTopLeft Point, scale float64) Point {
	return Point{
		X: (screen.X - containerTopLeft.X) / scale,
		Y: (screen.Y - containerTopLeft.Y) / scale,
	}
}

// LocalToScreen is the inverse of ScreenToLocal.
func LocalToScreen(local, containerTopLeft Point, scale float64) Point {
	return Point{
		X: local.X*scale + containerTopLeft.X,
		Y: local.Y*scale + containerTopLeft.Y,
	}
}

// LocalToNormalized converts container-relative pixels into fractions of
// the page's unscaled dimensions.
func LocalToNormalized(local Point, pageWidth, pageHeight float64) Point {
	return Point{
		X: local.X / pageWidth,
		Y: local.Y / pageHeight,
	}
}

// NormalizedToLocal is the inverse of LocalToNormalized.
func NormalizedToLocal(normalized Point, pageWidth, pageHeight float64) Point {
	return Point{
		X: normalized.X * pageWidth,
		Y: normalized.Y * pageHeight,
	}
}

// NormalizedToPDFPoints maps a normalized field rectangle onto a page in
// PDF point space. The vertical axis flips because PDF content space
// originates at the bottom-left; the field height is subtracted because a
// field's y anchor is its top edge in screen space while PDF drawing
// anchors from the bottom edge of the drawn content.
func NormalizedToPDFPoints(fx, fy, fieldWidth, fieldHeight, pdfPageWidth, pdfPageHeight float64) Rect {
	return Rect{
		X:      fx * pdfPageWidth,
		Y:      pdfPageHeight - fy*pdfPageHeight - fieldHeight*pdfPageHeight,
		Width:  fieldWidth * pdfPageWidth,
		Height: fieldHeight * pdfPageHeight,
	}
}

// PDFPointsToNormalized is the inverse of NormalizedToPDFPoints.
func PDFPointsToNormalized(r Rect, pdfPageWidth, pdfPageHeight float64) (fx, fy, fieldWidth, fieldHeight float64) {
	fieldWidth = r.Width / pdfPageWidth
	fieldHeight = r.Height / pdfPageHeight
	fx = r.X / pdfPageWidth
	fy = (pdfPageHeight - r.Y - r.Height) / pdfPageHeight
	return fx, fy, fieldWidth, fieldHeight
}
