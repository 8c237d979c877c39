package overlay

import "github.com/sdey02/Signy/internal/geom"

// The rendering library reports view changes through loosely typed
// callbacks; these narrow adapters are the only shapes the controller
// accepts, so the precise types never leak outward.

// PageEvent signals that the visible page changed.
type PageEvent struct {
	PageNumber int
}

// ZoomEvent signals that the render scale changed.
type ZoomEvent struct {
	Scale float64
}

// ViewportEvent delivers the rendered page's bounding box: the container's
// top-left corner in screen space and the page's unscaled pixel
// dimensions. The controller cannot place fields until it has seen one.
type ViewportEvent struct {
	ContainerTopLeft geom.Point
	PageWidth        float64
	PageHeight       float64
}
