package overlay

import (
	"github.com/sdey02/Signy/internal/geom"
	"github.com/sdey02/Signy/internal/label"
)

// ChangeFunc receives the complete merged field collection after every
// mutation. The slice spans all pages, never just the visible one.
type ChangeFunc func(fields []label.Field)

// Controller owns the working set of fields for the currently visible page
// and reconciles every mutation back into the authoritative cross-page
// collection. All methods are meant for a single goroutine: mutations
// arrive in UI-event order.
type Controller struct {
	placement Placement

	full       []label.Field
	pageFields []label.Field
	pageNumber int

	scale       float64
	viewport    ViewportEvent
	hasViewport bool

	onChange ChangeFunc
}

// NewController creates a controller for page 1 at 100% zoom. The change
// callback may be nil.
func NewController(onChange ChangeFunc) *Controller {
	return &Controller{
		pageNumber: 1,
		scale:      1,
		onChange:   onChange,
	}
}

// Load replaces the whole collection, typically with the hydrated sidecar
// content at document-open time, and recomputes the visible working set.
func (c *Controller) Load(fields []label.Field) {
	c.full = append([]label.Field(nil), fields...)
	c.pageFields = PageSubset(c.full, c.pageNumber)
}

// HandlePage switches the visible page. No fields are mutated; the working
// set is refiltered from the full collection.
func (c *Controller) HandlePage(ev PageEvent) {
	if ev.PageNumber < 1 || ev.PageNumber == c.pageNumber {
		return
	}
	c.pageNumber = ev.PageNumber
	c.pageFields = PageSubset(c.full, c.pageNumber)
	c.hasViewport = false
}

// HandleZoom updates the scale used to interpret screen coordinates.
func (c *Controller) HandleZoom(ev ZoomEvent) {
	if ev.Scale > 0 {
		c.scale = ev.Scale
	}
}

// HandleViewport captures the rendered page's bounding box once the render
// surface reports it.
func (c *Controller) HandleViewport(ev ViewportEvent) {
	if ev.PageWidth <= 0 || ev.PageHeight <= 0 {
		return
	}
	c.viewport = ev
	c.hasViewport = true
}

// Select arms or clears the placement engine from a catalog selection.
func (c *Controller) Select(sel Selection) {
	c.placement.Arm(sel)
}

// Armed reports whether the next Place call will create a field.
func (c *Controller) Armed() bool {
	return c.placement.Armed()
}

// PageNumber returns the currently visible page.
func (c *Controller) PageNumber() int {
	return c.pageNumber
}

// Place materializes a new field at a screen-space click position. It
// returns nil without side effects when the engine is idle or no viewport
// has been captured yet. On success exactly one field is appended to the
// working set, the merged collection is reported upward, and the engine
// disarms.
func (c *Controller) Place(click geom.Point) *label.Field {
	if !c.placement.Armed() || !c.hasViewport {
		return nil
	}

	sel := c.placement.Selection()
	local := geom.ScreenToLocal(click, c.viewport.ContainerTopLeft, c.scale)
	norm := geom.LocalToNormalized(local, c.viewport.PageWidth, c.viewport.PageHeight)

	field := label.New(sel.Type, c.pageNumber, norm.X, norm.Y)
	field.Color = sel.Color
	field.Icon = sel.Icon

	c.pageFields = append(c.pageFields, field)
	c.reconcile()
	c.placement.Disarm()

	return &field
}

// UpdatePosition replaces a field's normalized anchor; drag-end handlers
// convert pixel deltas before calling. Unknown ids are ignored.
func (c *Controller) UpdatePosition(id string, x, y float64) {
	c.mutate(id, func(f *label.Field) {
		f.X = x
		f.Y = y
	})
}

// UpdateSize replaces a field's normalized dimensions; resize-end handlers
// convert pixel sizes before calling. Unknown ids are ignored.
func (c *Controller) UpdateSize(id string, width, height float64) {
	c.mutate(id, func(f *label.Field) {
		f.Width = width
		f.Height = height
	})
}

// UpdateValue replaces a field's value payload. Every value editor commits
// through here. Unknown ids are ignored.
func (c *Controller) UpdateValue(id, value string) {
	c.mutate(id, func(f *label.Field) {
		f.Value = value
	})
}

// SetChecked writes the checkbox string convention for the given field.
func (c *Controller) SetChecked(id string, checked bool) {
	c.mutate(id, func(f *label.Field) {
		f.SetChecked(checked)
	})
}

// Delete removes a field from the working set. Deleting an unknown id is a
// no-op so stale callbacks cannot fault the UI.
func (c *Controller) Delete(id string) {
	found := false
	next := c.pageFields[:0:0]
	for _, f := range c.pageFields {
		if f.ID == id {
			found = true
			continue
		}
		next = append(next, f)
	}
	if !found {
		return
	}
	c.pageFields = next
	c.reconcile()
}

// PageFields returns a copy of the visible page's working set.
func (c *Controller) PageFields() []label.Field {
	return append([]label.Field(nil), c.pageFields...)
}

// Fields returns a copy of the full merged collection across all pages.
func (c *Controller) Fields() []label.Field {
	return append([]label.Field(nil), c.full...)
}

// Find returns the field with the given id from the full collection.
func (c *Controller) Find(id string) (label.Field, bool) {
	for _, f := range c.full {
		if f.ID == id {
			return f, true
		}
	}
	return label.Field{}, false
}

func (c *Controller) mutate(id string, apply func(*label.Field)) {
	found := false
	for i := range c.pageFields {
		if c.pageFields[i].ID == id {
			apply(&c.pageFields[i])
			found = true
			break
		}
	}
	if !found {
		return
	}
	c.reconcile()
}

// reconcile merges the working set back into the authoritative collection
// and notifies the caller with the complete result, so no page's edits are
// dropped when switching pages.
func (c *Controller) reconcile() {
	c.full = Merge(c.full, c.pageNumber, c.pageFields)
	if c.onChange != nil {
		c.onChange(c.Fields())
	}
}
