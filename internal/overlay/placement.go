package overlay

import "github.com/sdey02/Signy/internal/label"

// Selection carries the catalog attributes a placement click stamps onto
// the new field.
type Selection struct {
	Type  label.Type
	Color string
	Icon  string
}

// Placement is the two-state engine controlling field creation: Idle, in
// which canvas clicks are inert, and Armed, in which the next click
// materializes one field. Placing a field disarms the engine; the caller
// must re-select a type to place another (one field per selection).
type Placement struct {
	armed     bool
	selection Selection
}

// Arm enters the armed state with the given selection. An empty type
// clears the selection and returns the engine to idle, mirroring the
// catalog deselect event.
func (p *Placement) Arm(sel Selection) {
	if sel.Type == "" {
		p.Disarm()
		return
	}
	p.armed = true
	p.selection = sel
}

// Disarm returns the engine to idle.
func (p *Placement) Disarm() {
	p.armed = false
	p.selection = Selection{}
}

// Armed reports whether the next canvas click will place a field.
func (p *Placement) Armed() bool {
	return p.armed
}

// Selection returns the currently armed selection. Only meaningful while
// Armed reports true.
func (p *Placement) Selection() Selection {
	return p.selection
}
