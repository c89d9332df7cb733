// Package basic is a minimal fixture for driver smoke tests: no
// must-call annotations are supplied, so nothing here should ever be
// flagged regardless of what the declaration or consistency checks do.
package basic

type Widget struct {
	name string
}

func NewWidget(name string) *Widget {
	return &Widget{name: name}
}

func (w *Widget) Describe() string {
	return w.name
}

func UseWidget() string {
	w := NewWidget("gadget")
	return w.Describe()
}
