package dom

import (
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-dom/errors"
)

// Fixture describes a document to build: elements in document order plus
// the window and visibility state.
type Fixture struct {
	Elements []ElementFixture `yaml:"elements" mapstructure:"elements"`
	Window   WindowFixture    `yaml:"window" mapstructure:"window"`
	Hidden   bool             `yaml:"hidden" mapstructure:"hidden"`
}

// ElementFixture describes one element. A parent must be listed before its
// children.
type ElementFixture struct {
	ID     string   `yaml:"id" mapstructure:"id"`
	Parent string   `yaml:"parent" mapstructure:"parent"`
	Value  string   `yaml:"value" mapstructure:"value"`
	Rect   Rect     `yaml:"rect" mapstructure:"rect"`
	Min    *float64 `yaml:"min" mapstructure:"min"`
	Max    *float64 `yaml:"max" mapstructure:"max"`
}

// WindowFixture describes the window.
type WindowFixture struct {
	Rect             Rect    `yaml:"rect" mapstructure:"rect"`
	ScrollX          float64 `yaml:"scroll_x" mapstructure:"scroll_x"`
	ScrollY          float64 `yaml:"scroll_y" mapstructure:"scroll_y"`
	DevicePixelRatio float64 `yaml:"device_pixel_ratio" mapstructure:"device_pixel_ratio"`
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, errors.ParseFailed("document fixture", err)
	}
	return f, nil
}

// LoadFixture builds a document from f.
func LoadFixture(f Fixture) (*Document, error) {
	d := NewDocument()
	for i, ef := range f.Elements {
		var parent *Element
		if ef.Parent != "" {
			p, ok := d.elements[ef.Parent]
			if !ok {
				return nil, errors.New(errors.PhaseConfigure, errors.KindNotFound).
					Path("elements", ef.ID, "parent").
					Value(i).
					Detail("parent %q of %q is not defined before it", ef.Parent, ef.ID).
					Build()
			}
			parent = p
		}
		e, err := d.CreateElement(ef.ID, parent)
		if err != nil {
			return nil, err
		}
		e.value = ef.Value
		e.rect = ef.Rect
		if ef.Min != nil {
			e.min = *ef.Min
		}
		if ef.Max != nil {
			e.max = *ef.Max
		}
	}

	w := d.window
	w.rect = f.Window.Rect
	w.scrollX, w.scrollY = f.Window.ScrollX, f.Window.ScrollY
	if f.Window.DevicePixelRatio > 0 {
		w.pixelRatio = f.Window.DevicePixelRatio
	}
	d.hidden = f.Hidden
	return d, nil
}
