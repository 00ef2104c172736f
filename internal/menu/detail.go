package menu

import (
	"strings"

	"github.com/kbforge/kbforge/internal/output"
)

// Columns kept between an item and its detail text.
const minDetailPad = 2

// Detail is a menu item with a dim description appended to the end.
type Detail[T Renderable] struct {
	Item   T
	Detail string

	pad int
}

func (d *Detail[T]) Render() output.Text {
	return d.Item.Render().
		AppendString(strings.Repeat(" ", d.pad)).
		Append(output.Styled(d.Detail, output.Styling{Style: output.StyleDim}))
}

// DetailList pairs items with descriptions, padded so the description column
// lines up across all items.
func DetailList[T Renderable](items []T, details []string) []*Detail[T] {
	list := make([]*Detail[T], len(items))
	for i, item := range items {
		detail := ""
		if i < len(details) {
			detail = details[i]
		}
		list[i] = &Detail[T]{Item: item, Detail: detail, pad: minDetailPad}
	}

	Align(list)
	return list
}

// Align sets the padding for each item so the detail strings line up.
func Align[T Renderable](items []*Detail[T]) {
	width := 0
	for _, d := range items {
		if w := d.Item.Render().Width(); w > width {
			width = w
		}
	}

	for _, d := range items {
		d.pad = width - d.Item.Render().Width() + minDetailPad
	}
}
