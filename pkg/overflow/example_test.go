package overflow_test

import (
	"fmt"

	"github.com/matzehuels/overflow/pkg/overflow"
)

type fixed overflow.Size

func (f fixed) Size() overflow.Size { return overflow.Size(f) }

func ExampleManager() {
	m := overflow.New(func(u overflow.Update) {
		fmt.Println("visible:", u.VisibleIDs(), "hidden:", u.HiddenIDs())
	})
	m.Observe(fixed{Width: 130}, overflow.WithPadding(0))
	m.AddItems(
		overflow.Item{ID: "bold", Element: fixed{Width: 40}, Priority: 2},
		overflow.Item{ID: "italic", Element: fixed{Width: 40}, Priority: 1},
		overflow.Item{ID: "link", Element: fixed{Width: 40}},
		overflow.Item{ID: "quote", Element: fixed{Width: 40}, Priority: 1},
	)
	m.Flush()

	m.Resize(overflow.Size{Width: 200})
	// Output:
	// visible: [] hidden: []
	// visible: [bold italic quote] hidden: [link]
	// visible: [bold italic link quote] hidden: []
}

func ExampleWithMinimumVisible() {
	m := overflow.New(nil)
	m.Observe(fixed{Width: 0}, overflow.WithPadding(0), overflow.WithMinimumVisible(2))
	m.AddItems(
		overflow.Item{ID: "a", Element: fixed{Width: 40}},
		overflow.Item{ID: "b", Element: fixed{Width: 40}},
		overflow.Item{ID: "c", Element: fixed{Width: 40}},
	)
	m.Flush()

	fmt.Println(m.Snapshot().VisibleIDs())
	// Output: [a b]
}
