// Package overflow implements the overflow-fitting engine behind responsive
// toolbars, tab strips and menu bars.
//
// # Overview
//
// A [Manager] tracks a sequence of measurable items placed in a
// constrained container. Whenever the available capacity or the item set
// changes, it re-partitions the items into a visible run and an overflow
// collection, so that the visible run fits the container. Callers decide
// how hidden items are presented (typically a "more" menu); the engine only
// toggles visibility and reports the partition.
//
// # Partition
//
// Every registered item is in exactly one of two priority queues:
//
//   - the visible queue, ordered by eviction preference (lowest priority
//     first, then the end of the sequence named by [Direction])
//   - the hidden queue, ordered by restore preference (highest priority
//     first, then the item nearest the visible run)
//
// The mirrored tie-breaks mean the item evicted and the item restored for
// a priority tier sit at opposite ends of the sequence, so repeated passes
// at the same capacity do not oscillate.
//
// # Fitting pass
//
// A pass sums the extents of visible items, plus any registered overflow
// indicators while something is hidden. It restores hidden items while
// space remains and evicts visible items while the run is too long (never
// below the minimum-visible floor). Finally, if every hidden item fits
// once the indicators are gone, all of them are shown. An update
// notification is emitted only when the head of either queue changed.
//
// Passes fit against the size last passed to [Manager.Resize]. Before the
// first report, and after each [Manager.Observe], the container measures
// itself.
//
// # Usage
//
//	m := overflow.New(func(u overflow.Update) {
//	    render(u.VisibleItems, u.HiddenItems, u.GroupVisibility)
//	}, overflow.WithScheduler(loop))
//
//	m.Observe(container,
//	    overflow.WithPadding(10),
//	    overflow.WithDirection(overflow.End),
//	    overflow.WithOverflowIndicators(moreButton),
//	)
//	m.AddItems(
//	    overflow.Item{ID: "bold", Element: bold, Priority: 2},
//	    overflow.Item{ID: "italic", Element: italic},
//	)
//	m.Resize(overflow.Size{Width: 320})
//
// # Concurrency
//
// A Manager is single-threaded. All calls must come from one goroutine,
// normally a [turn.Loop] or a UI event loop. Mutations issued from inside
// the update callback are deferred to the next turn rather than applied
// mid-pass.
package overflow
