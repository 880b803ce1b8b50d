// Package scenario describes overflow fitting runs as data.
//
// A [Scenario] is a container capacity, engine options and a list of item
// sizes. It can be written in TOML or JSON, run against a real
// [overflow.Manager] with [Run], fingerprinted for caching with
// [Scenario.Fingerprint] and stored by name in a [Store].
//
// A scenario file looks like this:
//
//	name = "toolbar"
//	capacity = 200
//	direction = "end"
//
//	[[items]]
//	id = "bold"
//	width = 40
//	priority = 2
//
//	[[items]]
//	id = "italic"
//	width = 40
//
// # Built-in scenarios
//
// [Builtin] returns the reference scenarios: DOM order, reverse DOM order,
// priority, minimum visible, divider groups (with and without priorities)
// and an overflow indicator.
package scenario
