package overflow

// group tracks which members of a group are visible and which are hidden.
type group struct {
	visible map[string]struct{}
	hidden  map[string]struct{}
}

func newGroup() *group {
	return &group{
		visible: make(map[string]struct{}),
		hidden:  make(map[string]struct{}),
	}
}

func (g *group) markVisible(id string) {
	delete(g.hidden, id)
	g.visible[id] = struct{}{}
}

func (g *group) markHidden(id string) {
	delete(g.visible, id)
	g.hidden[id] = struct{}{}
}

func (g *group) empty() bool {
	return len(g.visible) == 0 && len(g.hidden) == 0
}

func (g *group) state() GroupState {
	switch {
	case len(g.hidden) == 0:
		return GroupVisible
	case len(g.visible) == 0:
		return GroupHidden
	default:
		return GroupOverflow
	}
}
