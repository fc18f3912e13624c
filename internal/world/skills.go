package world

// SkillTree indexes skills by id with explicit parent links. It is built
// once from a flat list and only answers queries.
type SkillTree struct {
	nodes    map[string]*Skill
	order    []string
	children map[string][]string
}

func NewSkillTree(skills []*Skill) *SkillTree {
	t := &SkillTree{
		nodes:    make(map[string]*Skill, len(skills)),
		children: make(map[string][]string),
	}
	for _, s := range skills {
		if _, dup := t.nodes[s.ID]; dup {
			continue
		}
		t.nodes[s.ID] = s
		t.order = append(t.order, s.ID)
	}
	for _, id := range t.order {
		parent := t.nodes[id].ParentID
		if parent == "" {
			continue
		}
		t.children[parent] = append(t.children[parent], id)
	}
	return t
}

func (t *SkillTree) Get(id string) (*Skill, bool) {
	s, ok := t.nodes[id]
	return s, ok
}

// ChildrenOf lists the direct children of id in stored order.
func (t *SkillTree) ChildrenOf(id string) []*Skill {
	ids := t.children[id]
	out := make([]*Skill, 0, len(ids))
	for _, childID := range ids {
		out = append(out, t.nodes[childID])
	}
	return out
}

// Roots returns skills of magicTypeID (all types when empty) that have no
// parent or whose parent is missing.
func (t *SkillTree) Roots(magicTypeID string) []*Skill {
	var out []*Skill
	for _, id := range t.order {
		s := t.nodes[id]
		if magicTypeID != "" && s.MagicTypeID != magicTypeID {
			continue
		}
		if _, ok := t.nodes[s.ParentID]; s.ParentID == "" || !ok {
			out = append(out, s)
		}
	}
	return out
}

// Ancestors walks parent links from id towards the root. The walk stops at a
// missing parent or when a cycle is detected, and reports whether it hit one.
func (t *SkillTree) Ancestors(id string) ([]*Skill, bool) {
	var out []*Skill
	visited := map[string]bool{id: true}
	current, ok := t.nodes[id]
	for ok && current.ParentID != "" {
		if visited[current.ParentID] {
			return out, true
		}
		visited[current.ParentID] = true
		current, ok = t.nodes[current.ParentID]
		if ok {
			out = append(out, current)
		}
	}
	return out, false
}

// Walk visits the subtree under each root depth first. Nodes reachable only
// through a cycle are never visited.
func (t *SkillTree) Walk(roots []*Skill, fn func(s *Skill, depth int)) {
	visited := make(map[string]bool)
	var visit func(s *Skill, depth int)
	visit = func(s *Skill, depth int) {
		if visited[s.ID] {
			return
		}
		visited[s.ID] = true
		fn(s, depth)
		for _, child := range t.ChildrenOf(s.ID) {
			visit(child, depth+1)
		}
	}
	for _, root := range roots {
		visit(root, 0)
	}
}
