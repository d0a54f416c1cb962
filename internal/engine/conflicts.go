package engine

// ConflictList walks a folder operation's destination conflicts one question
// at a time. Overwritten entries are dropped from the list; what is left once
// every entry is resolved is the set of destination paths to skip.
type ConflictList struct {
	paths  []string
	cursor int
}

// NewConflictList wraps the given destination paths.
func NewConflictList(paths []string) *ConflictList {
	return &ConflictList{paths: append([]string(nil), paths...)}
}

// Pending reports whether a conflict is still waiting for a decision.
func (c *ConflictList) Pending() bool {
	return c.cursor < len(c.paths)
}

// Current returns the conflict awaiting a decision, or "" when none is.
func (c *ConflictList) Current() string {
	if !c.Pending() {
		return ""
	}

	return c.paths[c.cursor]
}

// Remaining returns how many conflicts still need a decision.
func (c *ConflictList) Remaining() int {
	return len(c.paths) - c.cursor
}

// Resolve records a decision for the current conflict. With remember set the
// decision also applies to every conflict after it.
func (c *ConflictList) Resolve(overwrite, remember bool) {
	if !c.Pending() {
		return
	}

	switch {
	case overwrite && remember:
		c.paths = c.paths[:c.cursor]
	case overwrite:
		c.paths = append(c.paths[:c.cursor], c.paths[c.cursor+1:]...)
	case remember:
		c.cursor = len(c.paths)
	default:
		c.cursor++
	}
}

// Skipped returns the destination paths that must be left untouched.
func (c *ConflictList) Skipped() []string {
	return append([]string(nil), c.paths[:c.cursor]...)
}

// SkipSet returns Skipped as a set.
func (c *ConflictList) SkipSet() map[string]struct{} {
	set := make(map[string]struct{}, c.cursor)
	for _, p := range c.paths[:c.cursor] {
		set[p] = struct{}{}
	}

	return set
}
