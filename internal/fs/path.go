package fs

import "strings"

// PathComponents walks a path name lazily, one segment at a time,
// consuming up to the next separator per step. Empty segments from
// leading, trailing or doubled separators are skipped, so "a//b/" and
// "a/b" walk the same.
type PathComponents struct {
	rest string
}

// NewPathComponents returns an iterator over the segments of path.
func NewPathComponents(path string) *PathComponents {
	return &PathComponents{rest: path}
}

// Next returns the next segment and whether one was available.
func (pc *PathComponents) Next() (string, bool) {
	for pc.rest != "" {
		var component string
		if i := strings.IndexByte(pc.rest, '/'); i >= 0 {
			component, pc.rest = pc.rest[:i], pc.rest[i+1:]
		} else {
			component, pc.rest = pc.rest, ""
		}
		if component != "" {
			return component, true
		}
	}
	return "", false
}
