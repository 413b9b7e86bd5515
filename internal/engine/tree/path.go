package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// IndexPath returns the child indices leading from root down to id. The path
// of root itself is empty.
func (d *Document) IndexPath(root, id NodeID) ([]int, error) {
	var path []int
	for cur := id; cur != root; {
		parent := d.Parent(cur)
		if parent == Nil {
			return nil, fmt.Errorf("node %d under root %d: %w", id, root, ErrNotInTree)
		}
		path = append(path, d.IndexOf(cur))
		cur = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Follow descends from root along the child indices in path.
func (d *Document) Follow(root NodeID, path []int) (NodeID, error) {
	cur := root
	for depth, i := range path {
		next := d.Child(cur, i)
		if next == Nil {
			return Nil, fmt.Errorf("step %d (index %d) under %d: %w", depth, i, cur, ErrNotInTree)
		}
		cur = next
	}
	return cur, nil
}

// PathOf renders the index path of id under root as "i/j/k". The root itself
// is "".
func (d *Document) PathOf(root, id NodeID) (string, error) {
	path, err := d.IndexPath(root, id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "/"), nil
}

// NodeAt resolves a path produced by PathOf.
func (d *Document) NodeAt(root NodeID, path string) (NodeID, error) {
	if path == "" {
		return root, nil
	}
	parts := strings.Split(path, "/")
	idx := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Nil, fmt.Errorf("path %q: %w", path, ErrInvalidPath)
		}
		idx[i] = n
	}
	return d.Follow(root, idx)
}
