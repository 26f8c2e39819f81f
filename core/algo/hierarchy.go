package algo

import (
	"strings"

	"github.com/huangsam/hotmap/schema"
)

// buildNode is the mutable accumulator used while the tree is assembled.
// Children keep first-insertion order.
type buildNode struct {
	name     string
	order    []string
	children map[string]*buildNode
	leaf     *schema.LeafMetrics
}

func newBuildNode(name string) *buildNode {
	return &buildNode{name: name, children: make(map[string]*buildNode)}
}

// child returns the named child, creating it on first use.
func (n *buildNode) child(name string) *buildNode {
	c, ok := n.children[name]
	if !ok {
		c = newBuildNode(name)
		n.children[name] = c
		n.order = append(n.order, name)
	}
	return c
}

// freeze converts the accumulator into the immutable output tree.
func (n *buildNode) freeze() *schema.HierarchyNode {
	if n.leaf != nil && len(n.order) == 0 {
		return &schema.HierarchyNode{Name: n.name, LeafMetrics: n.leaf}
	}
	out := &schema.HierarchyNode{Name: n.name}
	if len(n.order) > 0 {
		out.Children = make([]*schema.HierarchyNode, 0, len(n.order))
		for _, name := range n.order {
			out.Children = append(out.Children, n.children[name].freeze())
		}
	}
	return out
}

// BuildHierarchy groups entries into a directory tree rooted at schema.RootNodeName.
// Directories carry no metrics; each file becomes a leaf with its entry's metrics.
func BuildHierarchy(entries []schema.HotspotEntry) *schema.HierarchyNode {
	root := newBuildNode(schema.RootNodeName)
	for _, e := range entries {
		segments := strings.Split(e.Path, "/")
		current := root
		for _, dir := range segments[:len(segments)-1] {
			current = current.child(dir)
		}
		leaf := current.child(segments[len(segments)-1])
		leaf.leaf = &schema.LeafMetrics{
			FullPath:      e.Path,
			Size:          e.Lines,
			Revisions:     e.Revisions,
			HotspotScore:  e.HotspotScore,
			NormRevisions: e.NormRevisions,
			Authors:       e.Authors,
			Churn:         e.TotalChurn,
			Commits:       e.Commits,
		}
	}
	return root.freeze()
}

// LeafPaths returns the reconstructed path of every leaf, depth first.
func LeafPaths(root *schema.HierarchyNode) []string {
	var paths []string
	var walk func(n *schema.HierarchyNode, prefix []string)
	walk = func(n *schema.HierarchyNode, prefix []string) {
		if n.IsLeaf() {
			paths = append(paths, strings.Join(append(prefix, n.Name), "/"))
			return
		}
		for _, c := range n.Children {
			walk(c, append(prefix[:len(prefix):len(prefix)], n.Name))
		}
	}
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		walk(c, nil)
	}
	return paths
}

// FindLeaf returns the leaf for path, or nil.
func FindLeaf(root *schema.HierarchyNode, path string) *schema.HierarchyNode {
	current := root
	for seg := range strings.SplitSeq(path, "/") {
		if current == nil {
			return nil
		}
		var next *schema.HierarchyNode
		for _, c := range current.Children {
			if c.Name == seg {
				next = c
				break
			}
		}
		current = next
	}
	if current == nil || !current.IsLeaf() {
		return nil
	}
	return current
}
