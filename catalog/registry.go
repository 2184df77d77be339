package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/openmoniker/openmoniker/errors"
)

// Registry is the in-memory store of catalog nodes for one snapshot
// generation. It is read-heavy: hundreds of concurrent resolutions against
// the tree while a background reloader may atomically swap it.
type Registry struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	children map[string]map[string]bool // parent path -> child paths
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		nodes:    make(map[string]*Node),
		children: make(map[string]map[string]bool),
	}
}

// Register adds a node to the registry. Duplicate paths within one snapshot
// are rejected.
func (r *Registry) Register(node *Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[node.Path]; exists {
		return errors.Wrapf(errors.ErrConflict, "node already registered at %q", node.Path)
	}
	r.nodes[node.Path] = node
	r.indexChildLocked(node.Path)
	return nil
}

// RegisterMany adds multiple nodes under one lock acquisition. The first
// duplicate aborts the batch.
func (r *Registry) RegisterMany(nodes []*Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, node := range nodes {
		if _, exists := r.nodes[node.Path]; exists {
			return errors.Wrapf(errors.ErrConflict, "node already registered at %q", node.Path)
		}
		r.nodes[node.Path] = node
		r.indexChildLocked(node.Path)
	}
	return nil
}

// indexChildLocked records path in its parent's children set. Caller holds
// the write lock.
func (r *Registry) indexChildLocked(path string) {
	parent := ParentPath(path)
	if parent == nil {
		return
	}
	if r.children[*parent] == nil {
		r.children[*parent] = make(map[string]bool)
	}
	r.children[*parent][path] = true
}

// Get returns the node at path, or nil when unregistered
func (r *Registry) Get(path string) *Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodes[path]
}

// GetOrVirtual returns the node at path, or a synthesized non-leaf node when
// no node is registered there. Virtual nodes never enter the registry, never
// carry bindings, and never appear in listings.
func (r *Registry) GetOrVirtual(path string) *Node {
	if node := r.Get(path); node != nil {
		return node
	}
	return &Node{Path: path, IsLeaf: false}
}

// Exists reports whether a node is registered at path
func (r *Registry) Exists(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.nodes[path]
	return ok
}

// Len returns the number of registered nodes
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Children returns the direct child nodes of path, sorted by path for
// stable-within-snapshot ordering
func (r *Registry) Children(path string) []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	childPaths := r.children[path]
	result := make([]*Node, 0, len(childPaths))
	for p := range childPaths {
		if node, ok := r.nodes[p]; ok {
			result = append(result, node)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// ChildrenPaths returns the sorted paths of direct children
func (r *Registry) ChildrenPaths(path string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	childPaths := r.children[path]
	result := make([]string, 0, len(childPaths))
	for p := range childPaths {
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}

// ResolveOwnership walks the ancestor chain root→self and composes effective
// ownership. Each field inherits independently from the nearest ancestor that
// defines it; the provenance field records where.
func (r *Registry) ResolveOwnership(path string) *ResolvedOwnership {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := append(AncestorPaths(path), path)
	result := &ResolvedOwnership{}

	for _, p := range chain {
		node, ok := r.nodes[p]
		if !ok || node.Ownership == nil {
			continue
		}
		o := node.Ownership
		at := p

		if o.AccountableOwner != nil {
			result.AccountableOwner = o.AccountableOwner
			result.AccountableOwnerSource = &at
		}
		if o.DataSpecialist != nil {
			result.DataSpecialist = o.DataSpecialist
			result.DataSpecialistSource = &at
		}
		if o.SupportChannel != nil {
			result.SupportChannel = o.SupportChannel
			result.SupportChannelSource = &at
		}
		if o.ADOP != nil {
			result.ADOP = o.ADOP
			result.ADOPSource = &at
		}
		if o.ADS != nil {
			result.ADS = o.ADS
			result.ADSSource = &at
		}
		if o.ADAL != nil {
			result.ADAL = o.ADAL
			result.ADALSource = &at
		}
		if o.ADOPName != nil {
			result.ADOPName = o.ADOPName
			result.ADOPNameSource = &at
		}
		if o.ADSName != nil {
			result.ADSName = o.ADSName
			result.ADSNameSource = &at
		}
		if o.ADALName != nil {
			result.ADALName = o.ADALName
			result.ADALNameSource = &at
		}
		if o.UI != nil {
			result.UI = o.UI
			result.UISource = &at
		}
	}

	return result
}

// FindSourceBinding locates the binding serving a path: the exact node when
// its status is servable, else the nearest servable ancestor with a binding.
// Returns (nil, "") when none is found.
func (r *Registry) FindSourceBinding(path string) (*SourceBinding, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if node, ok := r.nodes[path]; ok && node.SourceBinding != nil && servableStatus(node.Status) {
		return node.SourceBinding, path
	}

	ancestors := AncestorPaths(path)
	for i := len(ancestors) - 1; i >= 0; i-- {
		if node, ok := r.nodes[ancestors[i]]; ok && node.SourceBinding != nil && servableStatus(node.Status) {
			return node.SourceBinding, ancestors[i]
		}
	}

	return nil, ""
}

// AllPaths returns all registered paths, sorted
func (r *Registry) AllPaths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.nodes))
	for p := range r.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// AllNodes returns all registered nodes in unspecified order
func (r *Registry) AllNodes() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]*Node, 0, len(r.nodes))
	for _, node := range r.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}

// AtomicReplace swaps in a wholly new snapshot. Both maps are built outside
// the critical section; the swap itself is two assignments under the write
// lock, so readers always observe a coherent snapshot.
func (r *Registry) AtomicReplace(newNodes []*Node) {
	nodes := make(map[string]*Node, len(newNodes))
	children := make(map[string]map[string]bool)

	for _, node := range newNodes {
		nodes[node.Path] = node
		parent := ParentPath(node.Path)
		if parent == nil {
			continue
		}
		if children[*parent] == nil {
			children[*parent] = make(map[string]bool)
		}
		children[*parent][node.Path] = true
	}

	r.mu.Lock()
	r.nodes = nodes
	r.children = children
	r.mu.Unlock()
}

// FindByStatus returns all nodes with the given lifecycle status
func (r *Registry) FindByStatus(status NodeStatus) []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Node
	for _, node := range r.nodes {
		if node.Status == status {
			result = append(result, node)
		}
	}
	return result
}

// Search matches query as a case-insensitive substring against path, display
// name, description, and tags. Result order is sorted by path; limit caps
// the result count.
func (r *Registry) Search(query string, status *NodeStatus, limit int) []*Node {
	queryLower := strings.ToLower(query)

	r.mu.RLock()
	paths := make([]string, 0, len(r.nodes))
	for p := range r.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	results := make([]*Node, 0, limit)
	for _, p := range paths {
		if len(results) >= limit {
			break
		}
		node := r.nodes[p]
		if status != nil && node.Status != *status {
			continue
		}
		if nodeMatches(node, queryLower) {
			results = append(results, node)
		}
	}
	r.mu.RUnlock()

	return results
}

func nodeMatches(node *Node, queryLower string) bool {
	if strings.Contains(strings.ToLower(node.Path), queryLower) ||
		strings.Contains(strings.ToLower(node.DisplayName), queryLower) ||
		strings.Contains(strings.ToLower(node.Description), queryLower) {
		return true
	}
	for _, tag := range node.Tags {
		if strings.Contains(strings.ToLower(tag), queryLower) {
			return true
		}
	}
	return false
}

// CountByStatus returns node counts keyed by status plus a "total" key
func (r *Registry) CountByStatus() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, node := range r.nodes {
		counts[string(node.Status)]++
	}
	counts["total"] = len(r.nodes)
	return counts
}

// CountBySourceType returns counts of bound nodes keyed by source type
func (r *Registry) CountBySourceType() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, node := range r.nodes {
		if node.SourceBinding != nil {
			counts[string(node.SourceBinding.SourceType)]++
		}
	}
	return counts
}

// ParentPath computes the parent of a path by removing the last segment,
// delimited by whichever of "/" or "." appears last. Root-level paths yield
// the empty string; the empty path has no parent. Both separators are
// first-class so catalogs may intermix them.
func ParentPath(path string) *string {
	if path == "" {
		return nil
	}
	if idx := strings.LastIndexAny(path, "/."); idx != -1 {
		parent := path[:idx]
		return &parent
	}
	root := ""
	return &root
}

// AncestorPaths returns all ancestor paths from root to parent, excluding the
// path itself. Example: "analytics.risk/var" -> ["analytics", "analytics.risk"].
func AncestorPaths(path string) []string {
	var result []string
	current := path
	for {
		idx := strings.LastIndexAny(current, "/.")
		if idx == -1 {
			break
		}
		parent := current[:idx]
		if parent == "" {
			break
		}
		result = append([]string{parent}, result...)
		current = parent
	}
	return result
}
