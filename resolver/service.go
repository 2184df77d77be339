package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openmoniker/openmoniker/cache"
	"github.com/openmoniker/openmoniker/catalog"
	"github.com/openmoniker/openmoniker/moniker"
)

// maxSuccessorDepth bounds the deprecation successor chase
const maxSuccessorDepth = 5

// Service resolves monikers against the catalog registry. It is stateless
// apart from the optional read-through result cache.
type Service struct {
	catalog  *catalog.Registry
	cache    *cache.InMemory // nil when caching is disabled
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

// NewService creates a resolver over the given registry. cache may be nil.
func NewService(reg *catalog.Registry, resultCache *cache.InMemory, cacheTTL time.Duration, logger *zap.SugaredLogger) *Service {
	return &Service{
		catalog:  reg,
		cache:    resultCache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// cacheKey embeds the canonical path first so per-path invalidation can
// delete by prefix.
func cacheKey(path, monikerStr string) string {
	return "resolve:" + path + "\x00" + monikerStr
}

// Resolve translates a moniker string into a source-binding descriptor.
// Returns *ResolutionError, *NotFoundError, or *AccessDeniedError on the
// typed failure paths.
func (s *Service) Resolve(ctx context.Context, monikerStr string, caller *CallerIdentity) (*ResolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := moniker.ParseMoniker(monikerStr)
	if err != nil {
		return nil, &ResolutionError{Message: fmt.Sprintf("invalid moniker: %v", err)}
	}

	path := m.CanonicalPath()

	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey(path, monikerStr)); ok {
			if result, ok := cached.(*ResolveResult); ok {
				return result, nil
			}
		}
	}

	binding, bindingPath := s.catalog.FindSourceBinding(path)
	if binding == nil {
		return nil, &NotFoundError{Path: path}
	}

	node := s.catalog.Get(bindingPath)

	// Deprecation successor chase, bounded at maxSuccessorDepth hops.
	// Exceeding the bound returns the original deprecated binding.
	if node != nil && node.Status == catalog.NodeStatusDeprecated && node.Successor != nil {
		successorPath := *node.Successor
		for depth := 0; depth < maxSuccessorDepth; depth++ {
			successorNode := s.catalog.Get(successorPath)
			if successorNode == nil {
				break
			}
			if successorNode.Status != catalog.NodeStatusDeprecated || successorNode.Successor == nil {
				// End of the chain: attempt a fresh binding discovery here.
				newBinding, newBindingPath := s.catalog.FindSourceBinding(successorPath)
				if newBinding != nil {
					redirectedFrom := path
					result := s.buildResult(m, successorPath, newBinding, newBindingPath, successorNode)
					result.RedirectedFrom = &redirectedFrom

					s.logger.Infow("Resolved via successor redirect",
						"from", redirectedFrom,
						"to", successorPath,
						"user", callerID(caller),
					)
					if err := s.applyPolicy(s.catalog.Get(newBindingPath), m, result); err != nil {
						return nil, err
					}
					s.cacheResult(monikerStr, result)
					return result, nil
				}
				break
			}
			successorPath = *successorNode.Successor
		}
	}

	result := s.buildResult(m, path, binding, bindingPath, node)
	if err := s.applyPolicy(node, m, result); err != nil {
		return nil, err
	}

	s.cacheResult(monikerStr, result)
	return result, nil
}

func callerID(caller *CallerIdentity) string {
	if caller == nil {
		return "anonymous"
	}
	return caller.UserID
}

// applyPolicy validates the binding node's access policy against the request
// segments. Denials become *AccessDeniedError; warnings annotate the result.
func (s *Service) applyPolicy(node *catalog.Node, m *moniker.Moniker, result *ResolveResult) error {
	if node == nil || node.AccessPolicy == nil {
		return nil
	}

	allowed, message, estimatedRows := node.AccessPolicy.Validate(m.Path.Segments)
	if !allowed {
		return &AccessDeniedError{
			Message:       *message,
			EstimatedRows: &estimatedRows,
		}
	}
	if message != nil {
		result.Warning = message
	}
	return nil
}

func (s *Service) cacheResult(monikerStr string, result *ResolveResult) {
	if s.cache == nil {
		return
	}
	s.cache.SetWithTTL(cacheKey(result.Path, monikerStr), result, s.cacheTTL)
}

// InvalidateCache drops cached results under path. Returns the entry count
// removed; zero when caching is disabled.
func (s *Service) InvalidateCache(path string) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.DeletePrefix("resolve:" + path)
}

func (s *Service) buildResult(m *moniker.Moniker, path string, binding *catalog.SourceBinding, bindingPath string, node *catalog.Node) *ResolveResult {
	ownership := s.catalog.ResolveOwnership(path)

	source := &ResolvedSource{
		SourceType: string(binding.SourceType),
		Connection: make(map[string]interface{}),
		Params:     make(map[string]interface{}),
		ReadOnly:   binding.ReadOnly,
	}

	// Connection is the config minus the reserved query template.
	for k, v := range binding.Config {
		if k != "query" {
			source.Connection[k] = v
		}
	}
	for k, v := range m.Params {
		source.Params[k] = v
	}

	if queryVal, ok := binding.Config["query"]; ok {
		if queryStr, ok := queryVal.(string); ok {
			rendered := renderQuery(queryStr, m)
			source.Query = &rendered
		}
	}
	if binding.Schema != nil {
		source.Schema = binding.Schema
	}

	// Sub-path: the request path below the binding node, for downstream
	// adapters. Null when the binding is at the exact path.
	var subPath *string
	if bindingPath != path {
		if rest, ok := trimPathPrefix(path, bindingPath); ok {
			subPath = &rest
		}
	}

	return &ResolveResult{
		Moniker:     m.String(),
		Path:        path,
		Source:      source,
		Ownership:   ownership,
		Node:        node,
		BindingPath: bindingPath,
		SubPath:     subPath,
	}
}

// trimPathPrefix strips "prefix/" from path
func trimPathPrefix(path, prefix string) (string, bool) {
	full := prefix + "/"
	if len(path) > len(full) && path[:len(full)] == full {
		return path[len(full):], true
	}
	return "", false
}

// Describe returns metadata for a path. It never chases successors and never
// applies access policy; unregistered paths yield a virtual node.
func (s *Service) Describe(ctx context.Context, path string) (*DescribeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node := s.catalog.GetOrVirtual(path)
	ownership := s.catalog.ResolveOwnership(path)
	binding, _ := s.catalog.FindSourceBinding(path)

	var sourceType *string
	if binding != nil {
		st := string(binding.SourceType)
		sourceType = &st
	}

	return &DescribeResult{
		Node:             node,
		Ownership:        ownership,
		Moniker:          "moniker://" + path,
		Path:             path,
		HasSourceBinding: binding != nil,
		SourceType:       sourceType,
	}, nil
}

// List returns the direct children of a path with its resolved ownership
func (s *Service) List(ctx context.Context, path string) (*ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &ListResult{
		Children:  s.catalog.ChildrenPaths(path),
		Moniker:   "moniker://" + path,
		Path:      path,
		Ownership: s.catalog.ResolveOwnership(path),
	}, nil
}

// Lineage returns the ancestor chain root→self with resolved ownership
func (s *Service) Lineage(ctx context.Context, path string) (*LineageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chain := append(catalog.AncestorPaths(path), path)
	hierarchy := make([]LineageLevel, 0, len(chain))
	for _, p := range chain {
		level := LineageLevel{Path: p}
		if node := s.catalog.Get(p); node != nil {
			level.Registered = true
			status := string(node.Status)
			level.Status = &status
			isLeaf := node.IsLeaf
			level.IsLeaf = &isLeaf
		}
		hierarchy = append(hierarchy, level)
	}

	return &LineageResult{
		Path:      path,
		Hierarchy: hierarchy,
		Ownership: s.catalog.ResolveOwnership(path),
	}, nil
}
