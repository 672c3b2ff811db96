package validation

import (
	"fmt"

	corelink "github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// LinkSetValidationOptions controls optional validation checks.
type LinkSetValidationOptions struct {
	// CheckCycles enables full directed-cycle detection over the set. The
	// interactive session only checks one hop back; this is the offline,
	// whole-graph variant for imported or persisted data.
	CheckCycles bool
}

// ValidateLinkSet performs structural validation on a set of exercise links.
// It is intended for link sets loaded from external sources where the store's
// in-method guards may have been bypassed.
func ValidateLinkSet(links []*corelink.ExerciseLink, opts ...LinkSetValidationOptions) error {
	type linkKey struct{ source, target, linkType string }
	seen := make(map[linkKey]struct{})

	for _, l := range links {
		if l == nil {
			return fmt.Errorf("nil link encountered")
		}
		if err := l.Validate(); err != nil {
			return err
		}
		if !l.IsActive {
			continue
		}
		k := linkKey{l.SourceExerciseID, l.TargetExerciseID, l.Type.String()}
		if _, dup := seen[k]; dup {
			return corelink.ErrDuplicateLink
		}
		seen[k] = struct{}{}
	}

	var cfg LinkSetValidationOptions
	if len(opts) > 0 {
		cfg = opts[0]
	}
	if cfg.CheckCycles {
		if hasCycle(links) {
			return corelink.ErrCyclicLinks
		}
	}

	return nil
}

// hasCycle detects any cycle among active links using DFS with coloring.
func hasCycle(links []*corelink.ExerciseLink) bool {
	const (
		white = 0 // unvisited
		gray  = 1 // visiting
		black = 2 // visited
	)
	adj := make(map[string][]string)
	nodes := make(map[string]struct{})
	for _, l := range links {
		if l == nil || !l.IsActive {
			continue
		}
		adj[l.SourceExerciseID] = append(adj[l.SourceExerciseID], l.TargetExerciseID)
		nodes[l.SourceExerciseID] = struct{}{}
		nodes[l.TargetExerciseID] = struct{}{}
	}
	color := make(map[string]int, len(nodes))
	var dfs func(string) bool
	dfs = func(u string) bool {
		color[u] = gray
		for _, v := range adj[u] {
			if color[v] == gray {
				return true // back-edge
			}
			if color[v] == white {
				if dfs(v) {
					return true
				}
			}
		}
		color[u] = black
		return false
	}
	for id := range nodes {
		if color[id] == white {
			if dfs(id) {
				return true
			}
		}
	}
	return false
}
