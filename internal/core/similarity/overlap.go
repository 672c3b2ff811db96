// Package similarity provides pure scoring functions over exercise catalog
// records. No I/O, no shared state.
package similarity

import (
	"math"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// Weights for the muscle-group overlap score. Primary-to-primary overlap is
// the dominant signal of exercise similarity; cross-role overlap is weak.
const (
	primaryWeight   = 0.6
	secondaryWeight = 0.3
	crossWeight     = 0.1
)

// MuscleGroupOverlap computes a 0-100 similarity score between two exercises
// from their primary/secondary muscle-group annotations. Either exercise
// missing muscle data scores 0. The result is symmetric: the cross terms sum
// both directions and the normalization denominator takes the larger of the
// two muscle counts.
func MuscleGroupOverlap(source, target *link.Exercise) int {
	if source == nil || target == nil ||
		len(source.MuscleGroups) == 0 || len(target.MuscleGroups) == 0 {
		return 0
	}

	sourcePrimary := source.MuscleSet(link.RolePrimary)
	sourceSecondary := source.MuscleSet(link.RoleSecondary)
	targetPrimary := target.MuscleSet(link.RolePrimary)
	targetSecondary := target.MuscleSet(link.RoleSecondary)

	primaryOverlap := intersectCount(sourcePrimary, targetPrimary)
	secondaryOverlap := intersectCount(sourceSecondary, targetSecondary)
	crossOverlap := intersectCount(sourcePrimary, targetSecondary) +
		intersectCount(sourceSecondary, targetPrimary)

	totalSource := len(sourcePrimary) + len(sourceSecondary)
	totalTarget := len(targetPrimary) + len(targetSecondary)
	maxMuscles := totalSource
	if totalTarget > maxMuscles {
		maxMuscles = totalTarget
	}
	if maxMuscles == 0 {
		return 0
	}

	weighted := float64(primaryOverlap)*primaryWeight +
		float64(secondaryOverlap)*secondaryWeight +
		float64(crossOverlap)*crossWeight

	pct := int(math.Round(weighted / float64(maxMuscles) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// SharedTypes returns the case-insensitive intersection of the two exercises'
// type tags, lowercased. Used by the alternative-link compatibility rule and
// the suggestion ranker.
func SharedTypes(source, target *link.Exercise) []string {
	sourceTags := source.TagSet()
	targetTags := target.TagSet()

	var shared []string
	for tag := range sourceTags {
		if _, ok := targetTags[tag]; ok {
			shared = append(shared, tag)
		}
	}
	return shared
}

func intersectCount(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
