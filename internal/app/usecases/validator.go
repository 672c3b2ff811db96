package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/similarity"
)

// LinkValidator runs the pre-flight checks invoked before any mutating call
// reaches the external link store. All checks are read-only against supplied
// or fetched snapshots; validation failures never reach the network.
type LinkValidator struct {
	store LinkStore
}

// NewLinkValidator creates a validator backed by the given store. The store
// is only used by the circular-reference check, which must query the target
// exercise's existing edges.
func NewLinkValidator(store LinkStore) *LinkValidator {
	return &LinkValidator{store: store}
}

// ValidateExerciseTypeCompatibility checks that the source exercise may
// originate links of the given type. Sequenced link types (Warmup/Cooldown)
// require the Workout tag on the source.
func (v *LinkValidator) ValidateExerciseTypeCompatibility(source *link.Exercise, linkType link.Type) dto.ValidationResult {
	if source == nil {
		return dto.ValidationFailure("Exercise cannot be null", dto.CodeExerciseNull)
	}

	if len(source.TagSet()) == 0 {
		return dto.ValidationFailure(
			"Source exercise must have at least one exercise type",
			dto.CodeMissingSourceTypes)
	}

	if linkType.IsSequenced() && !source.HasTag(link.TagWorkout) {
		return dto.ValidationFailure(
			fmt.Sprintf("Only exercises of type '%s' can have %s links. This exercise has types: %s",
				link.TagWorkout, strings.ToLower(linkType.String()), tagList(source)),
			dto.CodeInvalidExerciseType)
	}

	return dto.ValidationSuccess()
}

// ValidateAlternativeCompatibility checks that two exercises may be linked as
// alternatives: both present, distinct, both typed, and sharing at least one
// exercise type.
func (v *LinkValidator) ValidateAlternativeCompatibility(source, target *link.Exercise) dto.ValidationResult {
	if source == nil {
		return dto.ValidationFailure("Source exercise cannot be null", dto.CodeSourceExerciseNull)
	}
	if target == nil {
		return dto.ValidationFailure("Target exercise cannot be null", dto.CodeTargetExerciseNull)
	}
	if source.ID == target.ID {
		return dto.ValidationFailure("An exercise cannot be an alternative to itself", dto.CodeSelfReference)
	}

	if len(source.TagSet()) == 0 {
		return dto.ValidationFailure(
			"Source exercise must have at least one exercise type",
			dto.CodeMissingSourceTypes)
	}
	if len(target.TagSet()) == 0 {
		return dto.ValidationFailure(
			"Target exercise must have at least one exercise type",
			dto.CodeMissingTargetTypes)
	}

	if len(similarity.SharedTypes(source, target)) == 0 {
		return dto.ValidationFailure(
			fmt.Sprintf("Alternative exercises must share at least one exercise type. Source: [%s], Target: [%s]",
				tagList(source), tagList(target)),
			dto.CodeNoSharedTypes)
	}

	return dto.ValidationSuccess()
}

// ValidateCircularReference checks that creating source -> target would not
// close a cycle. This is a one-hop check: it inspects only the target's
// direct outgoing edges, not the full transitive closure. Cycles of length
// three or more are left to the store's own validation. A store failure
// during the check passes validation for the same reason.
func (v *LinkValidator) ValidateCircularReference(ctx context.Context, sourceID, targetID string, linkType link.Type) dto.ValidationResult {
	if sourceID == "" || targetID == "" {
		return dto.ValidationFailure("Exercise IDs cannot be null or empty", dto.CodeInvalidExerciseID)
	}
	if sourceID == targetID {
		return dto.ValidationFailure("An exercise cannot be linked to itself", dto.CodeSelfReference)
	}

	targetLinks, err := v.store.GetLinks(ctx, targetID, dto.LinkQuery{})
	if err != nil {
		// The store is the authority and re-validates on create.
		return dto.ValidationSuccess()
	}

	for _, l := range targetLinks.Links {
		if l.TargetExerciseID == sourceID && l.IsActive {
			return dto.ValidationFailure(
				"This would create a circular reference. The target exercise already has a link back to the source exercise",
				dto.CodeCircularReference)
		}
	}

	return dto.ValidationSuccess()
}

// ValidateMaximumLinks checks the per-source cap for sequenced link types.
// Alternative links are not capped.
func (v *LinkValidator) ValidateMaximumLinks(currentCount int, linkType link.Type) dto.ValidationResult {
	if !linkType.IsCapped() {
		return dto.ValidationSuccess()
	}
	if currentCount >= link.MaxLinksPerType {
		return dto.ValidationFailure(
			fmt.Sprintf("Maximum of %d %s links allowed per exercise", link.MaxLinksPerType, strings.ToLower(linkType.String())),
			dto.CodeMaxLinksReached)
	}
	return dto.ValidationSuccess()
}

// ValidateDuplicateLink checks that no active link with the same target and
// type already exists in the supplied edge set.
func (v *LinkValidator) ValidateDuplicateLink(existing []*link.ExerciseLink, targetID string, linkType link.Type) dto.ValidationResult {
	for _, l := range existing {
		if l == nil {
			continue
		}
		if l.TargetExerciseID == targetID && l.Type == linkType && l.IsActive {
			return dto.ValidationFailure(
				fmt.Sprintf("This exercise is already linked as a %s exercise", strings.ToLower(linkType.String())),
				dto.CodeDuplicateLink)
		}
	}
	return dto.ValidationSuccess()
}

// ValidateCreateLink composes the pre-flight checks in a fixed order: type
// compatibility, maximum links, duplicate, circular reference. The circular
// check is the only one that touches the store and is deliberately last.
func (v *LinkValidator) ValidateCreateLink(
	ctx context.Context,
	source *link.Exercise,
	targetID string,
	linkType link.Type,
	existing []*link.ExerciseLink,
) dto.ValidationResult {
	if result := v.ValidateExerciseTypeCompatibility(source, linkType); !result.Valid {
		return result
	}

	count := 0
	for _, l := range existing {
		if l != nil && l.Type == linkType && l.IsActive {
			count++
		}
	}
	if result := v.ValidateMaximumLinks(count, linkType); !result.Valid {
		return result
	}

	if result := v.ValidateDuplicateLink(existing, targetID, linkType); !result.Valid {
		return result
	}

	return v.ValidateCircularReference(ctx, source.ID, targetID, linkType)
}

// tagList renders an exercise's type tags for error messages, sorted for
// stable output.
func tagList(e *link.Exercise) string {
	if e == nil || len(e.Types) == 0 {
		return "Unknown"
	}
	var names []string
	for _, t := range e.Types {
		if t.Value != "" {
			names = append(names, t.Value)
		}
	}
	if len(names) == 0 {
		return "Unknown"
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
