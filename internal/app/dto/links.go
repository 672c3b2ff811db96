// Package dto defines the data transfer objects exchanged between the link
// state manager, the validator, and the external link store.
package dto

import (
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// CreateExerciseLinkRequest is the payload for creating a new link from the
// current exercise to a target.
type CreateExerciseLinkRequest struct {
	TargetExerciseID string `json:"targetExerciseId" validate:"required,exercise_id"`
	LinkType         string `json:"linkType" validate:"required,link_type"`
	DisplayOrder     int    `json:"displayOrder" validate:"gte=0"`
}

// UpdateExerciseLinkRequest updates a link's display order. Links are always
// written back active; there is no reachable soft-delete state.
type UpdateExerciseLinkRequest struct {
	DisplayOrder int  `json:"displayOrder" validate:"gte=0"`
	IsActive     bool `json:"isActive"`
}

// LinkQuery narrows a GetLinks call to a single link type and controls
// whether target exercise details are expanded.
type LinkQuery struct {
	Type           *link.Type `json:"linkType,omitempty"`
	IncludeDetails bool       `json:"includeExerciseDetails,omitempty"`
}

// ExerciseLinksResponse is the authoritative link snapshot returned by the
// external store for one exercise.
type ExerciseLinksResponse struct {
	ExerciseID   string               `json:"exerciseId"`
	ExerciseName string               `json:"exerciseName"`
	Links        []*link.ExerciseLink `json:"links"`
	TotalCount   int                  `json:"totalCount"`
}

// LinkUpdate pairs a link ID with its update payload for bulk operations.
type LinkUpdate struct {
	LinkID  string                    `json:"linkId" validate:"required"`
	Request UpdateExerciseLinkRequest `json:"request"`
}
