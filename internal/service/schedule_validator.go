package service

import (
	"fmt"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

// ValidateAssignmentWindow checks that candidate has a well-formed range and
// does not collide with any of the trainer's existing assignments. Two
// assignments collide when their date ranges share a day and their daily time
// ranges intersect; back-to-back slots do not collide. An existing entry with
// the candidate's own id is skipped so updates can be revalidated.
func ValidateAssignmentWindow(candidate models.TrainerAssignment, existing []models.TrainerAssignment) error {
	if candidate.StartTime >= candidate.EndTime {
		return appErrors.Clone(appErrors.ErrInvalidRange, "start_time must be before end_time")
	}
	if candidate.StartDate.After(candidate.EndDate) {
		return appErrors.Clone(appErrors.ErrInvalidRange, "start_date must not be after end_date")
	}

	for _, other := range existing {
		if other.TrainerID != candidate.TrainerID {
			continue
		}
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(other) {
			return appErrors.Clone(appErrors.ErrOverlap, fmt.Sprintf(
				"trainer already assigned %s to %s, %s-%s (assignment %s)",
				other.StartDate.Format(dto.DateLayout), other.EndDate.Format(dto.DateLayout),
				other.StartTime, other.EndTime, other.ID,
			))
		}
	}
	return nil
}
