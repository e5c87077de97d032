package service

import (
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

// Capability names an action guarded by Authorize.
type Capability string

const (
	CapManageAssignments Capability = "assignments:manage"
	CapViewAssignments   Capability = "assignments:view"
	CapManageEnrollments Capability = "enrollments:manage"
	CapViewEnrollment    Capability = "enrollments:view"
	CapRequestHold       Capability = "holds:request"
	CapDecideHold        Capability = "holds:decide"
	CapViewHolds         Capability = "holds:view"
	CapMarkAttendance    Capability = "attendance:mark"
	CapViewAttendance    Capability = "attendance:view"
	CapSetClassContent   Capability = "attendance:class_content"
	CapSetFeedback       Capability = "attendance:feedback"
	CapChangeAttendance  Capability = "attendance:status"
	CapRequestLeave      Capability = "leave:request"
	CapProcessLeave      Capability = "leave:process"
	CapViewLeaveOfOthers Capability = "leave:view_all"
	CapPublishNotice     Capability = "notices:publish"
	CapReadNotices       Capability = "notices:read"
	CapSubmitFeedback    Capability = "feedback:submit"
	CapRespondFeedback   Capability = "feedback:respond"
	CapViewFeedback      Capability = "feedback:view"
	CapReviewAttendance  Capability = "reviews:submit"
	CapDecideReview      Capability = "reviews:decide"
	CapViewReviews       Capability = "reviews:view"
	CapShareMaterial     Capability = "materials:share"
	CapReadMaterials     Capability = "materials:read"
	CapRemoveMaterial    Capability = "materials:remove"
)

// Resource carries the ownership facts of the record being touched.
type Resource struct {
	// OwnerID is the student or requester the record belongs to.
	OwnerID *string
	// TrainerID is the trainer attached to the record.
	TrainerID *string
}

// Authorize is the single permission check for every rule-engine operation.
func Authorize(actor models.Actor, capability Capability, res Resource) error {
	if actor.UserID == "" || !actor.Role.Valid() {
		return appErrors.ErrUnauthorized
	}

	staff := actor.Role.Staff()
	owner := actor.Is(res.OwnerID)
	trainer := actor.Is(res.TrainerID)

	var allowed bool
	switch capability {
	case CapManageAssignments, CapManageEnrollments, CapDecideHold, CapProcessLeave, CapViewLeaveOfOthers,
		CapPublishNotice, CapRespondFeedback, CapDecideReview:
		allowed = staff
	case CapReadNotices, CapReadMaterials:
		allowed = true
	case CapViewAssignments:
		allowed = staff || trainer
	case CapViewReviews:
		allowed = staff || (trainer && actor.Role == models.RoleTrainer)
	case CapViewEnrollment, CapViewAttendance, CapChangeAttendance:
		allowed = staff || owner || trainer
	case CapRequestHold, CapViewHolds, CapSetFeedback, CapViewFeedback, CapRemoveMaterial:
		allowed = staff || owner
	case CapMarkAttendance:
		allowed = staff || actor.Role == models.RoleTrainer
	case CapSetClassContent, CapReviewAttendance:
		allowed = trainer
	case CapSubmitFeedback:
		allowed = actor.Role == models.RoleStudent
	case CapShareMaterial:
		allowed = staff || actor.Role == models.RoleTrainer
	case CapRequestLeave:
		allowed = staff || actor.Role == models.RoleTrainer
	}

	if !allowed {
		return appErrors.Clone(appErrors.ErrForbidden, "permission denied: "+string(capability))
	}
	return nil
}
