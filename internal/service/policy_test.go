package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestAuthorize(t *testing.T) {
	admin := models.Actor{UserID: "admin", Role: models.RoleAdmin}
	manager := models.Actor{UserID: "mgr", Role: models.RoleManager}
	trainer := models.Actor{UserID: "t-1", Role: models.RoleTrainer}
	otherTrainer := models.Actor{UserID: "t-2", Role: models.RoleTrainer}
	student := models.Actor{UserID: "s-1", Role: models.RoleStudent}
	record := Resource{OwnerID: strPtr("s-1"), TrainerID: strPtr("t-1")}

	cases := []struct {
		name    string
		actor   models.Actor
		cap     Capability
		allowed bool
	}{
		{"admin decides holds", admin, CapDecideHold, true},
		{"student cannot decide holds", student, CapDecideHold, false},
		{"owner requests hold", student, CapRequestHold, true},
		{"trainer cannot request hold", trainer, CapRequestHold, false},
		{"record trainer sets content", trainer, CapSetClassContent, true},
		{"admin cannot set content", admin, CapSetClassContent, false},
		{"other trainer cannot set content", otherTrainer, CapSetClassContent, false},
		{"student gives feedback", student, CapSetFeedback, true},
		{"manager gives feedback", manager, CapSetFeedback, true},
		{"trainer cannot give feedback", trainer, CapSetFeedback, false},
		{"student changes status", student, CapChangeAttendance, true},
		{"record trainer changes status", trainer, CapChangeAttendance, true},
		{"other trainer cannot change status", otherTrainer, CapChangeAttendance, false},
		{"trainer requests leave", trainer, CapRequestLeave, true},
		{"student cannot request leave", student, CapRequestLeave, false},
		{"manager processes leave", manager, CapProcessLeave, true},
		{"trainer cannot process leave", trainer, CapProcessLeave, false},
		{"manager publishes notice", manager, CapPublishNotice, true},
		{"trainer cannot publish notice", trainer, CapPublishNotice, false},
		{"student reads notices", student, CapReadNotices, true},
		{"student submits feedback", student, CapSubmitFeedback, true},
		{"admin cannot submit feedback", admin, CapSubmitFeedback, false},
		{"admin responds to feedback", admin, CapRespondFeedback, true},
		{"student cannot respond to feedback", student, CapRespondFeedback, false},
		{"record trainer reviews attendance", trainer, CapReviewAttendance, true},
		{"other trainer cannot review attendance", otherTrainer, CapReviewAttendance, false},
		{"manager decides review", manager, CapDecideReview, true},
		{"trainer cannot decide review", trainer, CapDecideReview, false},
		{"record trainer views reviews", trainer, CapViewReviews, true},
		{"trainer shares material", otherTrainer, CapShareMaterial, true},
		{"student cannot share material", student, CapShareMaterial, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.cap, record)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, appErrors.ErrForbidden))
		})
	}
}

func TestAuthorizeRequiresIdentity(t *testing.T) {
	err := Authorize(models.Actor{Role: models.RoleAdmin}, CapDecideHold, Resource{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	err = Authorize(models.Actor{UserID: "x", Role: "GUEST"}, CapDecideHold, Resource{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
