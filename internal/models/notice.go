package models

import "time"

// NoticeAudience selects which roles see a notice.
type NoticeAudience string

const (
	AudienceStudents         NoticeAudience = "STUDENTS"
	AudienceStudentsTrainers NoticeAudience = "STUDENTS_TRAINERS"
	AudienceAll              NoticeAudience = "ALL"
	AudienceAdminsManagers   NoticeAudience = "ADMINS_MANAGERS"
)

// Valid reports whether the audience is a supported value.
func (a NoticeAudience) Valid() bool {
	switch a {
	case AudienceStudents, AudienceStudentsTrainers, AudienceAll, AudienceAdminsManagers:
		return true
	default:
		return false
	}
}

// AudiencesFor lists the audiences whose notices the role may read.
// Staff read every notice since they author them.
func AudiencesFor(role UserRole) []NoticeAudience {
	switch role {
	case RoleAdmin, RoleManager:
		return []NoticeAudience{AudienceStudents, AudienceStudentsTrainers, AudienceAll, AudienceAdminsManagers}
	case RoleTrainer:
		return []NoticeAudience{AudienceStudentsTrainers, AudienceAll}
	case RoleStudent:
		return []NoticeAudience{AudienceStudents, AudienceStudentsTrainers, AudienceAll}
	default:
		return nil
	}
}

// Notice is an announcement posted by staff.
type Notice struct {
	ID        string         `db:"id" json:"id"`
	Title     string         `db:"title" json:"title"`
	Content   string         `db:"content" json:"content"`
	Audience  NoticeAudience `db:"audience" json:"audience"`
	AuthorID  string         `db:"author_id" json:"author_id"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// NoticeFilter scopes notice listings.
type NoticeFilter struct {
	Audiences []NoticeAudience
	Limit     int
}
