package openmat

import (
	"strings"
	"time"
)

// Discipline values as stored in production data.
const (
	DisciplineBJJ       = "Jiu-Jitsu Brésilien"
	DisciplineGrappling = "Grappling"
	DisciplineLutaLivre = "Luta Livre"
)

// Level values.
const (
	LevelAll          = "Tous niveaux"
	LevelBeginner     = "Débutants"
	LevelIntermediate = "Intermédiaires"
	LevelAdvanced     = "Avancés"
	LevelCompetitor   = "Compétiteurs"
)

// Speciality values.
const (
	SpecialityGi   = "Gi"
	SpecialityNoGi = "NoGi"
	SpecialityBoth = "Gi/NoGi"
)

// OpenMat is one published open mat event. Listings are create-only:
// no handler updates or deletes them.
type OpenMat struct {
	ID           string `firestore:"-" json:"id"`
	ClubName     string `firestore:"club_name" json:"club_name"`
	CoachName    string `firestore:"coach_name,omitempty" json:"coach_name,omitempty"`
	City         string `firestore:"city" json:"city"`
	Address      string `firestore:"address,omitempty" json:"address,omitempty"`
	Date         string `firestore:"date" json:"date"` // YYYY-MM-DD
	StartTime    string `firestore:"start_time" json:"start_time"`
	EndTime      string `firestore:"end_time" json:"end_time"`
	Discipline   string `firestore:"discipline,omitempty" json:"discipline,omitempty"`
	Level        string `firestore:"level,omitempty" json:"level,omitempty"`
	Speciality   string `firestore:"speciality,omitempty" json:"speciality,omitempty"`
	Description  string `firestore:"description,omitempty" json:"description,omitempty"`
	ContactEmail string `firestore:"contact_email,omitempty" json:"contact_email,omitempty"`
	ContactPhone string `firestore:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	Website      string `firestore:"website,omitempty" json:"website,omitempty"`
	ImageURL     string `firestore:"image_url,omitempty" json:"image_url,omitempty"`

	CreatedBy    string    `firestore:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt    time.Time `firestore:"created_at" json:"created_at"`
	SearchTokens []string  `firestore:"search_tokens,omitempty" json:"-"`
}

// CreateInput is the submission payload. Required fields mirror the form:
// a listing without club, city, date or times is rejected before any
// network write.
type CreateInput struct {
	ClubName     string `json:"club_name" validate:"required,max=120"`
	CoachName    string `json:"coach_name,omitempty" validate:"max=120"`
	City         string `json:"city" validate:"required,max=120"`
	Address      string `json:"address,omitempty" validate:"max=250"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Discipline   string `json:"discipline,omitempty" validate:"omitempty,oneof='Jiu-Jitsu Brésilien' 'Grappling' 'Luta Livre'"`
	Level        string `json:"level,omitempty" validate:"omitempty,oneof='Tous niveaux' 'Débutants' 'Intermédiaires' 'Avancés' 'Compétiteurs'"`
	Speciality   string `json:"speciality,omitempty" validate:"omitempty,oneof=Gi NoGi Gi/NoGi"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone,omitempty" validate:"max=30"`
	Website      string `json:"website,omitempty" validate:"omitempty,url"`
	ImageURL     string `json:"image_url,omitempty" validate:"omitempty,url"`
}

func (in *CreateInput) Trim() {
	in.ClubName = strings.TrimSpace(in.ClubName)
	in.CoachName = strings.TrimSpace(in.CoachName)
	in.City = strings.TrimSpace(in.City)
	in.Address = strings.TrimSpace(in.Address)
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.Description = strings.TrimSpace(in.Description)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.Website = strings.TrimSpace(in.Website)
}

// DayKey reduces a stored date to its calendar day. Values may arrive as
// plain YYYY-MM-DD or as a full timestamp; both reduce to the same key so
// date filtering never compares time-of-day components.
func DayKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	// Unparseable values fall back to a raw day prefix.
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
