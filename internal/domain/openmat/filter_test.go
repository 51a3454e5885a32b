package openmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleMats() []OpenMat {
	return []OpenMat{
		{ID: "1", ClubName: "Gracie Paris", CoachName: "Jean Dupont", City: "Paris", Date: "2024-05-01", Level: LevelAll, Discipline: DisciplineBJJ, Description: "Open mat du samedi"},
		{ID: "2", ClubName: "Lyon Grappling Club", CoachName: "Marie Petit", City: "Lyon", Date: "2024-05-01", Level: LevelBeginner, Discipline: DisciplineGrappling},
		{ID: "3", ClubName: "Marseille Fight Team", CoachName: "Karim Benali", City: "Marseille", Date: "2024-05-08", Level: LevelAll, Discipline: DisciplineBJJ, Description: "NoGi uniquement"},
		{ID: "4", ClubName: "BJJ Bordeaux", CoachName: "Paul Martin", City: "Bordeaux", Date: "2024-06-01T18:30:00Z", Level: LevelCompetitor, Discipline: DisciplineLutaLivre},
	}
}

func TestApplyFiltersIdentity(t *testing.T) {
	mats := sampleMats()
	got := ApplyFilters(mats, "", Filters{})
	assert.Equal(t, mats, got)
}

func TestApplyFiltersSubsetAndOrder(t *testing.T) {
	mats := sampleMats()
	got := ApplyFilters(mats, "", Filters{Level: LevelAll})

	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	// Input untouched.
	assert.Len(t, mats, 4)
}

func TestApplyFiltersIdempotent(t *testing.T) {
	mats := sampleMats()
	f := Filters{Discipline: DisciplineBJJ}
	once := ApplyFilters(mats, "paris", f)
	twice := ApplyFilters(once, "paris", f)
	assert.Equal(t, once, twice)
}

func TestSearchTermMatchesCoachCaseInsensitive(t *testing.T) {
	got := ApplyFilters(sampleMats(), "dupont", Filters{})
	assert.Len(t, got, 1)
	assert.Equal(t, "Jean Dupont", got[0].CoachName)
}

func TestSearchTermMatchesDescription(t *testing.T) {
	got := ApplyFilters(sampleMats(), "nogi", Filters{})
	assert.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestSearchTermMissingDescriptionNeverMatches(t *testing.T) {
	mats := []OpenMat{{ID: "1", ClubName: "A", City: "B"}}
	got := ApplyFilters(mats, "anything", Filters{})
	assert.Empty(t, got)
}

func TestCityFilterExactCaseInsensitive(t *testing.T) {
	got := ApplyFilters(sampleMats(), "", Filters{City: "paris"})
	assert.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].City)

	// Substring of a city must not match the structured filter.
	got = ApplyFilters(sampleMats(), "", Filters{City: "Par"})
	assert.Empty(t, got)
}

func TestDateFilterComparesCalendarDays(t *testing.T) {
	// Listing 4 stores a full timestamp; the filter still matches its day.
	got := ApplyFilters(sampleMats(), "", Filters{Date: "2024-06-01"})
	assert.Len(t, got, 1)
	assert.Equal(t, "4", got[0].ID)

	got = ApplyFilters(sampleMats(), "", Filters{Date: "2024-05-01"})
	assert.Len(t, got, 2)
}

func TestConstraintsCombineConjunctively(t *testing.T) {
	got := ApplyFilters(sampleMats(), "paris", Filters{Level: LevelBeginner})
	assert.Empty(t, got)

	got = ApplyFilters(sampleMats(), "paris", Filters{Level: LevelAll, Discipline: DisciplineBJJ})
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestDayKeyNormalizesFormats(t *testing.T) {
	assert.Equal(t, "2024-05-01", DayKey("2024-05-01"))
	assert.Equal(t, "2024-05-01", DayKey("2024-05-01T19:00:00Z"))
	assert.Equal(t, "2024-05-01", DayKey("2024-05-01 19:00:00"))
	assert.Equal(t, "", DayKey(""))
}
