package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hrintake/internal/application"
)

func TestLocalFiltersMatch(t *testing.T) {
	app := application.Submitted{
		ID:        "1",
		CreatedAt: "2024-03-15T10:30:00.000Z",
		Record: application.Record{
			FullName:    "ASHA VERMA",
			Email:       "asha@example.com",
			DateOfBirth: "1990-01-01",
			EducationQualifications: []application.EducationQualification{
				{Subject: "Physics", ExamType: "Regular", Medium: "English"},
				{Subject: "Mathematics", ExamType: "Private", Medium: "Hindi"},
			},
		},
	}

	tests := []struct {
		name    string
		filters LocalFilters
		want    bool
	}{
		{name: "empty", filters: LocalFilters{}, want: true},
		{name: "name substring", filters: LocalFilters{NameOrEmail: "verma"}, want: true},
		{name: "email substring", filters: LocalFilters{NameOrEmail: "ASHA@"}, want: true},
		{name: "name miss", filters: LocalFilters{NameOrEmail: "kumar"}, want: false},
		{name: "subject", filters: LocalFilters{Subject: "math"}, want: true},
		{name: "subject and medium on same entry", filters: LocalFilters{Subject: "math", Medium: "Hindi"}, want: true},
		{name: "subject and medium on different entries", filters: LocalFilters{Subject: "phys", Medium: "Hindi"}, want: false},
		{name: "exam type", filters: LocalFilters{ExamType: "Correspondence"}, want: false},
		{name: "inside range", filters: LocalFilters{StartDate: "2024-03-01", EndDate: "2024-04-01"}, want: true},
		{name: "before start", filters: LocalFilters{StartDate: "2024-03-16"}, want: false},
		{name: "after end", filters: LocalFilters{EndDate: "2024-03-15"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Match(app))
		})
	}
}

func TestLocalFiltersDateFallsBackToBirthDate(t *testing.T) {
	app := application.Submitted{Record: application.Record{DateOfBirth: "1995-06-01"}}
	assert.True(t, LocalFilters{StartDate: "1995-01-01", EndDate: "1995-12-31"}.Match(app))
	assert.False(t, LocalFilters{StartDate: "2000-01-01"}.Match(app))

	undated := application.Submitted{}
	assert.False(t, LocalFilters{StartDate: "2000-01-01"}.Match(undated))
	assert.True(t, LocalFilters{}.Empty())
}

func TestFiltersQuery(t *testing.T) {
	q := Filters{Gender: "Male", Q: "asha"}.Query(2, 20)
	v := q.Values()
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "Male", v.Get("gender"))
	assert.Equal(t, "asha", v.Get("q"))
	assert.False(t, v.Has("applyingFor"))
}
