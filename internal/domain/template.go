// internal/domain/template.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Field limits enforced on imported and updated templates.
const (
	MaxTemplateNameLength        = 100
	MaxTemplateDescriptionLength = 500
	MaxExerciseNameLength        = 100
)

// WorkoutTemplate is the root of a multi-week training program.
// Templates are only created by the catalog importer.
type WorkoutTemplate struct {
	ID            uuid.UUID `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	NameLower     string    `bson:"nameLower" json:"-"` // Backs the case-insensitive unique index
	DurationWeeks int       `bson:"durationWeeks" json:"durationWeeks"`
	Description   string    `bson:"description" json:"description"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`

	// Populated only by detailed reads; never persisted on the template document itself.
	Weeks []TemplateWeek `bson:"-" json:"templateWeeks,omitempty"`
}

// TemplateWeek is one week of a WorkoutTemplate.
type TemplateWeek struct {
	ID                uuid.UUID `bson:"_id" json:"id"`
	WorkoutTemplateID uuid.UUID `bson:"workoutTemplateId" json:"workoutTemplateId"`
	WeekNumber        int       `bson:"weekNumber" json:"weekNumber"` // 1..DurationWeeks

	Workouts []TemplateWorkout `bson:"-" json:"templateWorkouts,omitempty"`
}

// TemplateWorkout is a named session inside a TemplateWeek.
type TemplateWorkout struct {
	ID             uuid.UUID `bson:"_id" json:"id"`
	TemplateWeekID uuid.UUID `bson:"templateWeekId" json:"templateWeekId"`
	Name           string    `bson:"name" json:"name"`
	Sequence       int       `bson:"sequence" json:"sequence"` // Order within the week

	Exercises []TemplateExercise `bson:"-" json:"templateExercises,omitempty"`
}

// Prescription holds the optional coaching fields of a TemplateExercise.
type Prescription struct {
	LastSetIntensity string `bson:"lastSetIntensity,omitempty" json:"lastSetIntensity,omitempty"`
	WarmupSets       string `bson:"warmupSets,omitempty" json:"warmupSets,omitempty"`
	WorkingSets      string `bson:"workingSets,omitempty" json:"workingSets,omitempty"`
	Reps             string `bson:"reps,omitempty" json:"reps,omitempty"`
	Rpe              string `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Rest             string `bson:"rest,omitempty" json:"rest,omitempty"`
	Substitution1    string `bson:"substitution1,omitempty" json:"substitution1,omitempty"`
	Substitution2    string `bson:"substitution2,omitempty" json:"substitution2,omitempty"`
	Notes            string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// TemplateExercise is a prescribed exercise inside a TemplateWorkout.
// Progress rows reference it, so it cannot be removed while referenced.
type TemplateExercise struct {
	ID                uuid.UUID    `bson:"_id" json:"id"`
	TemplateWorkoutID uuid.UUID    `bson:"templateWorkoutId" json:"templateWorkoutId"`
	ExerciseName      string       `bson:"exerciseName" json:"exerciseName"`
	Sequence          int          `bson:"sequence" json:"sequence"`
	Prescription      Prescription `bson:"prescription" json:"prescription"`
}

// TemplateGraph is the flattened form of a template and all of its descendants,
// used when a whole graph is written or removed at once.
type TemplateGraph struct {
	Template  WorkoutTemplate
	Weeks     []TemplateWeek
	Workouts  []TemplateWorkout
	Exercises []TemplateExercise
}

// Assemble nests the flat graph into Template.Weeks[].Workouts[].Exercises[],
// keeping the slice order of each level.
func (g *TemplateGraph) Assemble() WorkoutTemplate {
	exercisesByWorkout := make(map[uuid.UUID][]TemplateExercise)
	for _, ex := range g.Exercises {
		exercisesByWorkout[ex.TemplateWorkoutID] = append(exercisesByWorkout[ex.TemplateWorkoutID], ex)
	}
	workoutsByWeek := make(map[uuid.UUID][]TemplateWorkout)
	for _, w := range g.Workouts {
		w.Exercises = exercisesByWorkout[w.ID]
		workoutsByWeek[w.TemplateWeekID] = append(workoutsByWeek[w.TemplateWeekID], w)
	}

	template := g.Template
	template.Weeks = make([]TemplateWeek, 0, len(g.Weeks))
	for _, week := range g.Weeks {
		if week.WorkoutTemplateID != template.ID {
			continue
		}
		week.Workouts = workoutsByWeek[week.ID]
		template.Weeks = append(template.Weeks, week)
	}
	return template
}
