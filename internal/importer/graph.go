package importer

import (
	"alcyxob/gymtracker/internal/domain"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BuildGraph assigns fresh ids to a validated template and flattens it.
// Each level keeps the order of the document.
func BuildGraph(t *Template, now time.Time) domain.TemplateGraph {
	tmpl := domain.WorkoutTemplate{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(*t.Name),
		Description:   strings.TrimSpace(*t.Description),
		DurationWeeks: *t.DurationWeeks,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	tmpl.NameLower = strings.ToLower(tmpl.Name)
	g := domain.TemplateGraph{Template: tmpl}

	for _, w := range *t.TemplateWeeks {
		week := domain.TemplateWeek{
			ID:                uuid.New(),
			WorkoutTemplateID: tmpl.ID,
			WeekNumber:        *w.WeekNumber,
		}
		g.Weeks = append(g.Weeks, week)

		for seq, tw := range *w.TemplateWorkouts {
			workout := domain.TemplateWorkout{
				ID:             uuid.New(),
				TemplateWeekID: week.ID,
				Name:           strings.TrimSpace(*tw.Name),
				Sequence:       seq,
			}
			g.Workouts = append(g.Workouts, workout)

			for exSeq, ex := range *tw.TemplateExercises {
				g.Exercises = append(g.Exercises, domain.TemplateExercise{
					ID:                uuid.New(),
					TemplateWorkoutID: workout.ID,
					ExerciseName:      strings.TrimSpace(*ex.ExerciseName),
					Sequence:          exSeq,
					Prescription: domain.Prescription{
						LastSetIntensity: ex.LastSetIntensity,
						WarmupSets:       ex.WarmupSets,
						WorkingSets:      ex.WorkingSets,
						Reps:             ex.Reps,
						Rpe:              ex.Rpe,
						Rest:             ex.Rest,
						Substitution1:    ex.Substitution1,
						Substitution2:    ex.Substitution2,
						Notes:            ex.Notes,
					},
				})
			}
		}
	}
	return g
}
