package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserWorkoutTemplate subscribes one user to one WorkoutTemplate.
// A user holds at most one subscription per template.
type UserWorkoutTemplate struct {
	ID                uuid.UUID `bson:"_id" json:"id"`
	UserID            uuid.UUID `bson:"userId" json:"userId"`
	WorkoutTemplateID uuid.UUID `bson:"workoutTemplateId" json:"workoutTemplateId"`
	StartDate         time.Time `bson:"startDate" json:"startDate"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}

// UserExerciseProgress is the per-subscription log for one TemplateExercise.
// CompletionDate is set exactly when WorkoutCompleted is true.
type UserExerciseProgress struct {
	ID                    uuid.UUID  `bson:"_id" json:"id"`
	UserWorkoutTemplateID uuid.UUID  `bson:"userWorkoutTemplateId" json:"userWorkoutTemplateId"`
	TemplateExerciseID    uuid.UUID  `bson:"templateExerciseId" json:"templateExerciseId"`
	Set1Reps              *int       `bson:"set1Reps" json:"set1Reps"`
	Set2Reps              *int       `bson:"set2Reps" json:"set2Reps"`
	Set3Reps              *int       `bson:"set3Reps" json:"set3Reps"`
	Set4Reps              *int       `bson:"set4Reps" json:"set4Reps"`
	WorkoutCompleted      bool       `bson:"workoutCompleted" json:"workoutCompleted"`
	CompletionDate        *time.Time `bson:"completionDate" json:"completionDate"`
	UpdatedAt             time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// SetCompleted moves the row between the active and completed states.
func (p *UserExerciseProgress) SetCompleted(completed bool, now time.Time) {
	p.WorkoutCompleted = completed
	if completed {
		p.CompletionDate = &now
		return
	}
	p.CompletionDate = nil
}

// Reset clears every logged set and the completion state.
func (p *UserExerciseProgress) Reset() {
	p.Set1Reps = nil
	p.Set2Reps = nil
	p.Set3Reps = nil
	p.Set4Reps = nil
	p.SetCompleted(false, time.Time{})
}

// ProgressUpdate is a partial progress payload. Nil fields are left untouched.
type ProgressUpdate struct {
	Set1Reps         *int  `json:"set1Reps"`
	Set2Reps         *int  `json:"set2Reps"`
	Set3Reps         *int  `json:"set3Reps"`
	Set4Reps         *int  `json:"set4Reps"`
	WorkoutCompleted *bool `json:"workoutCompleted"`
}

// Apply overwrites only the supplied fields.
func (u ProgressUpdate) Apply(p *UserExerciseProgress, now time.Time) {
	if u.Set1Reps != nil {
		p.Set1Reps = intPtr(*u.Set1Reps)
	}
	if u.Set2Reps != nil {
		p.Set2Reps = intPtr(*u.Set2Reps)
	}
	if u.Set3Reps != nil {
		p.Set3Reps = intPtr(*u.Set3Reps)
	}
	if u.Set4Reps != nil {
		p.Set4Reps = intPtr(*u.Set4Reps)
	}
	// Re-sending completed=true keeps the original completion date.
	if u.WorkoutCompleted != nil && *u.WorkoutCompleted != p.WorkoutCompleted {
		p.SetCompleted(*u.WorkoutCompleted, now)
	}
}

func intPtr(v int) *int { return &v }
