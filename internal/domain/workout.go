// internal/domain/workout.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workout is a free-form training session logged by a user.
type Workout struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	UserID    uuid.UUID `bson:"userId" json:"userId"` // Owner
	Date      time.Time `bson:"date" json:"date"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	Exercises []Exercise `bson:"-" json:"exercises"`
}

// Exercise is one movement performed inside a Workout.
type Exercise struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	WorkoutID uuid.UUID `bson:"workoutId" json:"workoutId"`
	Name      string    `bson:"name" json:"name"`
	Position  int       `bson:"position" json:"position"`

	Series []Series `bson:"-" json:"series"`
}

// Series is a single set of an Exercise.
type Series struct {
	ID          uuid.UUID `bson:"_id" json:"id"`
	ExerciseID  uuid.UUID `bson:"exerciseId" json:"exerciseId"`
	Repetitions int       `bson:"repetitions" json:"repetitions"`
	RPE         *float64  `bson:"rpe,omitempty" json:"rpe,omitempty"`       // Rate of perceived exertion, 1..10
	Weight      *float64  `bson:"weight,omitempty" json:"weight,omitempty"` // Kilograms
	Position    int       `bson:"position" json:"position"`
}
