// Package importer decodes and validates workout template documents and turns
// them into a template graph ready to be stored.
//
// A document has a single root key, WorkoutTemplate:
//
//	WorkoutTemplate:
//	  Name: Upper Lower 4x
//	  Description: Four sessions a week
//	  DurationWeeks: 4
//	  TemplateWeeks:
//	    - WeekNumber: 1
//	      TemplateWorkouts:
//	        - Name: Upper A
//	          TemplateExercises:
//	            - ExerciseName: Bench Press
//	              WorkingSets: "3"
//	              Reps: 6-8
//
// JSON documents with the same keys are accepted too. Prescription values may
// be written as numbers or strings.
package importer

import (
	"alcyxob/gymtracker/internal/domain"
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Pointer fields distinguish a missing key from a zero value.
type Document struct {
	WorkoutTemplate *Template `yaml:"WorkoutTemplate"`
}

type Template struct {
	Name          *string `yaml:"Name"`
	Description   *string `yaml:"Description"`
	DurationWeeks *int    `yaml:"DurationWeeks"`
	TemplateWeeks *[]Week `yaml:"TemplateWeeks"`
}

type Week struct {
	WeekNumber       *int       `yaml:"WeekNumber"`
	TemplateWorkouts *[]Workout `yaml:"TemplateWorkouts"`
}

type Workout struct {
	Name              *string     `yaml:"Name"`
	TemplateExercises *[]Exercise `yaml:"TemplateExercises"`
}

type Exercise struct {
	ExerciseName     *string `yaml:"ExerciseName"`
	LastSetIntensity string  `yaml:"LastSetIntensity"`
	WarmupSets       string  `yaml:"WarmupSets"`
	WorkingSets      string  `yaml:"WorkingSets"`
	Reps             string  `yaml:"Reps"`
	Rpe              string  `yaml:"Rpe"`
	Rest             string  `yaml:"Rest"`
	Substitution1    string  `yaml:"Substitution1"`
	Substitution2    string  `yaml:"Substitution2"`
	Notes            string  `yaml:"Notes"`
}

// Parse decodes a YAML or JSON document and validates it. Every problem is
// reported as domain.ErrMalformedInput.
func Parse(data []byte) (*Template, error) {
	var doc Document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, domain.Malformed("document is empty")
	}
	// JSON is valid YAML flow syntax, so one decoder serves both formats.
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, domain.Malformed("invalid document: %v", err)
	}

	if doc.WorkoutTemplate == nil {
		return nil, domain.Malformed("WorkoutTemplate is required")
	}
	if err := doc.WorkoutTemplate.Validate(); err != nil {
		return nil, err
	}
	return doc.WorkoutTemplate, nil
}

// Validate checks required fields, length limits and week numbering.
func (t *Template) Validate() error {
	if err := requireText("WorkoutTemplate.Name", t.Name, domain.MaxTemplateNameLength); err != nil {
		return err
	}
	if err := requireText("WorkoutTemplate.Description", t.Description, domain.MaxTemplateDescriptionLength); err != nil {
		return err
	}
	if t.DurationWeeks == nil {
		return domain.Malformed("WorkoutTemplate.DurationWeeks is required")
	}
	if *t.DurationWeeks < 1 {
		return domain.Malformed("WorkoutTemplate.DurationWeeks must be at least 1")
	}
	if t.TemplateWeeks == nil {
		return domain.Malformed("WorkoutTemplate.TemplateWeeks is required")
	}

	seen := make(map[int]bool, len(*t.TemplateWeeks))
	for i, week := range *t.TemplateWeeks {
		path := fmt.Sprintf("TemplateWeeks[%d]", i)
		if week.WeekNumber == nil {
			return domain.Malformed("%s.WeekNumber is required", path)
		}
		n := *week.WeekNumber
		if n < 1 || n > *t.DurationWeeks {
			return domain.Malformed("%s.WeekNumber %d is outside 1..%d", path, n, *t.DurationWeeks)
		}
		if seen[n] {
			return domain.Malformed("%s.WeekNumber %d is repeated", path, n)
		}
		seen[n] = true
		if week.TemplateWorkouts == nil {
			return domain.Malformed("%s.TemplateWorkouts is required", path)
		}

		for j, workout := range *week.TemplateWorkouts {
			wpath := fmt.Sprintf("%s.TemplateWorkouts[%d]", path, j)
			if err := requireText(wpath+".Name", workout.Name, domain.MaxTemplateNameLength); err != nil {
				return err
			}
			if workout.TemplateExercises == nil {
				return domain.Malformed("%s.TemplateExercises is required", wpath)
			}
			for k, ex := range *workout.TemplateExercises {
				epath := fmt.Sprintf("%s.TemplateExercises[%d].ExerciseName", wpath, k)
				if err := requireText(epath, ex.ExerciseName, domain.MaxExerciseNameLength); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func requireText(field string, value *string, max int) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return domain.Malformed("%s is required", field)
	}
	if utf8.RuneCountInString(*value) > max {
		return domain.Malformed("%s exceeds %d characters", field, max)
	}
	return nil
}

// TemplateName returns the declared name, or "" when it is missing.
func (t *Template) TemplateName() string {
	if t == nil || t.Name == nil {
		return ""
	}
	return strings.TrimSpace(*t.Name)
}
