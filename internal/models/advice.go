package models

import (
	"errors"
	"fmt"
	"strings"
)

// The structs below are the fixed shapes the model is asked to fill. Their
// JSON schema is reflected from the tags, so field names and descriptions are
// part of the prompt.

type ParentingAdvice struct {
	Title           string   `json:"title" jsonschema_description:"Title of the advice"`
	Summary         string   `json:"summary" jsonschema_description:"Brief summary of the main advice"`
	Tips            []string `json:"tips" jsonschema:"minItems=3" jsonschema_description:"Practical parenting tips"`
	Recommendations []string `json:"recommendations" jsonschema:"minItems=2" jsonschema_description:"Professional recommendations"`
	WarningSignals  []string `json:"warningSignals,omitempty" jsonschema_description:"Warning signs to watch for"`
}

func (a *ParentingAdvice) Validate() error {
	var errs []error
	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, errors.New("title is empty"))
	}
	if strings.TrimSpace(a.Summary) == "" {
		errs = append(errs, errors.New("summary is empty"))
	}
	if n := countNonBlank(a.Tips); n < 3 {
		errs = append(errs, fmt.Errorf("need at least 3 tips, got %d", n))
	}
	if n := countNonBlank(a.Recommendations); n < 2 {
		errs = append(errs, fmt.Errorf("need at least 2 recommendations, got %d", n))
	}
	return errors.Join(errs...)
}

type DevelopmentMilestones struct {
	Physical  []string `json:"physical" jsonschema_description:"Physical development milestones"`
	Cognitive []string `json:"cognitive" jsonschema_description:"Cognitive development milestones"`
	Social    []string `json:"social" jsonschema_description:"Social and emotional milestones"`
	Language  []string `json:"language" jsonschema_description:"Language development milestones"`
}

func (m *DevelopmentMilestones) Validate() error {
	if m.Physical == nil || m.Cognitive == nil || m.Social == nil || m.Language == nil {
		return errors.New("every milestone category must be present")
	}
	if countNonBlank(m.Physical)+countNonBlank(m.Cognitive)+countNonBlank(m.Social)+countNonBlank(m.Language) == 0 {
		return errors.New("no milestones")
	}
	return nil
}

type Challenge struct {
	Issue    string   `json:"issue" jsonschema_description:"Common parenting challenge"`
	Solution string   `json:"solution" jsonschema_description:"Practical solution"`
	Tips     []string `json:"tips" jsonschema_description:"Additional helpful tips"`
}

type CommonChallenges struct {
	Challenges []Challenge `json:"challenges"`
}

func (c *CommonChallenges) Validate() error {
	if len(c.Challenges) == 0 {
		return errors.New("no challenges")
	}
	for i, ch := range c.Challenges {
		if strings.TrimSpace(ch.Issue) == "" || strings.TrimSpace(ch.Solution) == "" {
			return fmt.Errorf("challenge %d: issue and solution are required", i)
		}
	}
	return nil
}

type RoutineStep struct {
	Step     string `json:"step" jsonschema_description:"Step in the routine"`
	Duration string `json:"duration" jsonschema_description:"Approximate duration"`
	Tips     string `json:"tips" jsonschema_description:"Helpful tips for this step"`
}

type RoutinePlan struct {
	RoutineName  string        `json:"routineName" jsonschema_description:"Name of the routine"`
	TimeEstimate string        `json:"timeEstimate" jsonschema_description:"Estimated time for the routine"`
	Steps        []RoutineStep `json:"steps"`
	Notes        []string      `json:"notes" jsonschema_description:"Important notes about the routine"`
}

func (r *RoutinePlan) Validate() error {
	if strings.TrimSpace(r.RoutineName) == "" {
		return errors.New("routine name is empty")
	}
	if len(r.Steps) == 0 {
		return errors.New("routine has no steps")
	}
	for i, s := range r.Steps {
		if strings.TrimSpace(s.Step) == "" {
			return fmt.Errorf("step %d is empty", i)
		}
	}
	return nil
}

func countNonBlank(items []string) int {
	n := 0
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
