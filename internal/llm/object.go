package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RichardoC/parentpal/internal/metrics"
	"github.com/RichardoC/parentpal/internal/models"
	"github.com/invopop/jsonschema"
	"github.com/tmc/langchaingo/llms"
)

// ErrInvalidObject means the model answered but the answer does not fit the
// requested schema.
var ErrInvalidObject = errors.New("model output does not match schema")

const objectSystemPrompt = "You produce structured data for a parenting assistant. " +
	"Reply with a single JSON object and nothing else."

// Object is a schema-described value the model can be asked to fill.
type Object interface {
	Validate() error
}

var reflector = &jsonschema.Reflector{
	DoNotReference: true,
	ExpandedStruct: true,
}

// SchemaFor returns the JSON schema the model is asked to satisfy for v.
func SchemaFor(v Object) ([]byte, error) {
	schema := reflector.Reflect(v)
	schema.Version = ""
	schema.ID = ""
	return json.MarshalIndent(schema, "", "  ")
}

// GenerateObject asks the model to fill out according to its schema. kind
// labels the call in metrics.
func (s *Service) GenerateObject(ctx context.Context, kind, prompt string, out Object) error {
	schema, err := SchemaFor(out)
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, objectSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(
			"%s\n\nRespond with JSON that conforms to this JSON schema:\n%s", prompt, schema)),
	}, llms.WithJSONMode())
	if err != nil {
		metrics.RecordGeneration(kind, err)
		return fmt.Errorf("failed to generate %s: %w", kind, err)
	}
	if len(resp.Choices) == 0 {
		metrics.RecordGeneration(kind, ErrInvalidObject)
		return fmt.Errorf("%s: %w: no choices", kind, ErrInvalidObject)
	}

	err = decodeObject(resp.Choices[0].Content, out)
	metrics.RecordGeneration(kind, err)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return nil
}

func decodeObject(raw string, out Object) error {
	raw = stripCodeFence(raw)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidObject, err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidObject, err)
	}
	return nil
}

// stripCodeFence unwraps ```json ... ``` blocks some models add despite JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func (s *Service) GenerateParentingAdvice(ctx context.Context, childAge, topic string) (*models.ParentingAdvice, error) {
	prompt := fmt.Sprintf("Generate detailed parenting advice for a %s child regarding %s. Include practical tips and recommendations.",
		models.LookupAgeGroup(childAge), models.LookupTopic(topic))

	var advice models.ParentingAdvice
	if err := s.GenerateObject(ctx, "advice", prompt, &advice); err != nil {
		return nil, err
	}
	return &advice, nil
}

func (s *Service) GenerateDevelopmentMilestones(ctx context.Context, ageGroup string) (*models.DevelopmentMilestones, error) {
	prompt := fmt.Sprintf("Generate age-appropriate development milestones for %s", models.LookupAgeGroup(ageGroup))

	var milestones models.DevelopmentMilestones
	if err := s.GenerateObject(ctx, "milestones", prompt, &milestones); err != nil {
		return nil, err
	}
	return &milestones, nil
}

func (s *Service) GenerateCommonChallenges(ctx context.Context, ageGroup, topic string) (*models.CommonChallenges, error) {
	prompt := fmt.Sprintf("Generate common %s challenges for %s and their solutions",
		models.LookupTopic(topic), models.LookupAgeGroup(ageGroup))

	var challenges models.CommonChallenges
	if err := s.GenerateObject(ctx, "challenges", prompt, &challenges); err != nil {
		return nil, err
	}
	return &challenges, nil
}

func (s *Service) GenerateRoutinePlanner(ctx context.Context, ageGroup, activityType string) (*models.RoutinePlan, error) {
	prompt := fmt.Sprintf("Create a %s routine for %s", strings.TrimSpace(activityType), models.LookupAgeGroup(ageGroup))

	var routine models.RoutinePlan
	if err := s.GenerateObject(ctx, "routine", prompt, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}
