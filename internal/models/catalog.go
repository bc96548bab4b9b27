package models

import "strings"

type CatalogEntry struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type SuggestedAction struct {
	Title  string `json:"title"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

type Catalog struct {
	AgeGroups        []CatalogEntry    `json:"ageGroups"`
	Topics           []CatalogEntry    `json:"topics"`
	SuggestedActions []SuggestedAction `json:"suggestedActions"`
}

var AgeGroups = []CatalogEntry{
	{ID: "infant", Label: "Infant (0-1 year)", Description: "Newborn to 12 months"},
	{ID: "toddler", Label: "Toddler (1-3 years)", Description: "Early development years"},
	{ID: "preschool", Label: "Preschool (3-5 years)", Description: "Pre-kindergarten phase"},
	{ID: "school-age", Label: "School Age (5-12 years)", Description: "School-going children"},
	{ID: "teen", Label: "Teen (12+ years)", Description: "Adolescence"},
}

var Topics = []CatalogEntry{
	{ID: "development", Label: "Development", Description: "Physical and cognitive milestones"},
	{ID: "behavior", Label: "Behavior", Description: "Managing behavior and emotions"},
	{ID: "sleep", Label: "Sleep", Description: "Sleep patterns and routines"},
	{ID: "nutrition", Label: "Feeding/Nutrition", Description: "Healthy eating habits"},
	{ID: "social", Label: "Social skills", Description: "Social development and interaction"},
	{ID: "health", Label: "Health", Description: "General health and wellness"},
	{ID: "education", Label: "Education", Description: "Learning and school support"},
	{ID: "screen-time", Label: "Screen time", Description: "Healthy use of devices"},
	{ID: "emotional", Label: "Emotional well-being", Description: "Feelings, stress and resilience"},
}

var SuggestedActions = []SuggestedAction{
	{Title: "Development Milestones", Label: "Track my child's development", Action: "Can you help me understand the key development milestones I should look for in my child?"},
	{Title: "Sleep Schedule", Label: "Help with sleep routine", Action: "I need help establishing a good sleep routine for my child."},
	{Title: "Behavior Management", Label: "Handle challenging behaviors", Action: "What are some effective strategies for managing challenging behaviors?"},
	{Title: "Nutrition Guide", Label: "Healthy eating tips", Action: "Can you suggest healthy eating habits and meal ideas for my child?"},
	{Title: "Education & Learning", Label: "Support child's education", Action: "How can I best support my child's learning and education?"},
	{Title: "Social Skills", Label: "Develop social abilities", Action: "How can I help my child develop better social skills?"},
}

func DefaultCatalog() Catalog {
	return Catalog{AgeGroups: AgeGroups, Topics: Topics, SuggestedActions: SuggestedActions}
}

// LookupAgeGroup resolves an id or label to the label used in prompts.
// Anything it does not recognise is returned trimmed, as parents may describe
// their child in their own words.
func LookupAgeGroup(v string) string {
	return lookup(AgeGroups, v)
}

func LookupTopic(v string) string {
	return lookup(Topics, v)
}

func lookup(entries []CatalogEntry, v string) string {
	v = strings.TrimSpace(v)
	for _, e := range entries {
		if strings.EqualFold(e.ID, v) || strings.EqualFold(e.Label, v) {
			return e.Label
		}
	}
	return v
}
