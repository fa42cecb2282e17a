package domain

import "fmt"

// Catalog is an ordered set of question definitions; interview order is
// catalog order.
type Catalog struct {
	ID        string               `json:"id"`
	Questions []QuestionDefinition `json:"questions"`
}

// Validate checks that the catalog can seed a session.
func (c Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: catalog %q has no questions", ErrInvalidCatalog, c.ID)
	}
	for i, q := range c.Questions {
		if !q.Difficulty.Valid() {
			return fmt.Errorf("%w: question %d has unknown difficulty %q", ErrInvalidCatalog, i, q.Difficulty)
		}
		if q.AllottedSeconds <= 0 {
			return fmt.Errorf("%w: question %d needs a positive time limit", ErrInvalidCatalog, i)
		}
		if q.Prompt == "" {
			return fmt.Errorf("%w: question %d has an empty prompt", ErrInvalidCatalog, i)
		}
	}
	return nil
}

// ReferenceCatalogID names the built-in catalog.
const ReferenceCatalogID = "reference"

// ReferenceCatalog is the default full-stack interview: two questions per
// difficulty, 20s easy, 60s medium, 120s hard.
func ReferenceCatalog() Catalog {
	return Catalog{
		ID: ReferenceCatalogID,
		Questions: []QuestionDefinition{
			{Difficulty: DifficultyEasy, AllottedSeconds: 20, Prompt: "What is the difference between let, const, and var in JavaScript?"},
			{Difficulty: DifficultyEasy, AllottedSeconds: 20, Prompt: "Explain the concept of React components and their types."},
			{Difficulty: DifficultyMedium, AllottedSeconds: 60, Prompt: "How does React's virtual DOM work and what are its benefits?"},
			{Difficulty: DifficultyMedium, AllottedSeconds: 60, Prompt: "Explain the difference between SQL and NoSQL databases with examples."},
			{Difficulty: DifficultyHard, AllottedSeconds: 120, Prompt: "Design a scalable REST API for a social media platform. Explain your architecture choices."},
			{Difficulty: DifficultyHard, AllottedSeconds: 120, Prompt: "How would you optimize a React application for performance? Discuss specific techniques."},
		},
	}
}
