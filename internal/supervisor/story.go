package supervisor

import "strings"

// SubtaskStatus tracks where a subtask is in its lifecycle.
type SubtaskStatus string

const (
	StatusPending   SubtaskStatus = "pending"
	StatusCompleted SubtaskStatus = "completed"
	StatusFailed    SubtaskStatus = "failed"
)

// Subtask is one actionable unit split out of a story.
type Subtask struct {
	ID          int           `json:"id"`
	Description string        `json:"description"`
	Status      SubtaskStatus `json:"status"`
}

// ParseStory splits a feature story into subtasks, one per sentence.
// Each description keeps its trailing period so it reads as a complete
// instruction when handed to the agent.
func ParseStory(story string) []Subtask {
	story = strings.TrimSpace(story)
	if story == "" {
		return nil
	}

	var subtasks []Subtask
	for _, sentence := range strings.Split(story, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		subtasks = append(subtasks, Subtask{
			ID:          len(subtasks) + 1,
			Description: sentence + ".",
			Status:      StatusPending,
		})
	}
	return subtasks
}
