package models

import (
	"time"

	"github.com/google/uuid"
)

// Topic groups questions into a question pool a lobby is created against.
type Topic struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question belongs to a topic. Difficulty doubles as the base score awarded
// for a correct answer. The wrong answers are optional multiple-choice fillers.
type Question struct {
	ID            uuid.UUID `json:"id"`
	TopicID       uuid.UUID `json:"topic_id"`
	Content       string    `json:"content"`
	Difficulty    int       `json:"difficulty"`
	CorrectAnswer string    `json:"correct_answer"`
	WrongAnswer1  *string   `json:"wrong_answer_1,omitempty"`
	WrongAnswer2  *string   `json:"wrong_answer_2,omitempty"`
	WrongAnswer3  *string   `json:"wrong_answer_3,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
