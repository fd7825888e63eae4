package types

import (
	"time"

	"github.com/google/uuid"
)

type QuestionKind string

const (
	KindMCQ QuestionKind = "MCQ"
	KindSAQ QuestionKind = "SAQ"
	KindLAQ QuestionKind = "LAQ"
)

// QuestionKinds lists every kind in display order.
var QuestionKinds = []QuestionKind{KindMCQ, KindSAQ, KindLAQ}

func (k QuestionKind) Valid() bool {
	switch k {
	case KindMCQ, KindSAQ, KindLAQ:
		return true
	}
	return false
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Chunk is a word range of a document's text. StartIndex and EndIndex are
// word offsets, EndIndex exclusive. Embedding is empty when no vector exists.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocID      uuid.UUID `json:"docId"`
	Position   int       `json:"position"`
	Content    string    `json:"text"`
	Embedding  []float32 `json:"-"`
	PageNumber int       `json:"pageNumber"`
	StartIndex int       `json:"startIndex"`
	EndIndex   int       `json:"endIndex"`
}

func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

type Document struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`     // original file name
	Filename    string    `json:"filename"` // stored file name
	FilePath    string    `json:"-"`
	FileSize    int64     `json:"size"`
	MimeType    string    `json:"mimeType"`
	PageCount   int       `json:"pages"`
	TextContent string    `json:"textContent,omitempty"`
	Chunks      []Chunk   `json:"-"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type Question struct {
	ID            uuid.UUID    `json:"id"`
	Kind          QuestionKind `json:"type"`
	Prompt        string       `json:"question"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
}

type Quiz struct {
	ID        uuid.UUID  `json:"id"`
	DocID     uuid.UUID  `json:"pdfId"`
	DocName   string     `json:"pdfName"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Question returns the question with the given id.
func (q *Quiz) Question(id uuid.UUID) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// AnswerRecord is the snapshot of one graded answer. Kind is stored with the
// record so progress statistics do not need the quiz; older records may lack it.
type AnswerRecord struct {
	QuestionID    uuid.UUID    `json:"questionId"`
	Kind          QuestionKind `json:"type,omitempty"`
	UserAnswer    string       `json:"userAnswer"`
	CorrectAnswer string       `json:"correctAnswer"`
	IsCorrect     bool         `json:"isCorrect"`
}

type QuizAttempt struct {
	ID             uuid.UUID      `json:"id"`
	QuizID         uuid.UUID      `json:"quizId"`
	DocID          uuid.UUID      `json:"pdfId"`
	DocName        string         `json:"pdfName"`
	Answers        []AnswerRecord `json:"answers"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	CompletedAt    time.Time      `json:"completedAt"`
}

type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Chat struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	DocID     *uuid.UUID    `json:"pdfId"`
	DocName   *string       `json:"pdfName"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type KindStats struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type RecentAttempt struct {
	ID             uuid.UUID `json:"id"`
	DocName        string    `json:"pdfName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	CompletedAt    time.Time `json:"completedAt"`
}

type ProgressStats struct {
	TotalAttempts     int                        `json:"totalAttempts"`
	AverageScore      int                        `json:"averageScore"`
	CorrectAnswers    int                        `json:"correctAnswers"`
	IncorrectAnswers  int                        `json:"incorrectAnswers"`
	PerformanceByType map[QuestionKind]KindStats `json:"performanceByType"`
	RecentAttempts    []RecentAttempt            `json:"recentAttempts"`
}

type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	URL          string `json:"url"`
}
