package content

// SourceType tells how a material entered the app.
type SourceType string

const (
	SourceText    SourceType = "text"
	SourceYouTube SourceType = "youtube"
	SourceFile    SourceType = "file"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Note detail levels. Keys of StudyMaterial.Notes.
const (
	NotesShort    = "Short"
	NotesMedium   = "Medium"
	NotesDetailed = "Detailed"
)

type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type ChatMessage struct {
	ID        string            `json:"id"`
	Sender    string            `json:"sender"` // "user" | "ai"
	Text      string            `json:"text"`
	Timestamp int64             `json:"timestamp"`
	Sources   []GroundingSource `json:"grounding_sources,omitempty"`
}

// StudyMaterial is one user-submitted source plus everything derived from it.
// ID is assigned at creation and never changes. ExtractedText is what all
// downstream generation runs against; it is only replaced by an explicit
// regeneration, never cleared as a side effect.
type StudyMaterial struct {
	ID              string     `json:"id"`
	SourceType      SourceType `json:"source_type"`
	OriginalContent string     `json:"original_content"`
	FileName        string     `json:"file_name,omitempty"`
	FileMimeType    string     `json:"file_mime_type,omitempty"`
	ExtractedText   string     `json:"extracted_text"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	Topic           string     `json:"topic"`
	Difficulty      Difficulty `json:"difficulty"`
	UploadedAt      int64      `json:"uploaded_at"`

	AISummary           string            `json:"ai_summary,omitempty"`
	AIExplanation       string            `json:"ai_explanation,omitempty"`
	Notes               map[string]string `json:"notes,omitempty"` // Short|Medium|Detailed -> text
	ChatHistory         []ChatMessage     `json:"chat_history,omitempty"`
	PresentationContent string            `json:"presentation_content,omitempty"`
	BlockDiagramMermaid string            `json:"block_diagram_mermaid,omitempty"`
	VideoScenes         string            `json:"video_scenes,omitempty"` // opaque JSON from the generator
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"question_text"`
	Type          string   `json:"type"` // mcq | short_answer
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`

	// Set by grading.
	UserAnswer string `json:"user_answer,omitempty"`
	IsCorrect  bool   `json:"is_correct"`
}

// Quiz is one graded attempt. Built once at submission, immutable after.
// ContentID is a lookup-only reference to a StudyMaterial; a material can
// accumulate any number of Quiz records.
type Quiz struct {
	ID              string         `json:"id"`
	ContentID       string         `json:"content_id"`
	Questions       []QuizQuestion `json:"questions"`
	Score           int            `json:"score"` // count of correct answers
	Timestamp       int64          `json:"timestamp"`
	DurationSeconds int            `json:"duration_seconds"`
}

// MaterialUpdate is a shallow-merge partial: nil fields are left alone,
// non-nil fields fully replace the stored value.
type MaterialUpdate struct {
	Title               *string            `json:"title,omitempty"`
	Subject             *string            `json:"subject,omitempty"`
	Topic               *string            `json:"topic,omitempty"`
	Difficulty          *Difficulty        `json:"difficulty,omitempty"`
	ExtractedText       *string            `json:"extracted_text,omitempty"`
	AISummary           *string            `json:"ai_summary,omitempty"`
	AIExplanation       *string            `json:"ai_explanation,omitempty"`
	Notes               *map[string]string `json:"notes,omitempty"`
	PresentationContent *string            `json:"presentation_content,omitempty"`
	BlockDiagramMermaid *string            `json:"block_diagram_mermaid,omitempty"`
	VideoScenes         *string            `json:"video_scenes,omitempty"`
}

// MaterialSummary is the listing shape for home/dashboard surfaces.
type MaterialSummary struct {
	ID         string     `json:"id"`
	SourceType SourceType `json:"source_type"`
	Title      string     `json:"title"`
	Subject    string     `json:"subject"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	UploadedAt int64      `json:"uploaded_at"`
}
