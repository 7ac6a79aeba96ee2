package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus enumerates generation job outcomes. Generation is synchronous, so
// a job is born terminal; there is no queued or running state.
type JobStatus string

const (
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JobErrorMaxLen is the stored error-message budget in Unicode code points.
const JobErrorMaxLen = 255

const jobErrorEllipsis = "..."

// GenerationJob is the durable record of one attempt to produce flashcards
// from source text. Once the user saves a set built from the generated cards,
// the job is linked to that set exactly once so acceptance metrics can be
// computed.
type GenerationJob struct {
	ID             string
	UserID         string
	Prompt         string
	Model          string
	Status         JobStatus
	GeneratedCount int
	SuggestedName  string
	TokensIn       int
	TokensOut      int
	ErrorMessage   string

	// Linkage, set at most once by LinkToSet.
	SetID         *string
	AcceptedCount *int
	EditedCount   *int

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
}

// NewSucceededJob records a completed generation attempt.
func NewSucceededJob(userID, prompt string, generatedCount int, suggestedName, model string, tokensIn, tokensOut int) *GenerationJob {
	j := newJob(userID, prompt, model)
	j.Status = JobStatusSucceeded
	j.GeneratedCount = generatedCount
	j.SuggestedName = suggestedName
	j.TokensIn = tokensIn
	j.TokensOut = tokensOut
	return j
}

// NewFailedJob records a generation attempt that produced no cards. The error
// message is truncated to the storage budget.
func NewFailedJob(userID, prompt, errorMessage string) *GenerationJob {
	j := newJob(userID, prompt, "")
	j.Status = JobStatusFailed
	j.ErrorMessage = TruncateJobError(errorMessage)
	return j
}

func newJob(userID, prompt, model string) *GenerationJob {
	now := time.Now().UTC()
	return &GenerationJob{
		ID:          uuid.NewString(),
		UserID:      userID,
		Prompt:      prompt,
		Model:       model,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: now,
	}
}

// LinkToSet records, exactly once, how many generated cards the user kept and
// how many of those they edited before saving. The entity enforces the metric
// invariants itself so no caller can store inconsistent counts.
func (j *GenerationJob) LinkToSet(setID string, acceptedCount, editedCount int) error {
	if j.IsLinked() {
		return ErrJobAlreadyLinked
	}
	if j.Status != JobStatusSucceeded {
		return ErrJobNotSuccessful
	}
	if acceptedCount < 0 || editedCount < 0 {
		return ErrNegativeCount
	}
	if acceptedCount > j.GeneratedCount {
		return ErrAcceptedExceedsGenerated
	}
	if editedCount > acceptedCount {
		return ErrEditedExceedsAccepted
	}
	j.SetID = &setID
	j.AcceptedCount = &acceptedCount
	j.EditedCount = &editedCount
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// IsLinked reports whether the job has already been tied to a set.
func (j *GenerationJob) IsLinked() bool {
	return j.SetID != nil
}

func (j *GenerationJob) IsSuccessful() bool {
	return j.Status == JobStatusSucceeded
}

func (j *GenerationJob) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// AcceptanceRate is the fraction of generated cards the user kept. It is 0
// for unlinked jobs and when nothing was generated.
func (j *GenerationJob) AcceptanceRate() float64 {
	if j.AcceptedCount == nil || j.GeneratedCount == 0 {
		return 0
	}
	return float64(*j.AcceptedCount) / float64(j.GeneratedCount)
}

// DeletedCount is derived, never stored: generated minus accepted.
func (j *GenerationJob) DeletedCount() int {
	if j.AcceptedCount == nil {
		return 0
	}
	return j.GeneratedCount - *j.AcceptedCount
}

// TruncateJobError caps msg at JobErrorMaxLen Unicode code points. Oversized
// messages keep their first 252 code points and end with "..." so the stored
// value is exactly 255 code points regardless of script.
func TruncateJobError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= JobErrorMaxLen {
		return msg
	}
	return string(runes[:JobErrorMaxLen-len(jobErrorEllipsis)]) + jobErrorEllipsis
}
