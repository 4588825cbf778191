package models

import (
	"time"
)

type Step string

const (
	StepIdle        Step = "idle"
	StepInitiated   Step = "initiated"
	StepExtracting  Step = "extracting"
	StepNormalizing Step = "normalizing"
	StepComparing   Step = "comparing"
	StepCompleted   Step = "completed"
	StepFailed      Step = "failed"
)

// Match flags derived from the two algorithm scores (percent).
const (
	FlagVeryHighSimilarity        = "VERY_HIGH_SIMILARITY"
	FlagHighSimilarity            = "HIGH_SIMILARITY"
	FlagSignificantMossMatch      = "SIGNIFICANT_MOSS_MATCH"
	FlagSignificantRabinKarpMatch = "SIGNIFICANT_RABIN_KARP_MATCH"
)

// FileComparison is the best file pairing found for one file of a folder.
type FileComparison struct {
	File1Path      string  `bson:"file1Path" json:"file1Path"`
	File2Path      string  `bson:"file2Path" json:"file2Path"`
	MossScore      float64 `bson:"mossScore" json:"mossScore"`
	RabinKarpScore float64 `bson:"rabinKarpScore" json:"rabinKarpScore"`
	CombinedScore  float64 `bson:"combinedScore" json:"combinedScore"`
	CharLength     int     `bson:"charLength" json:"charLength"`
	LineCount      int     `bson:"lineCount" json:"lineCount"`
}

// Match describes how one folder compares to another. All scores are percentages.
type Match struct {
	MatchedFolder          string           `bson:"matchedFolder" json:"matchedFolder"`
	OverallMatchPercentage float64          `bson:"overallMatchPercentage" json:"overallMatchPercentage"`
	CombinedScore          float64          `bson:"combinedScore" json:"combinedScore"`
	MossScore              float64          `bson:"mossScore" json:"mossScore"`
	RabinKarpScore         float64          `bson:"rabinKarpScore" json:"rabinKarpScore"`
	Flags                  []string         `bson:"flags" json:"flags"`
	FileComparisons        []FileComparison `bson:"fileComparisons,omitempty" json:"fileComparisons,omitempty"`
}

// FolderResult is the per-submission outcome of a check
type FolderResult struct {
	FolderName           string  `bson:"folderName" json:"folderName"`
	SHA1                 *string `bson:"sha1,omitempty" json:"sha1,omitempty"`
	PlagiarismPercentage float64 `bson:"plagiarismPercentage" json:"plagiarismPercentage"`
	Matches              []Match `bson:"matches" json:"matches"`
}

// CheckReport is the stored outcome of one plagiarism check over a promotion.
type CheckReport struct {
	CheckID        string         `bson:"checkId" json:"checkId"`
	ProjectID      string         `bson:"projectId" json:"projectId"`
	PromotionID    string         `bson:"promotionId" json:"promotionId"`
	Status         Step           `bson:"status" json:"status"`
	FolderResults  []FolderResult `bson:"folderResults" json:"folderResults"`
	SkippedFolders []string       `bson:"skippedFolders" json:"skippedFolders"`
	PairsCompared  int            `bson:"pairsCompared" json:"pairsCompared"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	CompletedAt    time.Time      `bson:"completedAt" json:"completedAt"`
}

// FolderSummary is a flattened, per-folder row kept for listing and lookups by content hash
type FolderSummary struct {
	CheckID              string    `bson:"checkId" json:"checkId"`
	ProjectID            string    `bson:"projectId" json:"projectId"`
	PromotionID          string    `bson:"promotionId" json:"promotionId"`
	FolderName           string    `bson:"folderName" json:"folderName"`
	SHA1                 string    `bson:"sha1,omitempty" json:"sha1,omitempty"`
	PlagiarismPercentage float64   `bson:"plagiarismPercentage" json:"plagiarismPercentage"`
	TopMatch             string    `bson:"topMatch,omitempty" json:"topMatch,omitempty"`
	Flags                []string  `bson:"flags" json:"flags"`
	CreatedAt            time.Time `bson:"createdAt" json:"createdAt"`
}

// CheckRequest represents a request to run a plagiarism check
type CheckRequest struct {
	ProjectID   string `json:"projectId" binding:"required"`
	PromotionID string `json:"promotionId" binding:"required"`
}

// CheckResponse is returned when a check is accepted for background processing
type CheckResponse struct {
	Step    Step   `json:"step"`
	CheckID string `json:"checkId"`
}

// StatusResponse reports the current step of a check
type StatusResponse struct {
	ProjectID   string `json:"projectId"`
	PromotionID string `json:"promotionId"`
	Step        Step   `json:"step"`
}
