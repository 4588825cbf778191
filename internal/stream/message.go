package stream

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RishiKendai/foldercheck/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidMessage marks a stream entry that can never be processed.
var ErrInvalidMessage = errors.New("invalid stream message")

// StreamMessage is a stream entry with its string fields.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// CheckMessage is a request to run a plagiarism check, read from the stream.
type CheckMessage struct {
	Request models.CheckRequest
	CheckID string
}

// ParseCheckMessage reads projectId and promotionId from a stream entry. An optional checkId
// field is kept; otherwise a new one is generated.
func ParseCheckMessage(msg *StreamMessage) (*CheckMessage, error) {
	projectID := strings.TrimSpace(msg.Fields["projectId"])
	if projectID == "" {
		return nil, fmt.Errorf("%w: missing projectId", ErrInvalidMessage)
	}
	promotionID := strings.TrimSpace(msg.Fields["promotionId"])
	if promotionID == "" {
		return nil, fmt.Errorf("%w: missing promotionId", ErrInvalidMessage)
	}

	checkID := strings.TrimSpace(msg.Fields["checkId"])
	if checkID == "" {
		checkID = uuid.NewString()
	} else if _, err := uuid.Parse(checkID); err != nil {
		return nil, fmt.Errorf("%w: checkId %q is not a UUID", ErrInvalidMessage, checkID)
	}

	return &CheckMessage{
		Request: models.CheckRequest{ProjectID: projectID, PromotionID: promotionID},
		CheckID: checkID,
	}, nil
}
