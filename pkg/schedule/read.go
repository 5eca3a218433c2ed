package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/schedsvg/pkg/errors"
)

// Read decodes a schedule document from r.
// Documents without a sessions array or with sessions lacking an id or room
// are rejected; start values are checked later, when grouping.
func Read(r io.Reader) (*Document, error) {
	var doc struct {
		Document
		Sessions *[]Session `json:"sessions"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchedule, err, "decode schedule")
	}
	if doc.Sessions == nil {
		return nil, errors.New(errors.ErrCodeInvalidSchedule, "schedule has no sessions array")
	}
	doc.Document.Sessions = *doc.Sessions

	for i, s := range doc.Document.Sessions {
		if s.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidSchedule, "session #%d has no id", i)
		}
		if s.Room == "" {
			return nil, errors.New(errors.ErrCodeInvalidSchedule, "session %s has no room", s.ID)
		}
	}
	return &doc.Document, nil
}

// Parse decodes a schedule document from data.
func Parse(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// ReadFile decodes the schedule document stored at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open schedule")
		}
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()
	return Read(f)
}
