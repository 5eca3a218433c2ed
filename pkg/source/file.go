package source

import (
	"context"
	"os"

	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/schedule"
)

// File loads a schedule from a local path.
type File string

// Load reads and parses the file.
func (f File) Load(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := string(f)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "schedule %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read schedule %s", path)
	}
	doc, err := schedule.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Raw: data, Origin: path}, nil
}
