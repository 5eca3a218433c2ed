package pipeline

import (
	"fmt"

	"github.com/matzehuels/schedsvg/pkg/markup"
)

// Serialize renders a sheet tree in the requested formats.
func Serialize(tree *markup.Node, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = markup.MarshalIndent(tree)
		case FormatJSON:
			data, err = markup.MarshalJSON(tree)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// Ext returns the file extension for a format.
func Ext(format string) string {
	return "." + format
}
