package pipeline

import (
	"fmt"

	"github.com/matzehuels/photowall/pkg/gallery"
	"github.com/matzehuels/photowall/pkg/sink"
)

// Render generates output artifacts in the requested formats.
func Render(l gallery.Layout, items []gallery.Item, opts Options) (map[string][]byte, error) {
	sinkOpts := opts.SinkOptions(items)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		f, err := sink.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		data, err := sink.Render(l, f, sinkOpts...)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
