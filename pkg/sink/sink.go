package sink

import (
	"fmt"
	"hash/fnv"
	"strings"

	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
)

// Format identifies an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatSVG, FormatPNG, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", perrors.New(perrors.ErrCodeInvalidFormat, "invalid format %q (must be svg, png or json)", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "application/json"
	}
}

// Option configures rendering.
type Option func(*options)

type options struct {
	names      map[string]string
	labels     bool
	background string
	scale      float64
}

func newOptions(opts ...Option) options {
	o := options{background: "#ffffff", scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithItems supplies item names for captions, titles and JSON output.
func WithItems(items []gallery.Item) Option {
	return func(o *options) {
		o.names = make(map[string]string, len(items))
		for _, it := range items {
			o.names[it.ID] = it.Name
		}
	}
}

// WithLabels draws the item name inside each tile.
func WithLabels() Option { return func(o *options) { o.labels = true } }

// WithBackground sets the background colour as #rrggbb.
func WithBackground(hex string) Option { return func(o *options) { o.background = hex } }

// WithScale sets the PNG scale factor. Other formats ignore it.
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// Render renders l in format f.
func Render(l gallery.Layout, f Format, opts ...Option) ([]byte, error) {
	switch f {
	case FormatSVG:
		return RenderSVG(l, opts...), nil
	case FormatPNG:
		return RenderPNG(l, opts...)
	case FormatJSON:
		return RenderJSON(l, opts...)
	}
	return nil, perrors.New(perrors.ErrCodeUnsupported, "unsupported format %q", f)
}

func (o options) name(id string) string {
	if n := o.names[id]; n != "" {
		return n
	}
	return id
}

// palette holds muted tile colours; a tile's colour is picked from its id.
var palette = [][3]uint8{
	{0x8e, 0xa6, 0xb4},
	{0xb4, 0x9a, 0x8e},
	{0x9c, 0xb4, 0x8e},
	{0xb4, 0x8e, 0xa8},
	{0x8e, 0xb4, 0xaa},
	{0xb4, 0xae, 0x8e},
	{0xa0, 0x8e, 0xb4},
	{0x8e, 0x98, 0xb4},
}

func tileColor(id string) [3]uint8 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

func hexColor(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// parseHex parses #rrggbb, falling back to white.
func parseHex(s string) [3]uint8 {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return [3]uint8{0xff, 0xff, 0xff}
	}
	return [3]uint8{r, g, b}
}

const hiddenOpacity = 0.25
