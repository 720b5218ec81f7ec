package m3uparser

import (
	"strings"

	"github.com/grafana/regexp"
)

// Attr is a single key="value" attribute from an EXTINF line.
type Attr struct {
	Key   string
	Value string
}

type Attrs []Attr

var attrPattern = regexp.MustCompile(`([A-Za-z0-9-]+)="([^"]*)"`)

// ParseAttrs extracts key="value" pairs from the attribute portion of an
// EXTINF line (the text between the duration and the comma).
func ParseAttrs(data string) Attrs {
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[:i]
	}

	matches := attrPattern.FindAllStringSubmatch(data, -1)
	if len(matches) == 0 {
		return nil
	}

	attrs := make(Attrs, 0, len(matches))
	for _, m := range matches {
		attrs = append(attrs, Attr{Key: m[1], Value: m[2]})
	}
	return attrs
}

// Get returns the value of the first attribute with the given key, or ""
// if absent.
func (attrs Attrs) Get(key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func (attrs Attrs) Exist(key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func (a *Attr) String() string {
	return a.Key + "=\"" + a.Value + "\""
}

func (attrs Attrs) String() string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}
