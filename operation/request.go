// Package operation turns request paths into validated Operation Requests and fingerprints them.
package operation

import (
	"strconv"
	"strings"
)

type Kind string

const (
	Trim      Kind = "trim"
	Thumbnail Kind = "thumbnail"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case Trim, Thumbnail:
		return Kind(s), true
	}
	return "", false
}

// Extension of the artifact produced for this operation
func (k Kind) Extension() string {
	if k == Trim {
		return "mp4"
	}
	return "jpg"
}

func (k Kind) ContentType() string {
	if k == Trim {
		return "video/mp4"
	}
	return "image/jpeg"
}

const (
	ParamStart  = "start"
	ParamEnd    = "end"
	ParamHeight = "height"
	ParamWidth  = "width"
	ParamFast   = "fast"
)

// AllowedParams is the current-generation parameter vocabulary
var AllowedParams = []string{ParamStart, ParamEnd, ParamHeight, ParamWidth, ParamFast}

func isAllowed(key string) bool {
	for _, p := range AllowedParams {
		if p == key {
			return true
		}
	}
	return false
}

// Request is one validated operation. Parameters map a key to its value, or nil for a bare flag.
type Request struct {
	Operation  Kind
	SourceFile string
	RawParams  string
	Parameters map[string]*string
}

func (r Request) Has(key string) bool {
	_, ok := r.Parameters[key]
	return ok
}

func (r Request) Value(key string) (string, bool) {
	v, ok := r.Parameters[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// PercentageStart returns the start percentage when start is given as e.g. "50%"
func (r Request) PercentageStart() (float64, bool) {
	v, ok := r.Value(ParamStart)
	if !ok {
		return 0, false
	}
	return parsePercentage(v)
}

func parsePercentage(s string) (float64, bool) {
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
