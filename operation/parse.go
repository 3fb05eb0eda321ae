package operation

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/livepeer/clip-api/errors"
)

const faviconPath = "/favicon.ico"

// Parse turns an escaped request path of the form <operation>/<param-list>/<source-file> into a Request.
// Any invalid token fails the whole request; no partial result is returned.
func Parse(rawPath string) (Request, error) {
	if rawPath == faviconPath {
		return Request{}, errors.NewNotFoundError("favicon is not served", nil)
	}

	segments := strings.Split(strings.Trim(rawPath, "/"), "/")
	switch len(segments) {
	case 3:
	case 2:
		return Request{}, errors.NewBadRequestError("legacy path format is not supported, use /<operation>/<params>/<source-file>", nil)
	default:
		return Request{}, errors.NewNotFoundError(fmt.Sprintf("no route for path %q", rawPath), nil)
	}

	kind, ok := ParseKind(segments[0])
	if !ok {
		return Request{}, errors.NewNotFoundError(fmt.Sprintf("unknown operation %q", segments[0]), nil)
	}

	sourceFile, err := url.PathUnescape(segments[2])
	if err != nil {
		return Request{}, errors.NewBadRequestError("malformed source file", err)
	}
	if sourceFile == "" {
		return Request{}, errors.NewBadRequestError("source file is empty", nil)
	}

	rawParams := unescapeLenient(segments[1])
	params, err := parseParams(rawParams)
	if err != nil {
		return Request{}, err
	}

	if _, isPct := parsePercentage(valueOf(params, ParamStart)); isPct && kind != Thumbnail {
		return Request{}, errors.NewBadRequestError("percentage start is only supported for thumbnails", nil)
	}

	return Request{
		Operation:  kind,
		SourceFile: sourceFile,
		RawParams:  rawParams,
		Parameters: params,
	}, nil
}

// a literal % that is not a valid escape, as in start:50%, is kept as is
func unescapeLenient(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func valueOf(params map[string]*string, key string) string {
	if v := params[key]; v != nil {
		return *v
	}
	return ""
}

func parseParams(list string) (map[string]*string, error) {
	params := map[string]*string{}
	for _, token := range strings.Split(list, ",") {
		key, value, hasValue := strings.Cut(token, ":")
		if key == "" {
			return nil, errors.NewBadRequestError(fmt.Sprintf("malformed parameter %q", token), nil)
		}
		if !isAllowed(key) {
			return nil, errors.NewBadRequestError(fmt.Sprintf("unknown parameter %q", key), nil)
		}
		if _, dup := params[key]; dup {
			return nil, errors.NewBadRequestError(fmt.Sprintf("parameter %q given more than once", key), nil)
		}
		var v *string
		if hasValue {
			value := value
			v = &value
		}
		if err := validateValue(key, v); err != nil {
			return nil, errors.NewBadRequestError(fmt.Sprintf("invalid value for %q", key), err)
		}
		params[key] = v
	}
	return params, nil
}

func validateValue(key string, v *string) error {
	if key == ParamFast {
		return nil
	}
	if v == nil {
		return fmt.Errorf("a value is required")
	}
	switch key {
	case ParamStart:
		if pct, ok := parsePercentage(*v); ok {
			if pct < 0 || pct > 100 {
				return fmt.Errorf("percentage %v is outside 0-100", pct)
			}
			return nil
		}
		return validateSeconds(*v)
	case ParamEnd:
		return validateSeconds(*v)
	case ParamHeight, ParamWidth:
		f, err := parseFinite(*v)
		if err != nil {
			return err
		}
		if int64(f) <= 0 {
			return fmt.Errorf("dimension must be at least 1 pixel")
		}
	}
	return nil
}

func validateSeconds(s string) error {
	f, err := parseFinite(s)
	if err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("timestamp must not be negative")
	}
	return nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}
