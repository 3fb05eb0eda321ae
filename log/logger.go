package log

import (
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/patrickmn/go-cache"
)

var loggerCache *cache.Cache
var defaultLoggerCacheExpiry = 6 * time.Hour

// Overridden in tests
var logDestination io.Writer = os.Stderr

// Query parameters carrying signing material in presigned source URLs
var signedQueryParams = []string{
	"X-Amz-Signature",
	"X-Amz-Credential",
	"X-Amz-Security-Token",
	"X-Goog-Signature",
	"X-Goog-Credential",
	"Signature",
}

func init() {
	loggerCache = cache.New(defaultLoggerCacheExpiry, 10*time.Minute)
}

// Permanently add context to the logger. Any future logging for this Request ID will include this context
func AddContext(requestID string, keyvals ...interface{}) {
	loggerCache.Set(requestID, kitlog.With(getLogger(requestID), redactKeyvals(keyvals...)...), defaultLoggerCacheExpiry)
}

func Log(requestID string, message string, keyvals ...interface{}) {
	_ = kitlog.With(getLogger(requestID), "msg", message).Log(redactKeyvals(keyvals...)...)
}

// Log in situations where we don't have access to the Request ID.
// Should be used sparingly and with as much context inserted into the message as possible
func LogNoRequestID(message string, keyvals ...interface{}) {
	_ = kitlog.With(newLogger(), "msg", message).Log(redactKeyvals(keyvals...)...)
}

func LogError(requestID string, message string, err error, keyvals ...interface{}) {
	msgLogger := kitlog.With(getLogger(requestID), "msg", message)
	errLogger := kitlog.With(msgLogger, "err", RedactLogs(err.Error(), " "))
	_ = errLogger.Log(redactKeyvals(keyvals...)...)
}

func getLogger(requestID string) kitlog.Logger {
	logger, found := loggerCache.Get(requestID)
	if found {
		return logger.(kitlog.Logger)
	}

	newLogger := kitlog.With(newLogger(), "request_id", requestID)
	loggerCache.Set(requestID, newLogger, defaultLoggerCacheExpiry)
	return newLogger
}

func newLogger() kitlog.Logger {
	newLogger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(logDestination))
	return kitlog.With(newLogger, "ts", kitlog.DefaultTimestampUTC)
}

func redactKeyvals(keyvals ...interface{}) []interface{} {
	var res []interface{}
	for _, kv := range keyvals {
		if s, ok := kv.(string); ok {
			res = append(res, RedactURL(s))
		} else {
			res = append(res, kv)
		}
	}
	return res
}

// RedactURL masks the password of a URL and any signing query parameters.
// Strings that are not absolute URLs are returned unchanged.
func RedactURL(str string) string {
	if !strings.Contains(str, "://") {
		return str
	}
	u, err := url.Parse(str)
	if err != nil {
		return "REDACTED"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	if u.RawQuery != "" {
		q := u.Query()
		redacted := false
		for _, p := range signedQueryParams {
			if q.Has(p) {
				q.Set(p, "xxxxx")
				redacted = true
			}
		}
		if redacted {
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

// RedactLogs redacts every delimiter-separated URL within a block of text, such as engine stderr
func RedactLogs(str, delimiter string) string {
	if !strings.Contains(str, "://") {
		return str
	}
	parts := strings.Split(str, delimiter)
	for i, p := range parts {
		if delimiter != "\n" && strings.Contains(p, "\n") {
			parts[i] = RedactLogs(p, "\n")
			continue
		}
		parts[i] = redactWrappedURL(p)
	}
	return strings.Join(parts, delimiter)
}

// URLs in error text are often quoted or followed by a colon, e.g. Head "https://...": EOF
const urlWrapping = "\"'`()[]<>,;:"

func redactWrappedURL(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	core := strings.Trim(s, urlWrapping)
	start := strings.Index(s, core)
	return s[:start] + RedactURL(core) + s[start+len(core):]
}
