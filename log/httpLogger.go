package log

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/hashicorp/go-retryablehttp"
)

// glog verbosity each retryablehttp level is shown at
const (
	httpErrorVerbosity glog.Level = 3
	httpWarnVerbosity  glog.Level = 4
	httpInfoVerbosity  glog.Level = 5
	httpDebugVerbosity glog.Level = 6
)

var _ retryablehttp.LeveledLogger = sourceHTTPLogger{}

// sourceHTTPLogger routes retryablehttp's logging into our logfmt output. retryablehttp passes
// request URLs as *url.URL, so values are stringified before redaction.
type sourceHTTPLogger struct{}

func NewRetryableHTTPLogger() retryablehttp.LeveledLogger {
	return sourceHTTPLogger{}
}

func (sourceHTTPLogger) Error(msg string, keysAndValues ...interface{}) {
	logAtVerbosity(httpErrorVerbosity, msg, keysAndValues)
}

func (sourceHTTPLogger) Warn(msg string, keysAndValues ...interface{}) {
	logAtVerbosity(httpWarnVerbosity, msg, keysAndValues)
}

func (sourceHTTPLogger) Info(msg string, keysAndValues ...interface{}) {
	logAtVerbosity(httpInfoVerbosity, msg, keysAndValues)
}

func (sourceHTTPLogger) Debug(msg string, keysAndValues ...interface{}) {
	logAtVerbosity(httpDebugVerbosity, msg, keysAndValues)
}

func logAtVerbosity(level glog.Level, msg string, keysAndValues []interface{}) {
	if !glog.V(level) {
		return
	}
	LogNoRequestID(msg, stringifyValues(keysAndValues)...)
}

func stringifyValues(keysAndValues []interface{}) []interface{} {
	out := make([]interface{}, len(keysAndValues))
	for i, kv := range keysAndValues {
		switch v := kv.(type) {
		case error:
			out[i] = RedactLogs(v.Error(), " ")
		case fmt.Stringer:
			out[i] = v.String()
		default:
			out[i] = kv
		}
	}
	return out
}
