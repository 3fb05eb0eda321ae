package config

import "time"

// TimestampGenerator supplies the unix seconds stamped on artifact names and dedup records
type TimestampGenerator interface {
	GetTimestampUTC() int64
}

// TimestampFunc adapts a plain function into a TimestampGenerator
type TimestampFunc func() int64

func (f TimestampFunc) GetTimestampUTC() int64 { return f() }

// FixedTimestampGenerator always reports the same instant, for tests
type FixedTimestampGenerator struct {
	Timestamp int64
}

func (g FixedTimestampGenerator) GetTimestampUTC() int64 { return g.Timestamp }

// Clock is swapped for a FixedTimestampGenerator in tests
var Clock TimestampGenerator = TimestampFunc(func() int64 {
	return time.Now().UTC().Unix()
})
