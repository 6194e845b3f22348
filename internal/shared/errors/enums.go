//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package errors

// ErrorKind classifies failures for structured logs
// ENUM(malformed_record,lookup_failed,cache_read_failed,cache_write_failed,rate_limited,transport_error,feed_fetch_failed)
type ErrorKind string
