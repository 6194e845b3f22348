//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Rating is the yande.re content rating: safe, questionable or explicit
// ENUM(s,q,e)
type Rating string
