//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// State is the orchestrator's position in a tick
// ENUM(idle,fetching,processing)
type State string
