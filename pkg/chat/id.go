package chat

import "github.com/google/uuid"

// IDGenerator produces unique message and chat identifiers. Options structs
// accept one to override the default strategy.
type IDGenerator func() string

// GenerateID is the default generator.
func GenerateID() string {
	return uuid.New().String()
}
