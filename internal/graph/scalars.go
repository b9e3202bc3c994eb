package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"message-board/internal/identity"
)

// UUID is the GraphQL scalar for identifiers.
type UUID struct {
	uuid.UUID
}

func (UUID) ImplementsGraphQLType(name string) bool {
	return name == "UUID"
}

func (u *UUID) UnmarshalGraphQL(input interface{}) error {
	s, ok := input.(string)
	if !ok {
		return fmt.Errorf("UUID must be a string, got %T", input)
	}
	id, err := identity.Parse(s)
	if err != nil {
		return err
	}
	u.UUID = id
	return nil
}

func (u UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.UUID.String())
}

// DateTime is the GraphQL scalar for timestamps, serialized as RFC 3339 in UTC.
type DateTime struct {
	time.Time
}

func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

func (d *DateTime) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("DateTime must be RFC 3339: %w", err)
		}
		d.Time = t
		return nil
	case time.Time:
		d.Time = v
		return nil
	default:
		return fmt.Errorf("DateTime must be a string, got %T", input)
	}
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}
