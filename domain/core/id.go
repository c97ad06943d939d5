package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	CampaignID  ID
	IterationID ID
)

func (id CampaignID) String() string  { return ID(id).String() }
func (id IterationID) String() string { return ID(id).String() }

func (id CampaignID) IsEmpty() bool  { return ID(id).IsEmpty() }
func (id IterationID) IsEmpty() bool { return ID(id).IsEmpty() }

// NewCampaignID returns a fresh campaign identifier.
func NewCampaignID() CampaignID { return CampaignID(NewID()) }

// NewIterationID returns a fresh iteration identifier.
func NewIterationID() IterationID { return IterationID(NewID()) }

// ParseCampaignID parses a string into CampaignID
func ParseCampaignID(s string) (CampaignID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("campaign ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("campaign ID %q is not a UUID: %w", s, err)
	}
	return CampaignID(s), nil
}
