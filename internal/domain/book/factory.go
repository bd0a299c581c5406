package book

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(ownerID string, req CreateRequest) Book {
	now := time.Now().UTC()

	return Book{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Author:      req.Author,
		PublishYear: int(req.PublishYear),
		Photo:       req.Photo,
		DriveLink:   req.DriveLink,
		OwnerUserID: ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply merges an update into b. Empty optional fields keep their stored value.
func (b *Book) Apply(req UpdateRequest, at time.Time) {
	b.Title = req.Title
	b.Author = req.Author
	b.PublishYear = int(req.PublishYear)

	if req.Photo != "" {
		b.Photo = req.Photo
	}
	if req.DriveLink != "" {
		b.DriveLink = req.DriveLink
	}

	b.UpdatedAt = at
}
