package book

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("book not found")

// Messages returned to clients for the two common rejection cases.
const (
	MsgMissingFields    = "Send all required fields: title, author, publishYear, photo, driveLink"
	MsgMissingUpdate    = "Send all required fields: title, author, publishYear"
	MsgInvalidDriveLink = "Invalid Google Drive link format"
)

type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	PublishYear int       `json:"publishYear"`
	Photo       string    `json:"photo"`
	DriveLink   string    `json:"driveLink"`
	OwnerUserID string    `json:"ownerUserId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRequest never carries an owner: ownership comes from the caller's identity.
type CreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	PublishYear Year   `json:"publishYear" binding:"required"`
	Photo       string `json:"photo" binding:"required"`
	DriveLink   string `json:"driveLink" binding:"required"`
}

// UpdateRequest is a partial update. Photo and DriveLink are only applied when non-empty.
type UpdateRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	PublishYear Year   `json:"publishYear" binding:"required"`
	Photo       string `json:"photo"`
	DriveLink   string `json:"driveLink"`
}
