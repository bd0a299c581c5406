package book

import (
	"strings"

	"github.com/geocoder89/bookshelf/internal/domain/validation"
)

const RuleDriveLink = "drivelink"

func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Photo = strings.TrimSpace(r.Photo)
	r.DriveLink = NormalizeDriveLink(r.DriveLink)
}

func (r CreateRequest) Validate() error {
	v := &validation.Error{}

	requireString(v, "title", r.Title)
	requireString(v, "author", r.Author)
	requireYear(v, r.PublishYear)
	requireString(v, "photo", r.Photo)

	if r.DriveLink == "" {
		v.Add("driveLink", "required", "is required")
	} else if !ValidDriveLink(r.DriveLink) {
		v.Add("driveLink", RuleDriveLink, "must be a Google Drive folder or file link")
	}

	return v.OrNil()
}

func (r *UpdateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Photo = strings.TrimSpace(r.Photo)
	r.DriveLink = NormalizeDriveLink(r.DriveLink)
}

func (r UpdateRequest) Validate() error {
	v := &validation.Error{}

	requireString(v, "title", r.Title)
	requireString(v, "author", r.Author)
	requireYear(v, r.PublishYear)

	if r.DriveLink != "" && !ValidDriveLink(r.DriveLink) {
		v.Add("driveLink", RuleDriveLink, "must be a Google Drive folder or file link")
	}

	return v.OrNil()
}

// IsDriveLinkOnly reports whether the drive link pattern is the sole failure,
// which gets its own client message.
func IsDriveLinkOnly(err *validation.Error) bool {
	return err != nil && len(err.Fields) == 1 && err.Fields[0].Rule == RuleDriveLink
}

func requireString(v *validation.Error, field, value string) {
	if value == "" {
		v.Add(field, "required", "is required")
	}
}

func requireYear(v *validation.Error, year Year) {
	if year <= 0 {
		v.Add("publishYear", "required", "is required")
	}
}
