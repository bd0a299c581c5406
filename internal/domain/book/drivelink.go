package book

import (
	"regexp"
	"strings"
)

var (
	driveFolderPattern = regexp.MustCompile(`^https://drive\.google\.com/drive/folders/[a-zA-Z0-9_-]+$`)
	driveFilePattern   = regexp.MustCompile(`^https://drive\.google\.com/file/d/[a-zA-Z0-9_-]+/view(\?usp=sharing)?$`)
	driveAccountSeg    = regexp.MustCompile(`/drive/u/\d+/`)
)

// NormalizeDriveLink drops the account selector segment (/drive/u/<n>/) that
// Google adds when a user is signed into several accounts.
func NormalizeDriveLink(link string) string {
	return driveAccountSeg.ReplaceAllString(strings.TrimSpace(link), "/drive/")
}

// ValidDriveLink reports whether link is a Drive folder link or a file view link.
// The link is matched as given; normalise it first.
func ValidDriveLink(link string) bool {
	return driveFolderPattern.MatchString(link) || driveFilePattern.MatchString(link)
}
