package domain

import "strings"

// GiftDetail is one row of the member record's gift listing.
type GiftDetail struct {
	Name   string
	Status string
}

// MemberDetails is the registration record shown alongside scan results.
type MemberDetails struct {
	MemberID         string
	TagID            string
	LegalName        string
	SpiritualName    string
	RegistrationType string
	MealOption       string
	SPDisciple       bool
	SponsorAmount    int
	ServicesOffered  string
	GiftDetails      []GiftDetail
}

func (m MemberDetails) DisplayName() string {
	if strings.TrimSpace(m.SpiritualName) != "" {
		return m.SpiritualName
	}
	return m.LegalName
}

// ValidMemberID reports whether an id is plausible for tag registration:
// "0" detaches the tag, anything else must be 4 or 5 characters.
func ValidMemberID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "0" {
		return true
	}
	return len(id) >= 4 && len(id) <= 5
}

// TagRegistration binds a wristband tag to a member record.
type TagRegistration struct {
	TagID     string
	MemberID  string
	ScannerID string
}

func NewTagRegistration(tagID, memberID, scannerID string) (TagRegistration, error) {
	tagID = strings.TrimSpace(tagID)
	memberID = strings.TrimSpace(memberID)
	scannerID = strings.TrimSpace(scannerID)

	if tagID == "" {
		return TagRegistration{}, ErrInvalidTag
	}
	if !ValidMemberID(memberID) {
		return TagRegistration{}, ErrInvalidMemberID
	}
	if scannerID == "" {
		return TagRegistration{}, ErrMissingActor
	}
	return TagRegistration{TagID: tagID, MemberID: memberID, ScannerID: scannerID}, nil
}
