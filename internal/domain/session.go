package domain

import "strings"

// Permission list entries as the ledger spells them.
const (
	PermScanOthersQR    = "canScanOthersQr"
	PermApproveTshirt   = "canApproveGiftTshirt"
	PermApproveJacket   = "canApproveGiftJacket"
	PermFulfillTshirt   = "canFulfillGiftTshirt"
	PermFulfillJacket   = "canFulfillGiftJacket"
	PermApproveMultiple = "canApproveMultipleGifts"
)

type Permissions struct {
	CanScanOthersQR    bool
	CanApproveTshirt   bool
	CanApproveJacket   bool
	CanFulfillTshirt   bool
	CanFulfillJacket   bool
	CanApproveMultiple bool
}

func PermissionsFromList(list []string) Permissions {
	var p Permissions
	for _, entry := range list {
		switch strings.TrimSpace(entry) {
		case PermScanOthersQR:
			p.CanScanOthersQR = true
		case PermApproveTshirt:
			p.CanApproveTshirt = true
		case PermApproveJacket:
			p.CanApproveJacket = true
		case PermFulfillTshirt:
			p.CanFulfillTshirt = true
		case PermFulfillJacket:
			p.CanFulfillJacket = true
		case PermApproveMultiple:
			p.CanApproveMultiple = true
		}
	}
	return p
}

func (p Permissions) List() []string {
	var out []string
	if p.CanScanOthersQR {
		out = append(out, PermScanOthersQR)
	}
	if p.CanApproveTshirt {
		out = append(out, PermApproveTshirt)
	}
	if p.CanApproveJacket {
		out = append(out, PermApproveJacket)
	}
	if p.CanFulfillTshirt {
		out = append(out, PermFulfillTshirt)
	}
	if p.CanFulfillJacket {
		out = append(out, PermFulfillJacket)
	}
	if p.CanApproveMultiple {
		out = append(out, PermApproveMultiple)
	}
	return out
}

func (p Permissions) CanApprove(cat Category) bool {
	switch cat {
	case CategoryGiftTshirt:
		return p.CanApproveTshirt
	case CategoryGiftJacket:
		return p.CanApproveJacket
	default:
		return false
	}
}

func (p Permissions) CanFulfill(cat Category) bool {
	switch cat {
	case CategoryGiftTshirt:
		return p.CanFulfillTshirt
	case CategoryGiftJacket:
		return p.CanFulfillJacket
	default:
		return false
	}
}

// Session identifies the logged-in scanner operator.
type Session struct {
	MemberID      string
	LegalName     string
	SpiritualName string
	EventID       string
	Permissions   Permissions
}

type SessionInput struct {
	MemberID      string
	LegalName     string
	SpiritualName string
	EventID       string
	Permissions   Permissions
}

func NewSession(in SessionInput) (Session, error) {
	in.MemberID = strings.TrimSpace(in.MemberID)
	in.LegalName = strings.TrimSpace(in.LegalName)
	in.SpiritualName = strings.TrimSpace(in.SpiritualName)
	in.EventID = strings.TrimSpace(in.EventID)

	if in.MemberID == "" {
		return Session{}, ErrInvalidMemberID
	}
	return Session{
		MemberID:      in.MemberID,
		LegalName:     in.LegalName,
		SpiritualName: in.SpiritualName,
		EventID:       in.EventID,
		Permissions:   in.Permissions,
	}, nil
}

func (s Session) DisplayName() string {
	if s.SpiritualName != "" {
		return s.SpiritualName
	}
	return s.LegalName
}
