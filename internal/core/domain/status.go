package domain

import "fmt"

// EntryStatus is the lifecycle state of a journal entry.
// The zero value is not a valid status.
type EntryStatus uint8

const (
	StatusDraft EntryStatus = iota + 1
	StatusPendingApproval
	StatusApproved
	StatusPosted
	StatusVoided
	StatusRejected
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []EntryStatus{
	StatusDraft,
	StatusPendingApproval,
	StatusApproved,
	StatusPosted,
	StatusVoided,
	StatusRejected,
}

// String returns the wire name of the status.
func (s EntryStatus) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusPendingApproval:
		return "PENDING_APPROVAL"
	case StatusApproved:
		return "APPROVED"
	case StatusPosted:
		return "POSTED"
	case StatusVoided:
		return "VOIDED"
	case StatusRejected:
		return "REJECTED"
	}
	return fmt.Sprintf("EntryStatus(%d)", uint8(s))
}

// Label is the human-facing label used by clients and exports.
func (s EntryStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPendingApproval:
		return "Pending Approval"
	case StatusApproved:
		return "Approved"
	case StatusPosted:
		return "Posted"
	case StatusVoided:
		return "Voided"
	case StatusRejected:
		return "Rejected"
	}
	panic(fmt.Sprintf("domain: unhandled entry status %d", uint8(s)))
}

// Valid reports whether s is one of the declared statuses.
func (s EntryStatus) Valid() bool {
	return s >= StatusDraft && s <= StatusRejected
}

// IsBalanceEnforced reports whether entries in this status must satisfy the double-entry invariant.
func (s EntryStatus) IsBalanceEnforced() bool {
	switch s {
	case StatusDraft, StatusRejected:
		return false
	case StatusPendingApproval, StatusApproved, StatusPosted, StatusVoided:
		return true
	}
	panic(fmt.Sprintf("domain: unhandled entry status %d", uint8(s)))
}

// LinesLocked reports whether the entry's lines can no longer change.
func (s EntryStatus) LinesLocked() bool {
	switch s {
	case StatusDraft:
		return false
	case StatusPendingApproval, StatusApproved, StatusPosted, StatusVoided, StatusRejected:
		return true
	}
	panic(fmt.Sprintf("domain: unhandled entry status %d", uint8(s)))
}

// ParseEntryStatus parses the wire name of a status.
func ParseEntryStatus(v string) (EntryStatus, error) {
	for _, s := range AllStatuses {
		if s.String() == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown entry status '%s'", v)
}

func (s EntryStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid entry status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *EntryStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseEntryStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
