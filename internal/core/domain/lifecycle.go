package domain

import "fmt"

// EntryAction is an operation requested against a journal entry.
type EntryAction string

const (
	ActionSubmit    EntryAction = "submit"
	ActionApprove   EntryAction = "approve"
	ActionReject    EntryAction = "reject"
	ActionPost      EntryAction = "post"
	ActionVoid      EntryAction = "void"
	ActionDuplicate EntryAction = "duplicate"
	ActionEdit      EntryAction = "edit"
)

// Next returns the status reached by applying action to an entry in status s.
// ok is false when the transition is not part of the lifecycle.
// Duplicate never moves the source entry; it yields StatusDraft for the new copy.
func (s EntryStatus) Next(action EntryAction) (next EntryStatus, ok bool) {
	if action == ActionDuplicate {
		return StatusDraft, s.Valid()
	}

	switch s {
	case StatusDraft:
		switch action {
		case ActionSubmit:
			return StatusPendingApproval, true
		case ActionEdit:
			return StatusDraft, true
		}
	case StatusPendingApproval:
		switch action {
		case ActionApprove:
			return StatusApproved, true
		case ActionReject:
			return StatusRejected, true
		}
	case StatusApproved:
		if action == ActionPost {
			return StatusPosted, true
		}
	case StatusPosted:
		if action == ActionVoid {
			return StatusVoided, true
		}
	case StatusVoided, StatusRejected:
		// terminal
	default:
		panic(fmt.Sprintf("domain: unhandled entry status %d", uint8(s)))
	}
	return s, false
}

// RequiresReason reports whether the action must carry a non-empty reason.
func (a EntryAction) RequiresReason() bool {
	return a == ActionReject || a == ActionVoid
}

// RequiredRole is the minimum workplace role the caller needs for the action.
func (a EntryAction) RequiredRole() UserWorkplaceRole {
	switch a {
	case ActionApprove, ActionReject, ActionPost, ActionVoid:
		return RoleAdmin
	default:
		return RoleMember
	}
}

// Apply records a persisted status change on the entry: status, version and the audit
// fields belonging to the target status.
func (e *JournalEntry) Apply(change StatusChange) {
	at := change.At
	e.Status = change.To
	e.Version = change.ExpectedVersion + 1
	e.Audit.LastUpdatedBy = change.Actor
	e.Audit.LastUpdatedAt = at

	switch change.To {
	case StatusPendingApproval:
		e.Audit.RequestedBy, e.Audit.RequestedAt = change.Actor, &at
	case StatusApproved:
		e.Audit.ApprovedBy, e.Audit.ApprovedAt = change.Actor, &at
	case StatusRejected:
		e.Audit.RejectedBy, e.Audit.RejectedAt = change.Actor, &at
		e.Audit.RejectionReason = change.Reason
	case StatusPosted:
		e.Audit.PostedBy, e.Audit.PostedAt = change.Actor, &at
	case StatusVoided:
		e.Audit.VoidedBy, e.Audit.VoidedAt = change.Actor, &at
		e.Audit.VoidReason = change.Reason
	case StatusDraft:
	default:
		panic(fmt.Sprintf("domain: unhandled entry status %d", uint8(change.To)))
	}
}
