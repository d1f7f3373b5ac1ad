package models

import (
	"strings"

	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
)

// Ref is a tagged taxonomy selection: either a stored entry reference or a
// free-text override chosen through the "other" sentinel. The fields are
// unexported so an override text accompanying a concrete entry reference is
// unrepresentable; ParseRef rejects that combination at the wire boundary.
type Ref struct {
	entryID id.EntryID
	other   string
	isOther bool
}

// EntryRef selects a stored taxonomy entry.
func EntryRef(entryID id.EntryID) Ref {
	return Ref{entryID: entryID}
}

// OtherRef selects the free-text override.
func OtherRef(text string) Ref {
	return Ref{other: strings.TrimSpace(text), isOther: true}
}

// Entry returns the referenced entry ID, ok=false for overrides and empty refs.
func (r Ref) Entry() (id.EntryID, bool) {
	if r.isOther || r.entryID.IsZero() {
		return id.EntryID{}, false
	}
	return r.entryID, true
}

// OtherText returns the override text, ok=false unless the "other" sentinel
// was selected.
func (r Ref) OtherText() (string, bool) {
	if !r.isOther {
		return "", false
	}
	return r.other, true
}

// IsZero reports whether no selection was made at all.
func (r Ref) IsZero() bool {
	return !r.isOther && r.entryID.IsZero()
}

// Value renders the dropdown side of the wire pair: the entry ID string, the
// "other" sentinel, or empty.
func (r Ref) Value() string {
	if r.isOther {
		return OtherValue
	}
	if r.entryID.IsZero() {
		return ""
	}
	return r.entryID.String()
}

// Override renders the free-text side of the wire pair.
func (r Ref) Override() string {
	return r.other
}

// ParseRef maps the wire pair (value, otherText) onto a Ref.
//
//	value == ""       -> empty ref; otherText must also be empty
//	value == "other"  -> override carrying otherText
//	value == <uuid>   -> entry reference; otherText must be empty
func ParseRef(value, otherText string) (Ref, error) {
	value = strings.TrimSpace(value)
	otherText = strings.TrimSpace(otherText)

	switch {
	case value == "":
		if otherText != "" {
			return Ref{}, dErrors.New(dErrors.CodeValidation, `override text requires the "other" selection`)
		}
		return Ref{}, nil
	case strings.EqualFold(value, OtherValue):
		return OtherRef(otherText), nil
	default:
		entryID, err := id.ParseEntryID(value)
		if err != nil {
			return Ref{}, dErrors.Newf(dErrors.CodeValidation, "invalid taxonomy reference %q", value)
		}
		if otherText != "" {
			return Ref{}, dErrors.New(dErrors.CodeValidation, `override text is only valid with the "other" selection`)
		}
		return EntryRef(entryID), nil
	}
}
