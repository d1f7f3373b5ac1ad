package handler

import (
	"errors"
	"fmt"
	"time"

	"kinship/internal/family/models"
	taxonomy "kinship/internal/taxonomy/models"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// ParseDate parses a date-only wire field, reporting the violation under the
// given field name. Empty input is a nil date.
func ParseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, dErrors.NewValidation([]dErrors.FieldError{
			{Field: field, Reason: "must_be_yyyy_mm_dd"},
		})
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// MemberDetailsPayload is the flat member-details section body. Version is
// the row version the client last read and is echoed back on submit.
type MemberDetailsPayload struct {
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	MaritalStatus string `json:"marital_status"`
	HasChildren   bool   `json:"has_children"`
	CountryCode   string `json:"country_code"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	AddressLine   string `json:"address_line"`
	City          string `json:"city"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	Version       int64  `json:"version"`
}

// MemberDetailsWire projects the member row onto the section body.
func MemberDetailsWire(member *models.Member) MemberDetailsPayload {
	return MemberDetailsPayload{
		Name:          member.Name,
		Gender:        string(member.Gender),
		DateOfBirth:   formatDate(member.DateOfBirth),
		MaritalStatus: string(member.MaritalStatus),
		HasChildren:   member.HasChildren,
		CountryCode:   member.CountryCode,
		Phone:         member.Phone,
		Email:         member.Email,
		AddressLine:   member.AddressLine,
		City:          member.City,
		State:         member.State,
		Pincode:       member.Pincode,
		Version:       member.Version,
	}
}

// SpousePayload is the flat spouse section body.
type SpousePayload struct {
	Name        string `json:"spouse_name"`
	Gender      string `json:"spouse_gender"`
	DateOfBirth string `json:"spouse_date_of_birth"`
	CountryCode string `json:"spouse_country_code"`
	Phone       string `json:"spouse_phone"`
	Email       string `json:"spouse_email"`
}

func SpouseWire(spouse *models.Spouse) SpousePayload {
	return SpousePayload{
		Name:        spouse.Name,
		Gender:      string(spouse.Gender),
		DateOfBirth: formatDate(spouse.DateOfBirth),
		CountryCode: spouse.CountryCode,
		Phone:       spouse.Phone,
		Email:       spouse.Email,
	}
}

// DecodeSpouse maps the section body onto a spouse record.
func DecodeSpouse(p SpousePayload) (*models.Spouse, error) {
	dob, err := ParseDate("spouse_date_of_birth", p.DateOfBirth)
	if err != nil {
		return nil, err
	}
	return &models.Spouse{
		Name:        p.Name,
		Gender:      models.Gender(p.Gender),
		DateOfBirth: dob,
		CountryCode: p.CountryCode,
		Phone:       p.Phone,
		Email:       p.Email,
	}, nil
}

// ChildPayload is one row of the children section body.
type ChildPayload struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	Relationship string `json:"relationship"`
}

// ChildrenPayload is the children section body.
type ChildrenPayload struct {
	Children []ChildPayload `json:"children"`
}

func ChildrenWire(children []*models.Child) ChildrenPayload {
	out := ChildrenPayload{Children: make([]ChildPayload, 0, len(children))}
	for _, child := range children {
		out.Children = append(out.Children, ChildPayload{
			ID:           child.ID.String(),
			Name:         child.Name,
			Gender:       string(child.Gender),
			DateOfBirth:  formatDate(child.DateOfBirth),
			Relationship: string(child.Relationship),
		})
	}
	return out
}

// DecodeChildren maps the section body onto child records, preserving
// submission order. Echoed ids keep row identity across resubmissions.
func DecodeChildren(p ChildrenPayload) ([]*models.Child, error) {
	children := make([]*models.Child, 0, len(p.Children))
	for i, row := range p.Children {
		dob, err := ParseDate(fmt.Sprintf("children[%d].date_of_birth", i), row.DateOfBirth)
		if err != nil {
			return nil, err
		}
		child := &models.Child{
			Name:         row.Name,
			Gender:       models.Gender(row.Gender),
			DateOfBirth:  dob,
			Relationship: models.Relationship(row.Relationship),
		}
		if row.ID != "" {
			childID, err := id.ParseChildID(row.ID)
			if err != nil {
				return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid child id %q", row.ID)
			}
			child.ID = childID
		}
		children = append(children, child)
	}
	return children, nil
}

// TreeWire flattens one lineage side's ancestor slots onto the
// relation-prefixed field set (father_name, father_status, father_kulam,
// father_kulam_other, ...). Every relation appears in the output, empty when
// the slot was never saved.
func TreeWire(slots []*models.AncestorSlot) map[string]any {
	byRelation := make(map[models.Relation]*models.AncestorSlot, len(slots))
	for _, slot := range slots {
		byRelation[slot.Relation] = slot
	}
	out := make(map[string]any, len(models.Relations)*11)
	for _, relation := range models.Relations {
		slot := byRelation[relation]
		if slot == nil {
			slot = &models.AncestorSlot{Relation: relation}
		}
		prefix := string(relation) + "_"
		out[prefix+"name"] = slot.Name
		out[prefix+"native_place"] = slot.NativePlace
		out[prefix+"residence_place"] = slot.ResidencePlace
		out[prefix+"same_as_native"] = slot.SameAsNative
		out[prefix+"status"] = string(slot.Status)
		out[prefix+"kulam"] = slot.Clan.Value()
		out[prefix+"kulam_other"] = slot.Clan.Override()
		out[prefix+"kuladeivam"] = slot.ClanDeity.Value()
		out[prefix+"kuladeivam_other"] = slot.ClanDeity.Override()
		out[prefix+"kootam"] = slot.SubClan.Value()
		out[prefix+"kootam_other"] = slot.SubClan.Override()
	}
	return out
}

// DecodeTree maps the flat field set back onto ancestor slots, one per
// relation present in the body. Taxonomy pair violations are collected across
// every slot so the response carries all of them.
func DecodeTree(body map[string]any) ([]*models.AncestorSlot, error) {
	var (
		slots     []*models.AncestorSlot
		fieldErrs []dErrors.FieldError
	)
	for _, relation := range models.Relations {
		prefix := string(relation) + "_"
		if !hasAnyField(body, prefix) {
			continue
		}
		slot := &models.AncestorSlot{
			Relation:       relation,
			Name:           stringField(body, prefix+"name"),
			NativePlace:    stringField(body, prefix+"native_place"),
			ResidencePlace: stringField(body, prefix+"residence_place"),
			SameAsNative:   boolField(body, prefix+"same_as_native"),
			Status:         models.VitalStatus(stringField(body, prefix+"status")),
		}
		slot.Clan = decodeRefField(body, prefix+"kulam", &fieldErrs)
		slot.ClanDeity = decodeRefField(body, prefix+"kuladeivam", &fieldErrs)
		slot.SubClan = decodeRefField(body, prefix+"kootam", &fieldErrs)
		slots = append(slots, slot)
	}
	if len(fieldErrs) > 0 {
		return nil, dErrors.NewValidation(fieldErrs)
	}
	return slots, nil
}

func decodeRefField(body map[string]any, field string, fieldErrs *[]dErrors.FieldError) taxonomy.Ref {
	ref, err := taxonomy.ParseRef(stringField(body, field), stringField(body, field+"_other"))
	if err != nil {
		reason := err.Error()
		var de *dErrors.Error
		if errors.As(err, &de) {
			reason = de.Message
		}
		*fieldErrs = append(*fieldErrs, dErrors.FieldError{Field: field, Reason: reason})
		return taxonomy.Ref{}
	}
	return ref
}

func hasAnyField(body map[string]any, prefix string) bool {
	for _, suffix := range []string{"name", "native_place", "residence_place", "same_as_native", "status", "kulam", "kuladeivam", "kootam"} {
		if _, ok := body[prefix+suffix]; ok {
			return true
		}
	}
	return false
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func boolField(body map[string]any, key string) bool {
	b, _ := body[key].(bool)
	return b
}
