package extractor

// Kind is how a section maps to chunks.
type Kind int

const (
	// KindSingle renders the whole section as one chunk.
	KindSingle Kind = iota

	// KindList renders one chunk per list element.
	KindList
)

// FieldSpec declares a field rendered ahead of undeclared ones.
type FieldSpec struct {
	// Label is the rendered field name.
	Label string

	// Keys are source keys tried in order; the first non-empty one wins.
	Keys []string

	// Required fails extraction when no key has a value.
	Required bool
}

// SectionSpec declares how a top-level section is rendered.
type SectionSpec struct {
	// Key is the top-level source key.
	Key string

	// Kind selects single or list rendering.
	Kind Kind

	// ID is the chunk ID for single sections, or the ID prefix for list
	// sections (chunks are "<ID>-<index>").
	ID string

	// Label names the section in rendered text.
	Label string

	// Fields are rendered first, in order. Undeclared fields follow in source order.
	Fields []FieldSpec
}

// DefaultSections returns the hospital knowledge-base layout.
func DefaultSections() []SectionSpec {
	return []SectionSpec{
		{
			Key:   "hospital_info",
			Kind:  KindSingle,
			ID:    "hospital_info",
			Label: "Hospital",
			Fields: []FieldSpec{
				{Label: "Hospital", Keys: []string{"name"}},
				{Label: "Location", Keys: []string{"location"}},
				{Label: "Type", Keys: []string{"type"}},
				{Label: "Capacity", Keys: []string{"capacity"}},
				{Label: "Contact", Keys: []string{"contact_numbers", "contact_number"}},
				{Label: "Address", Keys: []string{"address"}},
			},
		},
		{
			Key:   "departments_and_services",
			Kind:  KindList,
			ID:    "dept",
			Label: "Department",
			Fields: []FieldSpec{
				{Label: "Department", Keys: []string{"department"}, Required: true},
				{Label: "Services", Keys: []string{"services"}},
				{Label: "Specialties", Keys: []string{"specialties"}},
				{Label: "Location", Keys: []string{"location"}},
				{Label: "Contact", Keys: []string{"contact_number", "contact_extension"}},
			},
		},
		{
			Key:   "doctors_and_staff",
			Kind:  KindList,
			ID:    "doctor",
			Label: "Doctor",
			Fields: []FieldSpec{
				{Label: "Doctor", Keys: []string{"name"}, Required: true},
				{Label: "Department", Keys: []string{"department"}},
				{Label: "Expertise", Keys: []string{"expertise"}},
				{Label: "Consultation", Keys: []string{"consultation_days"}},
			},
		},
		{Key: "working_hours", Kind: KindSingle, ID: "working_hours", Label: "Working Hours"},
		{Key: "appointments", Kind: KindSingle, ID: "appointments", Label: "Appointments"},
		{Key: "pre_visit_instructions", Kind: KindSingle, ID: "pre_visit_instructions", Label: "Pre-Visit Instructions"},
		{Key: "pharmacy_information", Kind: KindSingle, ID: "pharmacy", Label: "Pharmacy"},
		{Key: "emergency_and_support", Kind: KindSingle, ID: "emergency", Label: "Emergency"},
		{Key: "notes", Kind: KindSingle, ID: "notes", Label: "Notes"},
	}
}

// consumes returns the set of source keys claimed by declared fields.
func (s SectionSpec) consumes() map[string]bool {
	keys := make(map[string]bool)
	for _, f := range s.Fields {
		for _, k := range f.Keys {
			keys[k] = true
		}
	}
	return keys
}
