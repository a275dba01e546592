// Package autoapply implements the auto-apply engine: analyzing application
// forms, mapping profile data onto form fields, scoring completeness and
// driving the actual submission.
package autoapply

// FieldKind classifies a detected form field.
type FieldKind string

const (
	// FieldText is a free-text input (text, email, tel, textarea).
	FieldText FieldKind = "text"
	// FieldSelect is a dropdown or radio group.
	FieldSelect FieldKind = "select"
	// FieldFile is a file upload input.
	FieldFile FieldKind = "file"
	// FieldBoolean is a checkbox or consent toggle.
	FieldBoolean FieldKind = "boolean"
	// FieldDate is a date input.
	FieldDate FieldKind = "date"
)

// FormField is one field detected on an application form. Produced by the
// form extraction layer; never mutated afterwards.
type FormField struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Kind     FieldKind `json:"kind"`
}

// ResponseSource records where a generated value came from.
type ResponseSource string

const (
	// SourceProfile means the value was resolved from a profile attribute.
	SourceProfile ResponseSource = "profile"
	// SourceDefault means a type-compatible default was applied.
	SourceDefault ResponseSource = "default"
	// SourceUnresolved means no value could be generated.
	SourceUnresolved ResponseSource = "unresolved"
)

// FieldResponse is one field's proposed value with confidence and provenance.
// GeneratedValue is nil exactly when Source is SourceUnresolved.
type FieldResponse struct {
	Field          FormField      `json:"field"`
	GeneratedValue *string        `json:"generated_value"`
	Confidence     float64        `json:"confidence"`
	Source         ResponseSource `json:"source"`
}

// Resolved reports whether the response carries a usable value.
func (r FieldResponse) Resolved() bool {
	return r.Source != SourceUnresolved
}

// ProfileCompleteness reports how much of a form the stored profile covers.
// Derived on every request; never persisted.
type ProfileCompleteness struct {
	OverallPercentage int  `json:"overall_percentage"`
	ReadyForAutoApply bool `json:"ready_for_auto_apply"`
}

// AnalysisResult is the outcome of a form analysis. Supported=false is
// terminal for a URL: retrying analysis is not expected to help.
type AnalysisResult struct {
	Supported bool `json:"supported"`
}

// PreviewPayload is the full preview shown to the user before confirmation.
// Invariant: FieldsWithResponses <= TotalFields.
type PreviewPayload struct {
	TotalFields         int                 `json:"total_fields"`
	FieldsWithResponses int                 `json:"fields_with_responses"`
	Completeness        ProfileCompleteness `json:"completeness"`
	FieldPreviews       []FieldResponse     `json:"field_previews"`
}

// ApplicationResult is the durable outcome of a submission attempt.
// ApplicationID is non-empty iff Success; once issued it is proof of a real
// submission and is never reissued for the same (user, job) pair.
type ApplicationResult struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"application_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// MechanismKind classifies how a form is submitted.
type MechanismKind string

const (
	// MechanismSinglePage is a plain single-page form with a submit control.
	MechanismSinglePage MechanismKind = "single_page"
	// MechanismWizard is a multi-step flow the driver does not attempt.
	MechanismWizard MechanismKind = "wizard"
	// MechanismLoginWalled requires an upstream account session.
	MechanismLoginWalled MechanismKind = "login_walled"
	// MechanismUnknown means no recognizable submission mechanism was found.
	MechanismUnknown MechanismKind = "unknown"
)

// Mechanism describes the submission mechanics of a detected form.
type Mechanism struct {
	Kind    MechanismKind `json:"kind"`
	Captcha bool          `json:"captcha"`
}

// Drivable reports whether the submission driver can handle this mechanism.
func (m Mechanism) Drivable() bool {
	return m.Kind == MechanismSinglePage && !m.Captcha
}

// FormSchema is everything the extraction layer learned about a form.
type FormSchema struct {
	Fields    []FormField `json:"fields"`
	Mechanism Mechanism   `json:"mechanism"`
}
