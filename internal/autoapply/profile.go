package autoapply

import "time"

// Attribute is one canonical profile attribute with its last-modified time.
// UpdatedAt breaks ties when two attributes match a field equally well.
type Attribute struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// Profile is a user's stored profile as an ordered attribute list.
type Profile struct {
	Attributes []Attribute
}

// Canonical profile attribute names. The profile store may carry additional
// free-form attributes; these are the ones the alias dictionary knows about.
const (
	AttrName              = "name"
	AttrFirstName         = "first_name"
	AttrLastName          = "last_name"
	AttrEmail             = "email"
	AttrPhone             = "phone"
	AttrLocation          = "location"
	AttrLinkedIn          = "linkedin"
	AttrWebsite           = "website"
	AttrSkills            = "skills"
	AttrYearsExperience   = "years_experience"
	AttrCurrentTitle      = "current_title"
	AttrCurrentCompany    = "current_company"
	AttrSalaryExpectation = "salary_expectation"
	AttrNoticePeriod      = "notice_period"
	AttrWorkAuthorization = "work_authorization"
	AttrCoverLetter       = "cover_letter"
)

// attributeAliases maps canonical attribute names to the normalized field
// names and labels third-party forms commonly use for them.
var attributeAliases = map[string][]string{
	AttrName:              {"full name", "your name", "legal name", "complete name", "fullname"},
	AttrFirstName:         {"first name", "given name", "fname", "forename"},
	AttrLastName:          {"last name", "family name", "surname", "lname"},
	AttrEmail:             {"email address", "e mail", "work email", "contact email", "email id"},
	AttrPhone:             {"phone number", "mobile", "mobile number", "telephone", "cell phone", "contact number"},
	AttrLocation:          {"city", "current location", "address", "country", "current city", "where are you located"},
	AttrLinkedIn:          {"linkedin url", "linkedin profile", "linkedin profile url"},
	AttrWebsite:           {"portfolio", "personal website", "portfolio url", "github", "github url", "personal site"},
	AttrSkills:            {"key skills", "technical skills", "top skills", "skill set"},
	AttrYearsExperience:   {"years of experience", "experience years", "total experience", "years experience"},
	AttrCurrentTitle:      {"job title", "current role", "current position", "current job title", "headline"},
	AttrCurrentCompany:    {"current employer", "employer", "company name", "most recent employer"},
	AttrSalaryExpectation: {"expected salary", "desired salary", "salary expectations", "expected compensation", "desired compensation", "salary requirement"},
	AttrNoticePeriod:      {"availability", "start date", "earliest start date", "available from", "when can you start"},
	AttrWorkAuthorization: {"authorized to work", "right to work", "visa status", "work permit", "require sponsorship", "sponsorship"},
	AttrCoverLetter:       {"why do you want to work here", "motivation", "additional information", "anything else"},
}

// aliasesFor returns the normalized match keys for an attribute: its own
// normalized name plus any dictionary aliases. Free-form attributes outside
// the dictionary still match on their own name.
func aliasesFor(attrName string) []string {
	normalized := normalizeKey(attrName)
	aliases := attributeAliases[attrName]
	keys := make([]string, 0, len(aliases)+1)
	keys = append(keys, normalized)
	keys = append(keys, aliases...)
	return keys
}
