package models

// EmailTemplate is a localized notification. Subject and Body are text/template sources.
type EmailTemplate struct {
	Base       `bson:",inline"`
	TemplateID string `bson:"templateId" json:"templateId"`
	Locale     string `bson:"locale" json:"locale"`
	Subject    string `bson:"subject" json:"subject"`
	Body       string `bson:"body" json:"body"`
}
