package email

// Email is a single-part HTML message.
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
}

type TemplateData map[string]interface{}
