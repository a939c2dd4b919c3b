package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Subject/Text/HTML are set directly or Template names a set of
// embedded templates rendered with Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "comment_notification"
	Data     map[string]any `json:"data,omitempty"`
}

// Resolve renders the template when one is set and returns the final
// subject, text and html bodies.
func (j *EmailJob) Resolve(render func(name string, data any) (string, string, string, error)) (string, string, string, error) {
	if j.Template == "" {
		return j.Subject, j.Text, j.HTML, nil
	}
	return render(j.Template, j.Data)
}
