// Package render turns the message definition's subject and body templates
// into one concrete mail per recipient. Templates see the recipient's field
// mapping under the "recipient" variable, e.g. {{ .recipient.Firstname }},
// and may use conditional blocks. Referencing a field the recipient does not
// have fails with a TemplateError rather than guessing a default.
package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jtuomist/massmail/types"
)

type Renderer struct {
	subject *template.Template
	body    *template.Template
}

// New parses the message's subject and body templates.
func New(msg *types.Message) (*Renderer, error) {
	subject, err := template.New("subject").Option("missingkey=error").Parse(msg.Subject)
	if err != nil {
		return nil, &types.TemplateError{Field: "subject", Err: err}
	}
	body, err := template.New("body").Option("missingkey=error").Parse(msg.Body)
	if err != nil {
		return nil, &types.TemplateError{Field: "body", Err: err}
	}
	return &Renderer{subject: subject, body: body}, nil
}

// Render produces the mail for one recipient, including the display To line
// in the form "Firstname Lastname" <email>.
func (r *Renderer) Render(rec types.Recipient) (types.RenderedMail, error) {
	ctx := map[string]interface{}{"recipient": rec.Values()}
	subject, err := execute(r.subject, ctx)
	if err != nil {
		return types.RenderedMail{}, &types.TemplateError{Field: "subject", Recipient: rec.Email(), Err: err}
	}
	body, err := execute(r.body, ctx)
	if err != nil {
		return types.RenderedMail{}, &types.TemplateError{Field: "body", Recipient: rec.Email(), Err: err}
	}
	return types.RenderedMail{
		Recipient: rec,
		To:        ToLine(rec),
		Subject:   subject,
		Body:      body,
	}, nil
}

// RenderAll renders every recipient, stopping at the first failure.
func (r *Renderer) RenderAll(recs []types.Recipient) ([]types.RenderedMail, error) {
	mails := make([]types.RenderedMail, 0, len(recs))
	for _, rec := range recs {
		m, err := r.Render(rec)
		if err != nil {
			return nil, err
		}
		mails = append(mails, m)
	}
	return mails, nil
}

// ToLine formats the display address line for a recipient.
func ToLine(rec types.Recipient) string {
	return fmt.Sprintf("%q <%s>", rec.Firstname()+" "+rec.Lastname(), rec.Email())
}

func execute(t *template.Template, ctx map[string]interface{}) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}
