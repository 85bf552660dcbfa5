package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtuomist/massmail/types"
)

var columns = []string{"Firstname", "Lastname", "email", "lang"}

func ann() types.Recipient {
	return types.NewRecipient(columns, map[string]string{
		"Firstname": "Ann",
		"Lastname":  "Lee",
		"email":     "ann@example.com",
		"lang":      "fi",
	})
}

func TestRenderSubstitution(t *testing.T) {
	r, err := New(&types.Message{
		Subject: "Hello {{ .recipient.Firstname }}",
		Body:    "Dear {{ .recipient.Firstname }}",
	})
	require.NoError(t, err)
	m, err := r.Render(ann())
	require.NoError(t, err)
	assert.Equal(t, "Hello Ann", m.Subject)
	assert.Equal(t, "Dear Ann", m.Body)
	assert.Equal(t, `"Ann Lee" <ann@example.com>`, m.To)
}

func TestRenderConditional(t *testing.T) {
	r, err := New(&types.Message{
		Subject: "s",
		Body:    `{{ if eq .recipient.lang "fi" }}Hei{{ else }}Hello{{ end }} {{ .recipient.Firstname }}`,
	})
	require.NoError(t, err)
	m, err := r.Render(ann())
	require.NoError(t, err)
	assert.Equal(t, "Hei Ann", m.Body)
}

func TestRenderUndefinedFieldFails(t *testing.T) {
	r, err := New(&types.Message{
		Subject: "s",
		Body:    "Dear {{ .recipient.Nickname }}",
	})
	require.NoError(t, err)
	_, err = r.Render(ann())
	var templateErr *types.TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Equal(t, "body", templateErr.Field)
	assert.Equal(t, "ann@example.com", templateErr.Recipient)
}

func TestRenderBadSyntax(t *testing.T) {
	_, err := New(&types.Message{
		Subject: "s",
		Body:    "Dear {{ .recipient.Firstname",
	})
	var templateErr *types.TemplateError
	assert.ErrorAs(t, err, &templateErr)
}

func TestRenderIdempotent(t *testing.T) {
	r, err := New(&types.Message{
		Subject: "Hello {{ .recipient.Firstname }}",
		Body:    "Dear {{ .recipient.Firstname }} {{ .recipient.Lastname }}",
	})
	require.NoError(t, err)
	first, err := r.Render(ann())
	require.NoError(t, err)
	second, err := r.Render(ann())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderAll(t *testing.T) {
	bo := types.NewRecipient(columns, map[string]string{
		"Firstname": "Bo",
		"Lastname":  "Kim",
		"email":     "bo@example.com",
	})
	r, err := New(&types.Message{Subject: "s", Body: "Dear {{ .recipient.Firstname }}"})
	require.NoError(t, err)
	mails, err := r.RenderAll([]types.Recipient{ann(), bo})
	require.NoError(t, err)
	require.Len(t, mails, 2)
	assert.Equal(t, "Dear Ann", mails[0].Body)
	assert.Equal(t, "Dear Bo", mails[1].Body)
}
