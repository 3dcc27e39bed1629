package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencesessions/internal/domain"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTemplateRenderer_RSVPConfirmation(t *testing.T) {
	r := NewTemplateRenderer()
	subject, html, text, err := r.Render("rsvp_confirmation", &domain.RSVPConfirmationEmailData{
		Email:       "ada@example.com",
		Name:        "Ada",
		SessionName: "Intro to <ZK>",
		Date:        "2023-03-28",
		StartTime:   "09:00",
		Location:    "Main Hall",
	})
	require.NoError(t, err)
	assert.Equal(t, "You're going to Intro to <ZK>", subject)
	assert.Contains(t, html, "Intro to &lt;ZK&gt;")
	assert.Contains(t, text, "Location: Main Hall")
	assert.Contains(t, text, "Hi Ada,")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("missing", nil)
	assert.ErrorContains(t, err, "render subject")
}

func TestTemplateRenderer_EveryMessageHasThreeParts(t *testing.T) {
	for _, tmpl := range textTemplates.Templates() {
		name, ok := strings.CutSuffix(tmpl.Name(), "_subject.txt")
		if !ok {
			continue
		}
		assert.NotNil(t, htmlTemplates.Lookup(name+".html"), name)
		assert.NotNil(t, textTemplates.Lookup(name+".txt"), name)
	}
	assert.NotNil(t, textTemplates.Lookup("rsvp_confirmation_subject.txt"))
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "noreply@example.com", "Sessions", discardLogger())

	require.NoError(t, m.Send("ada@example.com", "Hi", "<p>hi</p>", "hi"))
	require.NotNil(t, client.input)
	assert.Equal(t, "Sessions <noreply@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ada@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Equal(t, "hi", aws.ToString(client.input.Message.Body.Text.Data))

	client.err = errors.New("throttled")
	assert.Error(t, m.Send("ada@example.com", "Hi", "", "hi"))
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, m.Send("a@b.c", "s", "", ""))

	_, err = NewMailer(MailerConfig{Provider: "ses"}, discardLogger())
	assert.Error(t, err, "ses requires a from address")
}
