package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// Message is a rendered notification ready for dispatch.
type Message struct {
	Subject string
	Body    string
}

var interviewInviteTmpl = template.Must(template.New("interview_invite").Parse(
	`Dear Dr {{.DoctorName}},

Thank you for your application to join our network. We would like to invite you
to an introductory interview.

Please pick a time that suits you using the link below:

{{.SchedulingLink}}

If none of the available times work for you, reply to this email and we will
arrange an alternative.

Kind regards,
{{.SenderName}}
`))

var temporaryCredentialTmpl = template.Must(template.New("temporary_credential").Parse(
	`Welcome to the doctor portal.

Your account has been created. Use the temporary password below to confirm
your email address and choose a permanent password:

    {{.TempCredential}}

This password can only be used once.
`))

var decisionTmpl = template.Must(template.New("decision").Parse(
	`Dear Dr {{.DoctorName}},

{{.Outcome}}

{{if .Reason}}Notes from our team:

{{.Reason}}

{{end}}Kind regards,
The onboarding team
`))

// RenderInterviewInvite produces the interview invitation body. Pure
// function: no I/O, safe to call from anywhere.
func RenderInterviewInvite(doctorName, schedulingLink, senderName string) (Message, error) {
	var buf bytes.Buffer
	err := interviewInviteTmpl.Execute(&buf, map[string]string{
		"DoctorName":     doctorName,
		"SchedulingLink": schedulingLink,
		"SenderName":     senderName,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render interview invite: %w", err)
	}
	return Message{Subject: "Interview invitation", Body: buf.String()}, nil
}

// RenderTemporaryCredential produces the account-confirmation email body.
func RenderTemporaryCredential(tempCredential string) (Message, error) {
	var buf bytes.Buffer
	err := temporaryCredentialTmpl.Execute(&buf, map[string]string{
		"TempCredential": tempCredential,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render credential notice: %w", err)
	}
	return Message{Subject: "Confirm your email address", Body: buf.String()}, nil
}

// RenderDecision produces an approval/rejection/documentation notice.
func RenderDecision(doctorName, outcome, reason string) (Message, error) {
	var buf bytes.Buffer
	err := decisionTmpl.Execute(&buf, map[string]string{
		"DoctorName": doctorName,
		"Outcome":    outcome,
		"Reason":     reason,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render decision notice: %w", err)
	}
	return Message{Subject: "Your application status", Body: buf.String()}, nil
}
