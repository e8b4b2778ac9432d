package mail

import "fmt"

// DefaultScheme is used for verification links when none is configured.
const DefaultScheme = "http"

const verificationSubject = "Email verification"

// Message is an outbound email.
type Message struct {
	RecipientEmail string
	Subject        string
	Body           string
}

// Composer builds account emails.
type Composer struct {
	Scheme string
}

// NewComposer returns a Composer for the given link scheme.
func NewComposer(scheme string) Composer {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return Composer{Scheme: scheme}
}

// ComposeVerificationMail returns the message that carries the verification link for email.
func (c Composer) ComposeVerificationMail(email, host, token string) Message {
	scheme := c.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	link := fmt.Sprintf("%s://%s/api/v1/users/verifyEmail/%s", scheme, host, token)
	return Message{
		RecipientEmail: email,
		Subject:        verificationSubject,
		Body:           fmt.Sprintf("<a href='%s'>Verify Your Email</a>", link),
	}
}
