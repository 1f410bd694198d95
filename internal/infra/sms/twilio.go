package sms

import (
	"context"
	"errors"

	"whoseonfirst/internal/domain/transport"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioAdapter implements the transport.Client interface using the Twilio
// REST API. One call is at most one SMS; retry lives in the dispatcher.
type TwilioAdapter struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioAdapter(accountSID, authToken, fromNumber string) *TwilioAdapter {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioAdapter{client: client, from: fromNumber}
}

// Send delivers one SMS and returns the provider message SID.
func (a *TwilioAdapter) Send(ctx context.Context, address, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(address)
	params.SetFrom(a.from)
	params.SetBody(body)

	resp, err := a.client.Api.CreateMessage(params)
	if err != nil {
		return "", translateError(err)
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

// translateError maps a Twilio failure onto the transport error type so the
// dispatcher can decide whether another attempt is worthwhile.
func translateError(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		return &transport.Error{
			Code:      restErr.Code,
			Message:   restErr.Message,
			Retryable: isRetryable(restErr),
		}
	}
	// Network-level failures are worth retrying.
	return &transport.Error{Message: err.Error(), Retryable: true}
}

func isRetryable(err *twilioclient.TwilioRestError) bool {
	switch err.Status {
	case 429, 500, 502, 503:
		return true
	}
	switch err.Code {
	// Invalid number, permission denied, bad format: retrying cannot help.
	case 21211, 21217, 21408, 21601, 21614:
		return false
	// Temporary auth, carrier and queue failures.
	case 20003, 21610, 30001, 30002, 30003, 30004, 30005, 30006:
		return true
	}
	return false
}
