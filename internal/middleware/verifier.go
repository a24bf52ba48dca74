package middleware

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google-issued ID tokens and extracts the stable
// subject id. The auth provider itself stays outside this service; we only
// check its signatures.
type GoogleVerifier struct {
	audience string
}

func NewGoogleVerifier(audience string) *GoogleVerifier {
	return &GoogleVerifier{audience: audience}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (string, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return "", fmt.Errorf("validate id token: %w", err)
	}
	if payload.Subject == "" {
		return "", fmt.Errorf("id token has no subject")
	}
	return payload.Subject, nil
}
