package respond

import (
	"regexp"
)

var (
	// Slack incoming webhooks: the whole path after /services/ is the secret.
	slackWebhookPattern = regexp.MustCompile(`hooks\.slack\.com/services/[A-Za-z0-9/_-]+`)

	// Discord webhooks: /api/webhooks/{id}/{token}; the id is not secret.
	discordWebhookPattern = regexp.MustCompile(`(discord(?:app)?\.com/api/webhooks/\d+/)[A-Za-z0-9._-]+`)

	bearerTokenPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)

	// userinfo password inside a URL
	urlPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeMessage(err.Error())
}

// SanitizeMessage masks webhook secrets, bearer tokens and URL passwords in
// msg. Delivery errors from HTTP clients quote the request URL, which for
// webhooks is itself the credential.
func SanitizeMessage(msg string) string {
	msg = slackWebhookPattern.ReplaceAllString(msg, "hooks.slack.com/services/****")
	msg = discordWebhookPattern.ReplaceAllString(msg, "${1}****")
	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
