package service

import "fmt"

func welcomeEmailTemplate(username, homeURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s, %s!", appName, username)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Start a log for your next trip, record your next oil change,
or look up a mechanic near you:
%s

Best,
The %s Team`, username, homeURL, appName)

	return subject, body
}

func accountDeletedEmailTemplate(username, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s account has been deleted", appName)
	body := fmt.Sprintf(`Hi %s,

Your account has been permanently deleted from %s.

Your logs, maintenance records, saved places and photos have been removed.

If you change your mind, you're welcome to create a new account anytime.

Best,
The %s Team`, username, appName, appName)

	return subject, body
}
