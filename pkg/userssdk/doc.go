/*
Package userssdk is the Go client for the usergate credential service, and
the home of its wire types and error taxonomy (shared with the server).

# Client vs Session

Client covers the unauthenticated routes and creates sessions:

	client := userssdk.NewClient("https://users.example.com", "web")

	_, err := client.Register(ctx, "alice", "correct horse battery")

	session, err := client.Login(ctx, "alice", "correct horse battery", "")
	if errors.Is(err, userssdk.ErrTOTPRequired) {
		session, err = client.Login(ctx, "alice", "correct horse battery", code)
	}

Session carries the bearer token and covers the account and MFA routes:

	key, err := session.GenerateKey(ctx, time.Now())
	attached, err := session.Attach(ctx, key.Secret, totpCode)

	err = session.Logout(ctx)

# Errors

Every non-2xx response is returned as *APIError. The predefined errors match
by code, so errors.Is works against responses:

	if errors.Is(err, userssdk.ErrTokenInvalid) { ... }
*/
package userssdk
