// Package identity is a client for the REST identity provider used to sign
// users up and in with email and password.
//
// Client implements client.IdentityProvider. Requests are JSON posts to
// {endpoint}/v1/accounts:signUp and {endpoint}/v1/accounts:signInWithPassword
// with the API key in the key query parameter. Successful responses become a
// models.Session; the uid, email and expiry are taken from the response and,
// where missing, from the claims of the returned ID token.
//
// Provider rejections are returned as *AuthError with a Kind the caller can
// switch on; UserMessage turns any error into user-facing text. Transport
// failures and 5xx responses wrap client.ErrUnavailable.
package identity
