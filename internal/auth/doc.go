// Package auth decides whether a request may reach the server-rendered pages.
//
// A Gate is consulted before each page handler runs:
//   - OpenGate admits every request
//   - TokenGate admits requests carrying a valid HS256 access token, either as
//     an "Authorization: Bearer" header or in the bookshelf_token cookie
//
// Tokens are issued by the login endpoint once the single configured admin
// credential has been checked. The admin password may be configured in plain
// text or as an Argon2id PHC hash produced by HashPassword.
package auth
