// Package authgate authenticates username and password pairs, issues signed
// bearer tokens and authorizes later requests that present them.
//
// Login:
//   - Authenticator checks the password against the bcrypt hash held by a
//     UserStore. Unknown usernames and wrong passwords fail the same way
//     (ErrInvalidCredentials) and take about the same time.
//   - TokenService mints an HS256 JWT with sub, iat, exp and jti claims.
//
// Authorization:
//   - Gateway.Authorize walks a presented token through verification,
//     identity resolution and the active-user gate. Each stage has its own
//     failure: ErrInvalidToken or ErrExpiredToken, ErrUnknownUser, then
//     ErrInactiveUser. Disabled users never get past the gate.
//
// Activity sinks:
//   - ActivitySink receives one event per login or authorization outcome,
//     tagged with the stage that decided it. Sinks run best-effort (errors
//     are logged) so you can forward to a database or queue without blocking
//     authentication.
//
// HTTP:
//   - RouteAuthenticator exposes POST /token and a bearer middleware on
//     go-router, so any router.Router[T] can mount them. Unauthorized responses carry WWW-Authenticate: Bearer; inactive
//     users get a 400.
package authgate
