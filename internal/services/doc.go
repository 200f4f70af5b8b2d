// Package services implements the client for the TextQL playbook service.
//
// # Transport
//
// [Client] speaks the service's RPC-style JSON protocol: every operation is a POST to a
// fixed path under the base URL (default https://app.textql.com) with the headers
//
//	Authorization: ApiKey <key>
//	Content-Type: application/json
//
// Each call is attempted exactly once. There are no retries, timeouts or rate limits;
// callers own any retry policy.
//
// # Operations
//
//   - [Client.CreatePlaybook] : POST PlaybookService/CreatePlaybook with {"playbook":{"id":...}}
//   - [Client.UpdatePlaybook] : POST PlaybookService/UpdatePlaybook with the full record
//   - [Client.GetConnectors] : POST ConnectorService/GetConnectors with {}
//   - [Client.ListConnectors] and [Client.FindConnectorByName] build on GetConnectors
//   - [Client.CreateCompletePlaybook] : create, then update; a failed create skips the update
//
// # Error Handling
//
// Every failure at the network or service boundary is returned as an [*APIError] with a
// non-empty Message, an optional Code and the HTTP Status when one was received:
//   - non-2xx responses: {message, code, status} parsed from the body, falling back to the
//     raw body text, then to the HTTP status line
//   - transport failures (DNS, refused connections, unreadable bodies): Code [CodeTransport]
//   - undecodable success bodies: Code [CodeMalformedResponse]
//
// All API errors match [shared.ErrAPIRequest] with errors.Is.
//
// [Result] wraps a value/error pair into the {success, data | error} envelope used for
// machine-readable output.
package services
