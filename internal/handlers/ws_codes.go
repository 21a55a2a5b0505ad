// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used within the lobby and room handlers.
// These provide more specific reasons for closure than standard codes.
// Authentication failures never reach these: identity is resolved before the
// upgrade, so a bad token is rejected with a plain HTTP 403 instead.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidRoomIDError  = 3002 // Target room ID specified in the WS URL does not exist.
)
