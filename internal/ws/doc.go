// Package ws implements the WebSocket subscription server.
//
// Protocol: a client connects and sends the text command "subscribe"; from
// then on the server pushes one JSON payload message per publish event.
// Any other client input is ignored. The first failed send tears down that
// connection only.
package ws
