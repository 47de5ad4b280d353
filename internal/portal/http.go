package portal

import (
	"fmt"
	"net"
	"net/http"
)

// The portal speaks plain HTTP/1.1 with Connection: close directly on the
// accepted socket. Every exchange is a single short request/response, so
// there is nothing to gain from keep-alive or the full net/http server
// machinery.

func statusLine(code int) string {
	return fmt.Sprintf("HTTP/1.1 %d %s\r\n", code, http.StatusText(code))
}

// writeHTML sends an HTML response and returns the status for logging.
func writeHTML(conn net.Conn, code int, body []byte) error {
	head := statusLine(code) +
		"Content-Type: text/html\r\n" +
		fmt.Sprintf("Content-Length: %d\r\n", len(body)) +
		"Connection: close\r\n\r\n"
	if _, err := conn.Write([]byte(head)); err != nil {
		return fmt.Errorf("failed to write response header: %w", err)
	}
	if _, err := conn.Write(body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// writeRedirect sends a 302 pointing the client at the configuration page.
func writeRedirect(conn net.Conn, location string) error {
	head := statusLine(http.StatusFound) +
		"Location: " + location + "\r\n" +
		"Connection: close\r\n\r\n"
	if _, err := conn.Write([]byte(head)); err != nil {
		return fmt.Errorf("failed to write redirect: %w", err)
	}
	return nil
}

// writeClientError sends a plain-text 400.
func writeClientError(conn net.Conn, msg string) error {
	head := statusLine(http.StatusBadRequest) +
		"Content-Type: text/plain\r\n" +
		fmt.Sprintf("Content-Length: %d\r\n", len(msg)) +
		"Connection: close\r\n\r\n"
	if _, err := conn.Write([]byte(head + msg)); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}
