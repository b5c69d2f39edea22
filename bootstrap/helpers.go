package bootstrap

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"lookout/storage"
)

// ClassifyConnectionError provides specific error messages based on the type of
// Elasticsearch connection failure.
func ClassifyConnectionError(err error, addr string) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	var respErr *storage.ResponseError
	if errors.As(err, &respErr) &&
		(respErr.StatusCode == http.StatusUnauthorized || respErr.StatusCode == http.StatusForbidden) {
		return fmt.Sprintf("Authentication failed for Elasticsearch at %s.\n"+
			"  Remediation:\n"+
			"  - Verify elasticsearch.username/password or elasticsearch.api_key in config.yaml\n"+
			"  - Check LOOKOUT_ES_API_KEY and the configured secrets provider\n"+
			"  - Ensure the user has the monitor cluster privilege", addr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("Connection to Elasticsearch at %s timed out.\n"+
			"  Possible causes:\n"+
			"  - Elasticsearch is starting up (wait and retry)\n"+
			"  - Network latency or firewall blocking the connection\n"+
			"  - The cluster is overloaded\n"+
			"  Remediation:\n"+
			"  - Check cluster health: curl %s/_cluster/health\n"+
			"  - Raise elasticsearch.request_timeout", addr, addr)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			(opErr.Err != nil && (containsIgnoreCase(opErr.Err.Error(), "connection refused") ||
				containsIgnoreCase(opErr.Err.Error(), "actively refused"))) {
			return fmt.Sprintf("Connection refused by Elasticsearch at %s.\n"+
				"  This usually means Elasticsearch is not running.\n"+
				"  Remediation:\n"+
				"  - Start Elasticsearch: docker compose up -d elasticsearch\n"+
				"  - Verify elasticsearch.addresses in config.yaml", addr)
		}
	}

	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) || containsIgnoreCase(errStr, "x509") {
		return fmt.Sprintf("TLS verification failed for Elasticsearch at %s.\n"+
			"  Remediation:\n"+
			"  - Set elasticsearch.ca_cert_file to the cluster CA (http_ca.crt)\n"+
			"  - Make sure the address hostname matches the certificate\n"+
			"  - For local development only: elasticsearch.insecure_skip_verify: true", addr)
	}

	if containsIgnoreCase(errStr, "no such host") || containsIgnoreCase(errStr, "lookup") {
		return fmt.Sprintf("Cannot resolve hostname in Elasticsearch address %s.\n"+
			"  Remediation:\n"+
			"  - Verify the hostname is correct\n"+
			"  - Check DNS configuration\n"+
			"  - Try using IP address (127.0.0.1) instead of hostname", addr)
	}

	return fmt.Sprintf("Failed to connect to Elasticsearch at %s: %v\n"+
		"  Remediation:\n"+
		"  - Ensure Elasticsearch is running and accessible\n"+
		"  - Check config.yaml elasticsearch.addresses setting\n"+
		"  - Verify network connectivity", addr, err)
}

// containsIgnoreCase checks if a string contains a substring (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
