package command

import (
	"bytes"
	"context"
	"crypto/sha1"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Failure stages reported in the envelope's fetchError status for failures
// outside the HTTP exchange proper. An HTTP error puts its real status
// there instead, so real statuses and stages share the key but not the
// range.
const (
	fetchStageParse = iota
	fetchStageConnect
	fetchStageBody
)

// Fetch answers the "fetch" command: it performs an HTTPS request on
// behalf of the web view and reports the outcome, good or bad, in a single
// response envelope. Page script gets to reach endpoints that its origin
// rules would block during local development, and gets the peer
// certificate details for display.
//
// Parameters: "resource" is the URL to fetch; "options" may carry
// "method", a "headers" object, and a "body" string or "bodyObject" object
// (either body form is sent as application/json). The exchange is always
// TLS, whatever scheme the resource names.
type Fetch struct {
	// RootCAs overrides the system trust anchors. Tests point this at
	// their own server certificate.
	RootCAs *x509.CertPool

	// Timeout bounds the whole exchange. Zero means no limit beyond the
	// request context.
	Timeout time.Duration
}

func NewFetch() *Fetch {
	return &Fetch{}
}

// Handle recognises only the "fetch" command. Bad parameters, connection
// failures, HTTP error statuses and undecodable response bodies are all
// reported in the envelope, not as errors: the web view decides what a
// failed fetch means. Only internal faults, like an unusable method
// string, go the error route.
func (f *Fetch) Handle(ctx context.Context, cmd Object) (Object, error) {
	if cmd.Command() != "fetch" {
		return nil, nil
	}
	parameters := cmd.Parameters()
	target, fetchError := parseResource(parameters)
	if fetchError != nil {
		return Object{"fetchError": fetchError}, nil
	}
	return f.exchange(ctx, target, parameters)
}

func (f *Fetch) exchange(ctx context.Context, target *url.URL, parameters Object) (Object, error) {
	envelope := Object{
		"peerCertificateDER":    "",
		"peerCertificateLength": 0,
	}
	target.Scheme = "https"
	address := target.Host
	if target.Port() == "" {
		address = net.JoinHostPort(target.Hostname(), "443")
	}
	dialer := &tls.Dialer{Config: &tls.Config{RootCAs: f.RootCAs}}
	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		envelope["fetchError"] = Object{
			"status":     fetchStageConnect,
			"statusText": err.Error(),
		}
		return envelope, nil
	}
	conn := netConn.(*tls.Conn)
	defer conn.Close()
	if peers := conn.ConnectionState().PeerCertificates; len(peers) > 0 {
		der := peers[0].Raw
		envelope["peerCertificateDER"] = base64.StdEncoding.EncodeToString(der)
		envelope["peerCertificateLength"] = len(der)
		Logger(ctx).Debugf("Peer certificate SHA1 %x.", sha1.Sum(der))
	}

	request, err := buildRequest(ctx, target, parameters)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		// Single-use transport handing out the connection that already
		// produced the certificate details above.
		Transport: &http.Transport{
			DialTLSContext: func(context.Context, string, string) (net.Conn, error) {
				return conn, nil
			},
		},
		// Redirect statuses are results here, not instructions.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: f.Timeout,
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	details := responseDetails(response)
	if response.StatusCode >= http.StatusBadRequest {
		envelope["fetchError"] = details
		envelope["fetchedRaw"] = string(raw)
		return envelope, nil
	}
	fetched, err := parseBody(raw)
	if err != nil {
		envelope["fetchError"] = Object{
			"status":     fetchStageBody,
			"statusText": err.Error(),
		}
		envelope["fetchedRaw"] = string(raw)
		envelope["fetchedDetails"] = details
		return envelope, nil
	}
	envelope["fetched"] = fetched
	envelope["fetchedDetails"] = details
	return envelope, nil
}

func parseResource(parameters Object) (*url.URL, Object) {
	resource, ok := parameters["resource"].(string)
	if !ok {
		keys := make([]string, 0, len(parameters))
		for key := range parameters {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return nil, Object{
			"status":        fetchStageParse,
			"statusText":    `No "resource" string in parameters.`,
			"parameterKeys": keys,
		}
	}
	target, err := url.Parse(resource)
	if err != nil {
		return nil, Object{
			"status":     fetchStageParse,
			"statusText": err.Error(),
			"resource":   resource,
		}
	}
	if target.Host == "" {
		return nil, Object{
			"status":     fetchStageParse,
			"statusText": "No host in resource.",
			"resource":   resource,
			"url":        target.String(),
		}
	}
	return target, nil
}

func buildRequest(ctx context.Context, target *url.URL, parameters Object) (*http.Request, error) {
	options := asObject(parameters["options"])
	method := http.MethodGet
	if name, ok := options["method"].(string); ok && name != "" {
		method = name
	}
	var body io.Reader
	jsonBody := false
	if text, ok := options["body"].(string); ok {
		body = strings.NewReader(text)
		jsonBody = true
	} else if object, ok := options["bodyObject"]; ok && object != nil {
		payload, err := json.Marshal(object)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
		jsonBody = true
	}
	request, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	for name, value := range asObject(options["headers"]) {
		if text, ok := value.(string); ok {
			request.Header.Set(name, text)
		}
	}
	if jsonBody {
		request.Header.Set("Content-Type", "application/json")
	}
	return request, nil
}

func responseDetails(response *http.Response) Object {
	headers := Object{}
	for name := range response.Header {
		headers[name] = response.Header.Get(name)
	}
	return Object{
		"status":     response.StatusCode,
		"statusText": http.StatusText(response.StatusCode),
		"headers":    headers,
	}
}

// parseBody decodes the response body as JSON. An empty body isn't an
// error; it decodes to the empty string.
func parseBody(raw []byte) (any, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var fetched any
	if err := json.Unmarshal(raw, &fetched); err != nil {
		return nil, err
	}
	return fetched, nil
}
