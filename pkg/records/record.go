package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Record is an arbitrary JSON object stored by the remote database. Numbers
// decoded by this package are json.Number.
type Record map[string]any

// envelope is the wire shape of a record on writes.
type envelope struct {
	Value Record `json:"value"`
}

func encodeEnvelope(rec Record) ([]byte, error) {
	if rec == nil {
		return nil, ErrInvalidRecord
	}
	body, err := json.Marshal(envelope{Value: rec})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal envelope: %v", ErrInvalidRecord, err)
	}
	return body, nil
}

// decodeObject decodes a JSON object keeping numbers as json.Number so large
// integers survive unchanged.
func decodeObject(raw []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseRecord decodes a JSON object into a Record with exact numbers.
func ParseRecord(raw []byte) (Record, error) {
	rec, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if rec == nil {
		return nil, ErrInvalidRecord
	}
	return rec, nil
}

const keyPlaceholder = "{key}"

// Routes holds the path template of each operation. Keyed routes contain {key}.
type Routes struct {
	Create string
	Fetch  string
	Update string
	Delete string
}

// DefaultRoutes matches the paths served by the remote database.
func DefaultRoutes() Routes {
	return Routes{
		Create: "/data/add",
		Fetch:  "/data/get/{key}",
		Update: "/data/update/{key}",
		Delete: "/data/delete/{key}",
	}
}

func (r Routes) withDefaults() Routes {
	def := DefaultRoutes()
	if strings.TrimSpace(r.Create) == "" {
		r.Create = def.Create
	}
	if strings.TrimSpace(r.Fetch) == "" {
		r.Fetch = def.Fetch
	}
	if strings.TrimSpace(r.Update) == "" {
		r.Update = def.Update
	}
	if strings.TrimSpace(r.Delete) == "" {
		r.Delete = def.Delete
	}
	return r
}

func (r Routes) validate() error {
	for name, tpl := range map[string]string{"fetch": r.Fetch, "update": r.Update, "delete": r.Delete} {
		if !strings.Contains(tpl, keyPlaceholder) {
			return fmt.Errorf("%s route %q must contain %s", name, tpl, keyPlaceholder)
		}
	}
	return nil
}

// Endpoint builds the base URL for host and port. A host that already carries a
// scheme is kept as-is, otherwise http is assumed. Bare IPv6 literals are bracketed.
func Endpoint(host string, port int) (string, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	scheme, rest := "http", host
	if i := strings.Index(host, "://"); i >= 0 {
		scheme, rest = host[:i], host[i+len("://"):]
	}
	if net.ParseIP(rest) != nil && strings.Contains(rest, ":") {
		rest = "[" + rest + "]"
	}
	host = scheme + "://" + rest

	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parse host: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Port() != "" {
		return "", fmt.Errorf("host %q already has a port", host)
	}
	return host + ":" + strconv.Itoa(port), nil
}
