// Package signing implements the Signer strategy object called for in §9's
// "dynamic type dispatch on venue" redesign note: signing differences
// between venues collapse into one interface with one concrete type per
// wire scheme.
package signing

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lumenfx/tradecore/common/crypto"
)

// Request is the pure input a Signer consumes: enough to reproduce what the
// venue will see on the wire without this package knowing anything about
// HTTP transport.
type Request struct {
	Method string
	Path   string
	Params map[string]string
	Body   string // raw JSON body, empty for GET/DELETE
}

// Result is what a signing scheme contributes back to the request: extra
// query parameters and/or headers, applied on top of whatever the caller
// already built.
type Result struct {
	Params  map[string]string
	Headers map[string]string
}

// Signer is the abstract §4.4 "sign(request, secret) -> (params', headers')"
// contract.
type Signer interface {
	Sign(req Request, key, secret string, at time.Time) (Result, error)
}

// QueryParamHMAC implements the first §4.4 scheme: HMAC-SHA256 over the
// urlencoded params plus a timestamp, appended as a "signature" query
// parameter, with the API key carried in a header.
type QueryParamHMAC struct {
	KeyHeader string // defaults to "X-API-KEY"
}

func (s QueryParamHMAC) Sign(req Request, key, secret string, at time.Time) (Result, error) {
	header := s.KeyHeader
	if header == "" {
		header = "X-API-KEY"
	}

	values := url.Values{}
	for k, v := range req.Params {
		values.Set(k, v)
	}
	values.Set("timestamp", strconv.FormatInt(at.UnixMilli(), 10))

	mac, err := crypto.GetHMAC(crypto.HashSHA256, []byte(canonicalQuery(values)), []byte(secret))
	if err != nil {
		return Result{}, fmt.Errorf("signing query params: %w", err)
	}

	return Result{
		Params: map[string]string{
			"timestamp": values.Get("timestamp"),
			"signature": crypto.HexEncodeToString(mac),
		},
		Headers: map[string]string{header: key},
	}, nil
}

// canonicalQuery renders values sorted by key, matching venues that require
// a stable parameter order ahead of signing, independent of url.Values's own
// (already-sorted) Encode behavior, so the order does not rest on a stdlib
// implementation detail.
func canonicalQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(values.Get(k)))
	}
	return b.String()
}

// HeaderSplitHMAC implements the second §4.4 scheme: HMAC-SHA256 over
// timestamp || METHOD || path || body, split across three headers
// (KEY/SIGN/TS), with an optional subaccount header.
type HeaderSplitHMAC struct {
	KeyHeader        string // defaults to "NOVA-KEY"
	SignHeader       string // defaults to "NOVA-SIGN"
	TimestampHeader  string // defaults to "NOVA-TS"
	SubaccountHeader string // defaults to "NOVA-SUBACCOUNT"
	Subaccount       string
}

func (s HeaderSplitHMAC) Sign(req Request, key, secret string, at time.Time) (Result, error) {
	keyHeader, signHeader, tsHeader, subHeader := s.KeyHeader, s.SignHeader, s.TimestampHeader, s.SubaccountHeader
	if keyHeader == "" {
		keyHeader = "NOVA-KEY"
	}
	if signHeader == "" {
		signHeader = "NOVA-SIGN"
	}
	if tsHeader == "" {
		tsHeader = "NOVA-TS"
	}
	if subHeader == "" {
		subHeader = "NOVA-SUBACCOUNT"
	}

	ts := strconv.FormatInt(at.UnixMilli(), 10)
	payload := ts + strings.ToUpper(req.Method) + req.Path + req.Body

	mac, err := crypto.GetHMAC(crypto.HashSHA256, []byte(payload), []byte(secret))
	if err != nil {
		return Result{}, fmt.Errorf("signing header payload: %w", err)
	}

	headers := map[string]string{
		keyHeader:  key,
		signHeader: crypto.HexEncodeToString(mac),
		tsHeader:   ts,
	}
	if s.Subaccount != "" {
		headers[subHeader] = s.Subaccount
	}

	return Result{Headers: headers}, nil
}
