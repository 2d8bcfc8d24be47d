package auth

import (
	"encoding/json"
	"errors"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// QRCode is what a scanned code points at: either a slug or a table username.
type QRCode struct {
	Slug  string
	Table string
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ParseQRPayload understands the three payloads printed on tables: a deep link
// (https://host/t/<slug>, or any link ending in the slug), a bare slug, and a cart payload {"table": "01"}.
func ParseQRPayload(payload string) (QRCode, error) {
	const op = "parse qr"
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return QRCode{}, newError(KindInvalid, op, errors.New("empty payload"))
	}

	if strings.HasPrefix(payload, "{") {
		var cart struct {
			Table interface{} `json:"table"`
		}
		if err := json.Unmarshal([]byte(payload), &cart); err != nil {
			return QRCode{}, newError(KindInvalid, op, err)
		}
		var table string
		switch v := cart.Table.(type) {
		case string:
			table = strings.TrimSpace(v)
		case float64:
			table = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if table == "" {
			return QRCode{}, newError(KindInvalid, op, errors.New("cart payload without table"))
		}
		return QRCode{Table: table}, nil
	}

	if u, err := url.Parse(payload); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		slug := path.Base(strings.TrimRight(u.Path, "/"))
		if !slugPattern.MatchString(slug) {
			return QRCode{}, newError(KindInvalid, op, errors.New("link does not end in a slug"))
		}
		return QRCode{Slug: slug}, nil
	}

	if slugPattern.MatchString(payload) {
		return QRCode{Slug: payload}, nil
	}
	return QRCode{}, newError(KindInvalid, op, errors.New("unrecognised payload"))
}

// DeepLinkPrefix is the path the server serves deep-link logins under.
const DeepLinkPrefix = "/t/"

// DeepLink is the URL encoded in a table's QR code. It resolves to GET /t/:slug.
func DeepLink(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + DeepLinkPrefix + slug
}
