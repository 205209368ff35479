package validator

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"time"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// FormatFunc checks a value against a named format. Returning an error marks
// the value invalid; the error text becomes the failure message.
type FormatFunc func(value any) error

// checkFormat applies a registered format check. Formats with no registered
// check are accepted untouched: format is annotation unless the caller opts
// in with WithFormat.
func (s *state) checkFormat(value, spec any, path string) error {
	name, ok := spec.(string)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "format must be a string, got %T", spec)
	}
	check, registered := s.v.formats[name]
	if !registered {
		return nil
	}
	if err := check(value); err != nil {
		s.errs = append(s.errs, &jesseerrors.DataError{
			Kind:    jesseerrors.KindWrongFormat,
			Path:    path,
			Message: err.Error(),
			Value:   value,
			Cause:   err,
		})
		if s.trials == 0 && s.v.mode == FailFast {
			s.stopped = true
		}
	}
	return nil
}

var hostnameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// StandardFormats returns checks for the formats both drafts describe, for
// callers that want them enforced. Non-string values pass untouched, since
// format never constrains other types.
func StandardFormats() map[string]FormatFunc {
	return map[string]FormatFunc{
		"date-time": stringFormat(func(s string) error {
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return fmt.Errorf("%q is not an RFC 3339 date-time", s)
			}
			return nil
		}),
		"date": stringFormat(func(s string) error {
			if _, err := time.Parse("2006-01-02", s); err != nil {
				return fmt.Errorf("%q is not a date", s)
			}
			return nil
		}),
		"time": stringFormat(func(s string) error {
			if _, err := time.Parse("15:04:05", s); err != nil {
				return fmt.Errorf("%q is not a time", s)
			}
			return nil
		}),
		"email": stringFormat(func(s string) error {
			if _, err := mail.ParseAddress(s); err != nil {
				return fmt.Errorf("%q is not an email address", s)
			}
			return nil
		}),
		"hostname": stringFormat(func(s string) error {
			if len(s) > 253 || !hostnameRe.MatchString(s) {
				return fmt.Errorf("%q is not a hostname", s)
			}
			return nil
		}),
		"ipv4": stringFormat(func(s string) error {
			ip := net.ParseIP(s)
			if ip == nil || ip.To4() == nil {
				return fmt.Errorf("%q is not an IPv4 address", s)
			}
			return nil
		}),
		"ipv6": stringFormat(func(s string) error {
			ip := net.ParseIP(s)
			if ip == nil || ip.To4() != nil {
				return fmt.Errorf("%q is not an IPv6 address", s)
			}
			return nil
		}),
		"uri": stringFormat(func(s string) error {
			u, err := url.Parse(s)
			if err != nil || u.Scheme == "" {
				return fmt.Errorf("%q is not an absolute URI", s)
			}
			return nil
		}),
		"regex": stringFormat(func(s string) error {
			if _, err := regexp.Compile(s); err != nil {
				return fmt.Errorf("%q is not a valid regular expression", s)
			}
			return nil
		}),
	}
}

func stringFormat(check func(string) error) FormatFunc {
	return func(value any) error {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		return check(s)
	}
}
