package beanstalk

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// The size limit of a tube name.
const maxTubeNameLength = 200

// schemes maps the supported URI schemes to whether they use TLS and the
// port that is used when the URI doesn't name one.
var schemes = map[string]struct {
	tls  bool
	port string
}{
	"beanstalk":  {false, "11300"},
	"beanstalks": {true, "11400"},
	"tls":        {true, "11400"},
}

// ParseURI returns the socket of the specified URI and if the connection is
// supposed to be a TLS or plaintext connection. Valid URI schemes are:
//
//	beanstalk://host:port
//	beanstalks://host:port
//	tls://host:port
//
// The beanstalks and tls schemes are equivalent. A bare host:port is a
// plaintext connection. A missing port is filled in with 11300, or 11400
// for TLS.
func ParseURI(uri string) (string, bool, error) {
	scheme, host := "beanstalk", uri
	if strings.Contains(uri, "://") {
		u, err := url.Parse(uri)
		if err != nil {
			return "", false, err
		}

		scheme, host = strings.ToLower(u.Scheme), u.Host
	}

	s, ok := schemes[scheme]
	if !ok {
		return "", false, fmt.Errorf("%s: unknown beanstalk URI scheme", scheme)
	}

	if _, _, err := net.SplitHostPort(host); err != nil {
		var addrErr *net.AddrError
		if !errors.As(err, &addrErr) || addrErr.Err != "missing port in address" {
			return "", false, err
		}

		host = net.JoinHostPort(host, s.port)
	}

	return host, s.tls, nil
}

// tubeNameChars are the bytes the server accepts in a tube name. A name must
// not start with a hyphen.
const tubeNameChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-+/;.$_()"

func validTube(tube string) error {
	switch {
	case tube == "":
		return ErrTubeEmpty
	case len(tube) > maxTubeNameLength:
		return ErrTubeTooLong
	case tube[0] == '-':
		return ErrTubeInvalid
	}

	for i := 0; i < len(tube); i++ {
		if strings.IndexByte(tubeNameChars, tube[i]) == -1 {
			return ErrTubeInvalid
		}
	}

	return nil
}

func includes(a []string, s string) bool {
	for _, e := range a {
		if e == s {
			return true
		}
	}

	return false
}
