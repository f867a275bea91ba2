package sqlerr

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Phase tells the classifier where a failure happened. It decides the
// generic fallback kind for codes no rule matches.
type Phase int

const (
	// PhaseConnect covers attach and detach.
	PhaseConnect Phase = iota
	// PhaseExecute covers statements and transaction control.
	PhaseExecute
)

func (p Phase) String() string {
	if p == PhaseConnect {
		return "connect"
	}
	return "execute"
}

// fallback returns the generic kind for the phase.
func (p Phase) fallback() Kind {
	if p == PhaseConnect {
		return KindConnectionError
	}
	return KindDatabaseError
}

// Rule maps a family of raw codes to a kind. With Prefix set, a code matches
// when it starts with one of Codes (SQLSTATE classes such as "23").
type Rule struct {
	Kind   Kind
	Codes  []string
	Prefix bool
}

// CodeExtractor pulls raw status codes out of a driver or network error.
// It returns the codes in priority order and false when err is not a type
// it understands.
type CodeExtractor func(err error) ([]string, bool)

// Classifier maps raw errors to *Error using a rule table.
// It is immutable and safe for concurrent use.
type Classifier struct {
	rules      []Rule
	extractors []CodeExtractor
}

// NewClassifier builds a classifier from rules. Extractors run before the
// default ones; the first extractor that recognizes an error wins.
func NewClassifier(rules []Rule, extractors ...CodeExtractor) *Classifier {
	all := make([]CodeExtractor, 0, len(extractors)+len(DefaultExtractors))
	all = append(all, extractors...)
	all = append(all, DefaultExtractors...)
	return &Classifier{
		rules:      append([]Rule(nil), rules...),
		extractors: all,
	}
}

// Classify converts err into a classified error. A nil err yields nil and an
// already classified error is returned unchanged. Unknown codes fall through
// to the generic kind for the phase with the original code kept.
func (c *Classifier) Classify(phase Phase, err error) *Error {
	if err == nil {
		return nil
	}
	if classified, ok := As(err); ok {
		return classified
	}

	codes := c.codes(err)
	kind, code := c.match(codes)
	if code == "" {
		kind = phase.fallback()
		if len(codes) > 0 {
			code = codes[0]
		}
	}

	return &Error{
		Kind:    kind,
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}

// ClassifyStatement classifies an execution failure and attaches the
// statement and its parameters.
func (c *Classifier) ClassifyStatement(err error, sql string, params []any) *Error {
	e := c.Classify(PhaseExecute, err)
	if e == nil {
		return nil
	}
	if e.SQL != "" {
		return e
	}
	return e.WithStatement(sql, params)
}

func (c *Classifier) codes(err error) []string {
	for _, extract := range c.extractors {
		if codes, ok := extract(err); ok {
			return codes
		}
	}
	return nil
}

// match returns the kind of the most specific rule matching any code.
// Exact matches beat prefix matches; longer prefixes beat shorter ones.
func (c *Classifier) match(codes []string) (Kind, string) {
	var (
		bestKind  Kind
		bestCode  string
		bestScore int
	)
	for _, code := range codes {
		if code == "" {
			continue
		}
		for _, r := range c.rules {
			for _, rc := range r.Codes {
				score := 0
				switch {
				case rc == code:
					score = 1000 + len(rc)
				case r.Prefix && strings.HasPrefix(code, rc):
					score = len(rc)
				}
				if score > bestScore {
					bestKind, bestCode, bestScore = r.Kind, code, score
				}
			}
		}
	}
	return bestKind, bestCode
}

// DefaultExtractors recognize errors that expose a code method and the
// standard library's network errors.
var DefaultExtractors = []CodeExtractor{
	sqlStateCode,
	methodCode,
	networkCode,
}

func sqlStateCode(err error) ([]string, bool) {
	var s interface{ SQLState() string }
	if errors.As(err, &s) {
		return []string{s.SQLState()}, true
	}
	return nil, false
}

func methodCode(err error) ([]string, bool) {
	var s interface{ Code() string }
	if errors.As(err, &s) {
		return []string{s.Code()}, true
	}
	return nil, false
}

// errnoNames covers the socket errors that carry meaning for attach.
var errnoNames = map[syscall.Errno]string{
	syscall.ECONNREFUSED: "ECONNREFUSED",
	syscall.EACCES:       "EACCES",
	syscall.EPERM:        "EPERM",
	syscall.EHOSTUNREACH: "EHOSTUNREACH",
	syscall.ENETUNREACH:  "ENETUNREACH",
	syscall.EINVAL:       "EINVAL",
	syscall.ECONNRESET:   "ECONNRESET",
	syscall.ETIMEDOUT:    "ETIMEDOUT",
}

func networkCode(err error) ([]string, bool) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return []string{"ETIMEDOUT"}, true
		}
		return []string{"ENOTFOUND"}, true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if name, ok := errnoNames[errno]; ok {
			return []string{name}, true
		}
		return []string{errno.Error()}, true
	}
	return nil, false
}
