package xmlapi

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is a parsed XML API response. Status carries the status attribute
// of the top level <response> element, Doc the full parsed document.
type Response struct {
	Status string
	Doc    *etree.Document
}

// ParseResponse parses the raw body of an XML API reply.
func ParseResponse(b []byte) (*Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, fmt.Errorf("failed to parse api response: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "response" {
		return nil, fmt.Errorf("unexpected api response document: %q", string(b))
	}
	status := root.SelectAttrValue("status", StatusError)
	return &Response{Status: status, Doc: doc}, nil
}

func (r *Response) OK() bool {
	return r.Status == StatusSuccess
}

// Result returns the <result> element of the response, or nil.
func (r *Response) Result() *etree.Element {
	if r.Doc == nil || r.Doc.Root() == nil {
		return nil
	}
	return r.Doc.Root().SelectElement("result")
}

// Err returns nil for a success response, otherwise a DeviceStatusError
// carrying the device's message text.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &DeviceStatusError{Status: r.Status, Message: r.Message()}
}

// Message collects the device's message lines from the usual locations
// (<msg>, <msg><line>, <result><msg>).
func (r *Response) Message() string {
	if r.Doc == nil || r.Doc.Root() == nil {
		return ""
	}
	var lines []string
	for _, e := range r.Doc.Root().FindElements(".//msg") {
		if ls := e.SelectElements("line"); len(ls) > 0 {
			for _, l := range ls {
				lines = append(lines, strings.TrimSpace(l.Text()))
			}
			continue
		}
		if s := strings.TrimSpace(e.Text()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "; ")
}

// DocAsString returns the response document serialized back to XML.
func (r *Response) DocAsString() string {
	if r.Doc == nil {
		return ""
	}
	s, err := r.Doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// DeviceStatusError is a non-success status reported by the device itself, as
// opposed to a transport failure.
type DeviceStatusError struct {
	Status  string
	Message string
}

func (e *DeviceStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("device returned status %q", e.Status)
	}
	return fmt.Sprintf("device returned status %q: %s", e.Status, e.Message)
}
