package bg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

var (
	ErrEmptyResponse = errors.New("bg: empty response")
	ErrSOAPFault     = errors.New("bg: soap fault")
)

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

// ParseReferrals extracts every referralList/referralItem element from a
// SendMessage response, at any depth.
func ParseReferrals(body []byte) ([]referral.Item, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	items := []referral.Item{}
	var stack []string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "Fault":
				var f soapFault
				if err := dec.DecodeElement(&f, &t); err != nil {
					return nil, fmt.Errorf("decode fault: %w", err)
				}
				return nil, fmt.Errorf("%w: %s %s", ErrSOAPFault, strings.TrimSpace(f.Code), strings.TrimSpace(f.String))
			case t.Name.Local == "referralItem" && len(stack) > 0 && stack[len(stack)-1] == "referralList":
				var item referral.Item
				if err := dec.DecodeElement(&item, &t); err != nil {
					return nil, fmt.Errorf("decode referral item: %w", err)
				}
				items = append(items, item)
			default:
				stack = append(stack, t.Name.Local)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return items, nil
}
