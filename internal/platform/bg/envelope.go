package bg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

const DefaultServiceID = "bg.service.searchReferrals"

// Request populates the SendMessage envelope.
type Request struct {
	MessageID   string
	ServiceID   string
	MessageDate time.Time
	SessionID   string
	SenderID    string
	Password    string
	Query       referral.Query
}

// NewRequest fills identifiers for a single search call.
func NewRequest(serviceID string, q referral.Query, now time.Time) Request {
	if serviceID == "" {
		serviceID = DefaultServiceID
	}
	return Request{
		MessageID:   uuid.NewString(),
		ServiceID:   serviceID,
		MessageDate: now.UTC(),
		SessionID:   uuid.NewString(),
		Query:       q,
	}
}

const sendMessageTemplate = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <SendMessage xmlns="http://bip.bee.kz/SyncChannel/v10/Types">
      <request>
        <requestInfo>
          <messageId>{{x .MessageID}}</messageId>
          <serviceId>{{x .ServiceID}}</serviceId>
          <messageDate>{{.MessageDate.Format "2006-01-02T15:04:05Z07:00"}}</messageDate>
          <sessionId>{{x .SessionID}}</sessionId>
{{- if .SenderID}}
          <sender>
            <senderId>{{x .SenderID}}</senderId>
            <password>{{x .Password}}</password>
          </sender>
{{- end}}
        </requestInfo>
        <requestData>
          <ns4:data xmlns:ns4="http://bip.bee.kz/SyncChannel/v10/Interfaces"
                    xmlns:cs="http://bg.kz/searchReferrals"
                    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
                    xsi:type="cs:SearchReferrals">
            <dateFrom>{{x .Query.DateFrom}}</dateFrom>
            <dateTo>{{x .Query.DateTo}}</dateTo>
            <patientIINOrFIO>{{x .Query.PatientIINOrFIO}}</patientIINOrFIO>
            <searchDirections>true</searchDirections>
            <referralCode>true</referralCode>
            <searchHospitalized>true</searchHospitalized>
            <searchRefusal>true</searchRefusal>
          </ns4:data>
        </requestData>
      </request>
    </SendMessage>
  </soap:Body>
</soap:Envelope>
`

var envelopeTmpl = template.Must(template.New("send-message").Funcs(template.FuncMap{
	"x": escapeXML,
}).Parse(sendMessageTemplate))

func escapeXML(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// BuildEnvelope renders the SOAP request body for r.
func BuildEnvelope(r Request) ([]byte, error) {
	var buf bytes.Buffer
	if err := envelopeTmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("render envelope: %w", err)
	}
	return buf.Bytes(), nil
}
