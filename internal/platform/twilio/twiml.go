package twilio

import "encoding/xml"

type messagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message []string `xml:"Message"`
}

// MessagingResponse renders a TwiML reply document for a webhook response.
// Twilio sends each <Message> body back to the sender.
func MessagingResponse(bodies ...string) string {
	doc := messagingResponse{Message: bodies}
	raw, err := xml.Marshal(doc)
	if err != nil {
		return xml.Header + "<Response></Response>"
	}
	return xml.Header + string(raw)
}
