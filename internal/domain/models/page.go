package models

// FormSnapshot describes one form found on a captured page
type FormSnapshot struct {
	Text             string `json:"text"`
	HasPasswordField bool   `json:"hasPasswordField"`
}

// PageSnapshot is the raw page capture submitted for feature
// extraction. The capture side sends structure, not judgments; all
// phishing heuristics run server side.
type PageSnapshot struct {
	URL                 string         `json:"url"`
	Domain              string         `json:"domain"`
	Title               string         `json:"title"`
	BodyText            string         `json:"bodyText"`
	Forms               []FormSnapshot `json:"forms,omitempty"`
	HasPasswordField    bool           `json:"hasPasswordField"`
	HasPaymentField     bool           `json:"hasPaymentField"`
	HiddenElementCount  int            `json:"hiddenElementCount"`
	HasFavicon          bool           `json:"hasFavicon"`
	ExternalScriptCount int            `json:"externalScriptCount"`
}
