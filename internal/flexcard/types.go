// Package flexcard builds and validates the rich-message card payloads sent
// to the messaging platform. No other package constructs card payloads.
package flexcard

import "encoding/json"

// Element is one node of a card tree: Text, Button, Separator or Box.
type Element interface {
	element()
}

// Text is a text leaf.
type Text struct {
	Text   string `json:"text"`
	Size   string `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
	Color  string `json:"color,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
	Align  string `json:"align,omitempty"`
	Margin string `json:"margin,omitempty"`
}

func (Text) element() {}

// MarshalJSON injects the platform type tag.
func (t Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"text", alias(t)})
}

// Action is a button action: postback, uri or message.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Data  string `json:"data,omitempty"`
	URI   string `json:"uri,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Button is an actionable leaf.
type Button struct {
	Style  string `json:"style,omitempty"`
	Action Action `json:"action"`
}

func (Button) element() {}

// MarshalJSON injects the platform type tag.
func (b Button) MarshalJSON() ([]byte, error) {
	type alias Button
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"button", alias(b)})
}

// Separator is a horizontal rule.
type Separator struct {
	Margin string `json:"margin,omitempty"`
}

func (Separator) element() {}

// MarshalJSON injects the platform type tag.
func (s Separator) MarshalJSON() ([]byte, error) {
	type alias Separator
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"separator", alias(s)})
}

// Box lays out child elements horizontally or vertically.
type Box struct {
	Layout          string    `json:"layout"`
	Contents        []Element `json:"contents"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	PaddingAll      string    `json:"paddingAll,omitempty"`
	CornerRadius    string    `json:"cornerRadius,omitempty"`
}

func (Box) element() {}

// MarshalJSON injects the platform type tag.
func (b Box) MarshalJSON() ([]byte, error) {
	type alias Box
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"box", alias(b)})
}

// Bubble is the card container: optional header/footer around a body.
type Bubble struct {
	Size   string `json:"size,omitempty"`
	Header *Box   `json:"header,omitempty"`
	Body   *Box   `json:"body"`
	Footer *Box   `json:"footer,omitempty"`
}

// MarshalJSON injects the platform type tag.
func (b Bubble) MarshalJSON() ([]byte, error) {
	type alias Bubble
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"bubble", alias(b)})
}

// Card is the outermost flex payload.
type Card struct {
	AltText  string `json:"altText"`
	Contents Bubble `json:"contents"`
}

// MarshalJSON injects the platform type tag.
func (c Card) MarshalJSON() ([]byte, error) {
	type alias Card
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"flex", alias(c)})
}
