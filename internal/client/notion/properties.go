package notion

import "time"

// Property is a single Notion page property. Exactly one of the typed
// fields is set; the zero fields are omitted on the wire so the same
// struct serves both writes and query results.
type Property struct {
	Title       []RichText    `json:"title,omitempty"`
	RichText    []RichText    `json:"rich_text,omitempty"`
	Number      *float64      `json:"number,omitempty"`
	Select      *SelectOption `json:"select,omitempty"`
	Date        *DateValue    `json:"date,omitempty"`
	Email       string        `json:"email,omitempty"`
	PhoneNumber string        `json:"phone_number,omitempty"`
	Relation    []Relation    `json:"relation,omitempty"`
}

type RichText struct {
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string `json:"start"`
}

type Relation struct {
	ID string `json:"id"`
}

// Filter is the subset of the Notion query filter language this
// service uses: exact text match and relation containment.
type Filter struct {
	Property string             `json:"property"`
	RichText *TextCondition     `json:"rich_text,omitempty"`
	Relation *RelationCondition `json:"relation,omitempty"`
}

type TextCondition struct {
	Equals string `json:"equals,omitempty"`
}

type RelationCondition struct {
	Contains string `json:"contains,omitempty"`
}

// TitleProperty builds a title property from plain text.
func TitleProperty(content string) Property {
	return Property{Title: []RichText{{Text: &TextContent{Content: content}}}}
}

// RichTextProperty builds a rich_text property from plain text.
func RichTextProperty(content string) Property {
	return Property{RichText: []RichText{{Text: &TextContent{Content: content}}}}
}

// NumberProperty builds a number property.
func NumberProperty(value float64) Property {
	return Property{Number: &value}
}

// SelectProperty builds a select property.
func SelectProperty(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

// DateProperty builds a date property from a timestamp.
func DateProperty(t time.Time) Property {
	return Property{Date: &DateValue{Start: t.UTC().Format(time.RFC3339)}}
}

// EmailProperty builds an email property.
func EmailProperty(email string) Property {
	return Property{Email: email}
}

// PhoneProperty builds a phone_number property.
func PhoneProperty(phone string) Property {
	return Property{PhoneNumber: phone}
}

// RelationProperty builds a single-target relation property.
func RelationProperty(pageID string) Property {
	return Property{Relation: []Relation{{ID: pageID}}}
}
