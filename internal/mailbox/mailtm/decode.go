package mailtm

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

type domainRecord struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	Active *bool  `json:"isActive"`
}

// active treats a missing isActive as active.
func (d domainRecord) active() bool {
	return d.Active == nil || *d.Active
}

type accountRecord struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type tokenRecord struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type messageRecord struct {
	ID   string `json:"id"`
	From struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	} `json:"from"`
	Subject   string `json:"subject"`
	Intro     string `json:"intro"`
	CreatedAt string `json:"createdAt"`
}

func (r messageRecord) summary() mailbox.Summary {
	from := r.From.Address
	if name := strings.TrimSpace(r.From.Name); name != "" && from != "" {
		from = name + " <" + from + ">"
	}
	return mailbox.Summary{
		ID:      r.ID,
		From:    from,
		Subject: mailbox.Subject(r.Subject),
		Date:    mailbox.ParseDate(r.CreatedAt),
		Preview: mailbox.Preview(r.Intro, previewLen),
	}
}

// isXML reports whether the response should be decoded as XML. The
// Content-Type wins; without one the body is sniffed.
func isXML(resp *mailbox.Response) bool {
	ct := strings.ToLower(resp.ContentType)
	if strings.Contains(ct, "xml") {
		return true
	}
	if strings.Contains(ct, "json") {
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(resp.Body), []byte("<"))
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", mailbox.ErrMalformed, err)
}

// decodeJSONList accepts a bare array or a hydra collection.
func decodeJSONList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if bytes.HasPrefix(body, []byte("[")) {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, malformed(err)
		}
		return items, nil
	}

	var coll struct {
		Members *[]T `json:"hydra:member"`
	}
	if err := json.Unmarshal(body, &coll); err != nil {
		return nil, malformed(err)
	}
	if coll.Members == nil {
		return nil, malformed(errors.New("missing member list"))
	}
	return *coll.Members, nil
}

func decodeJSONObject[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, malformed(err)
	}
	return v, nil
}

func decodeDomains(resp *mailbox.Response) ([]domainRecord, error) {
	if !isXML(resp) {
		return decodeJSONList[domainRecord](resp.Body)
	}

	root, err := parseXML(resp.Body)
	if err != nil {
		return nil, err
	}

	var out []domainRecord
	for _, n := range root.records("domain") {
		out = append(out, domainRecord{
			ID:     n.text("id"),
			Domain: n.text("domain"),
			Active: n.flag("isActive"),
		})
	}
	if len(out) > 0 {
		return out, nil
	}

	// plain <domain>name</domain> leaves
	for _, n := range root.leaves("domain") {
		out = append(out, domainRecord{Domain: strings.TrimSpace(n.Content)})
	}
	return out, nil
}

func decodeAccount(resp *mailbox.Response) (accountRecord, error) {
	if !isXML(resp) {
		return decodeJSONObject[accountRecord](resp.Body)
	}
	root, err := parseXML(resp.Body)
	if err != nil {
		return accountRecord{}, err
	}
	recs := root.records("address")
	if len(recs) == 0 {
		return accountRecord{}, nil
	}
	return accountRecord{ID: recs[0].text("id"), Address: recs[0].text("address")}, nil
}

func decodeToken(resp *mailbox.Response) (tokenRecord, error) {
	if !isXML(resp) {
		return decodeJSONObject[tokenRecord](resp.Body)
	}
	root, err := parseXML(resp.Body)
	if err != nil {
		return tokenRecord{}, err
	}
	recs := root.records("token")
	if len(recs) == 0 {
		return tokenRecord{}, nil
	}
	return tokenRecord{ID: recs[0].text("id"), Token: recs[0].text("token")}, nil
}

func decodeMessages(resp *mailbox.Response) ([]messageRecord, error) {
	if !isXML(resp) {
		return decodeJSONList[messageRecord](resp.Body)
	}

	root, err := parseXML(resp.Body)
	if err != nil {
		return nil, err
	}

	var out []messageRecord
	for _, n := range root.records("id") {
		var r messageRecord
		r.ID = n.text("id")
		r.Subject = n.text("subject")
		r.Intro = n.text("intro")
		r.CreatedAt = n.text("createdAt")
		if from := n.child("from"); from != nil {
			r.From.Address = from.text("address")
			r.From.Name = from.text("name")
		}
		out = append(out, r)
	}
	return out, nil
}

// xmlNode is a generic element tree. The API's XML serialization wraps
// records in varying container elements, so records are located by the
// fields they carry rather than by path.
type xmlNode struct {
	XMLName xml.Name
	Content string    `xml:",chardata"`
	Nodes   []xmlNode `xml:",any"`
}

func parseXML(body []byte) (*xmlNode, error) {
	var root xmlNode
	if err := xml.Unmarshal(body, &root); err != nil {
		return nil, malformed(err)
	}
	return &root, nil
}

func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *xmlNode) text(name string) string {
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.Content)
	}
	return ""
}

// flag reads a boolean child; absent or empty children yield nil.
func (n *xmlNode) flag(name string) *bool {
	c := n.child(name)
	if c == nil {
		return nil
	}
	var v bool
	switch strings.ToLower(strings.TrimSpace(c.Content)) {
	case "":
		return nil
	case "1", "true", "yes":
		v = true
	}
	return &v
}

// records returns the elements, in document order, that have exactly one
// text-only child named key. Matched elements are not searched further.
func (n *xmlNode) records(key string) []*xmlNode {
	count := 0
	leaf := false
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == key {
			count++
			leaf = len(n.Nodes[i].Nodes) == 0
		}
	}
	if count == 1 && leaf {
		return []*xmlNode{n}
	}
	var out []*xmlNode
	for i := range n.Nodes {
		out = append(out, n.Nodes[i].records(key)...)
	}
	return out
}

// leaves returns text-only elements named name.
func (n *xmlNode) leaves(name string) []*xmlNode {
	var out []*xmlNode
	if n.XMLName.Local == name && len(n.Nodes) == 0 {
		return append(out, n)
	}
	for i := range n.Nodes {
		out = append(out, n.Nodes[i].leaves(name)...)
	}
	return out
}

// parseMessage extracts headers and the preferred body from RFC 822 source.
func parseMessage(r io.Reader) (mailbox.Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && mr == nil {
		return mailbox.Message{}, malformed(err)
	}
	defer mr.Close()

	var msg mailbox.Message
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	msg.Subject = mailbox.Subject(msg.Subject)

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
		if from[0].Name != "" {
			msg.From = from[0].Name + " <" + from[0].Address + ">"
		}
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.Date = date
	}

	var text, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return mailbox.Message{}, malformed(err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		mediaType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(mediaType, "text/html"):
			if html == "" {
				html = string(body)
			}
		case strings.HasPrefix(mediaType, "text/plain") || mediaType == "":
			if text == "" {
				text = string(body)
			}
		}
	}

	switch {
	case html != "":
		msg.Body = html
		msg.HTML = true
		msg.Preview = mailbox.Preview(mailbox.PlainText(html), previewLen)
	default:
		msg.Body = mailbox.WrapPlain(text)
		msg.Preview = mailbox.Preview(text, previewLen)
	}
	return msg, nil
}
