// ABOUTME: Deterministic record identifiers
// ABOUTME: Content hashes over RFC 8785 canonical JSON, and name-based UUIDs for tasks
package scraper

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
)

const idLength = 16

// taskNamespace scopes task UUIDs to this application.
var taskNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://closex.local/tasks"))

// canonical encodes v as RFC 8785 JSON so key order and number formatting
// never change the hash.
func canonical(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return raw
	}
	return out
}

// contentID is a short unpadded base64url SHA-256 of the canonical form of v.
func contentID(v any) string {
	sum := sha256.Sum256(canonical(v))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:idLength]
}

func contactID(lead, name string, emails, phones []string) string {
	if len(emails) > 0 {
		return emails[0]
	}
	return contentID(struct {
		Lead   string   `json:"lead"`
		Name   string   `json:"name"`
		Emails []string `json:"emails"`
		Phones []string `json:"phones"`
	}{lead, name, emails, phones})
}

func opportunityID(name, closeDate string) string {
	return contentID(struct {
		Name      string `json:"name"`
		CloseDate string `json:"closeDate"`
	}{name, closeDate})
}

func taskID(description, dueDate, assignee string) string {
	return uuid.NewSHA1(taskNamespace, canonical(struct {
		Description string `json:"description"`
		DueDate     string `json:"dueDate"`
		Assignee    string `json:"assignee"`
	}{description, dueDate, assignee})).String()
}
