package documents

import (
	"encoding/json"
	"fmt"
	"time"

	"docextract-api/internal/llm"
)

// DateLayout is the only accepted date of birth format.
const DateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DocumentInfo is the typed result of one extraction.
type DocumentInfo struct {
	DocID       string  `json:"docId"`
	DocType     string  `json:"docType"`
	FileType    string  `json:"fileType"`
	FullName    string  `json:"fullName"`
	FathersName *string `json:"fathersName,omitempty"`
	Address     *string `json:"address,omitempty"`
	DOB         *Date   `json:"dob,omitempty"`
}

// Trace carries caller-supplied correlation ids. Logged only.
type Trace struct {
	RequestID string
	DeviceID  string
}

// ExtractionRequest is one call to Service.Extract. Image wins over FileURL.
type ExtractionRequest struct {
	Image    []byte
	FileName string
	FileURL  string
	Provider llm.Provider
	Mobile   string
	Tenant   string
	Trace    Trace
}

// ExtractionResponse is the success body of the extract endpoint.
type ExtractionResponse struct {
	Success   bool          `json:"success"`
	Data      *DocumentInfo `json:"data,omitempty"`
	Error     string        `json:"error,omitempty"`
	TimeTaken float64       `json:"timeTaken"`
	URL       string        `json:"url,omitempty"`
}
