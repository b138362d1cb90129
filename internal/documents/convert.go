package documents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docextract-api/internal/llm"
	"docextract-api/internal/shared/apperr"
)

const documentInfoSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["doc_id", "doc_type", "file_type", "full_name"],
  "properties": {
    "doc_id":       {"type": "string"},
    "doc_type":     {"type": "string"},
    "file_type":    {"type": "string"},
    "full_name":    {"type": "string"},
    "fathers_name": {"type": ["string", "null"]},
    "address":      {"type": ["string", "null"]},
    "dob": {
      "type": ["string", "null"],
      "pattern": "^$|^[0-9]{4}-[0-9]{2}-[0-9]{2}$"
    }
  }
}`

const invalidFormatMessage = "Invalid document information format"

// Converter turns raw provider fields into DocumentInfo.
type Converter struct {
	schema *jsonschema.Schema
}

func NewConverter() (*Converter, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document_info.json", strings.NewReader(documentInfoSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("document_info.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Converter{schema: schema}, nil
}

type rawInfo struct {
	DocID       string  `json:"doc_id"`
	DocType     string  `json:"doc_type"`
	FileType    string  `json:"file_type"`
	FullName    string  `json:"full_name"`
	FathersName *string `json:"fathers_name"`
	Address     *string `json:"address"`
	DOB         *string `json:"dob"`
}

// Convert validates fields against the document schema. Optional strings
// keep "" as sent; an empty dob is dropped and any other dob must be a real
// calendar date.
func (c *Converter) Convert(fields llm.Fields) (DocumentInfo, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return DocumentInfo{}, apperr.Conversion(invalidFormatMessage, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return DocumentInfo{}, apperr.Conversion(invalidFormatMessage, err)
	}
	if err := c.schema.Validate(generic); err != nil {
		return DocumentInfo{}, apperr.Conversion(invalidFormatMessage, err)
	}

	var in rawInfo
	if err := json.Unmarshal(raw, &in); err != nil {
		return DocumentInfo{}, apperr.Conversion(invalidFormatMessage, err)
	}

	info := DocumentInfo{
		DocID:       in.DocID,
		DocType:     in.DocType,
		FileType:    in.FileType,
		FullName:    in.FullName,
		FathersName: in.FathersName,
		Address:     in.Address,
	}
	if dob := nonEmpty(in.DOB); dob != nil {
		d, err := ParseDate(*dob)
		if err != nil {
			return DocumentInfo{}, apperr.Conversion(invalidFormatMessage, err)
		}
		info.DOB = &d
	}
	return info, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
